package repository

import (
	"context"

	"ShopCatalog/internal/model"
)

const goodColumns = "id, name, price_rrc, product_id, created_at, updated_at"

// GoodFilter фильтры списка товаров
type GoodFilter struct {
	ProductID int64
}

func scanGood(s rowScanner) (model.Good, error) {
	var g model.Good
	err := s.Scan(&g.ID, &g.Name, &g.PriceRRC, &g.ProductID, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

// CreateGood добавляет товар продукта
func (r *CatalogRepository) CreateGood(ctx context.Context, g model.Good) (*model.Good, error) {
	query := `INSERT INTO goods(name, price_rrc, product_id) VALUES($1, $2, $3)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, g.Name, g.PriceRRC, g.ProductID).
		Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, mapError("insert good", err)
	}
	return &g, nil
}

// GetGood возвращает товар по id
func (r *CatalogRepository) GetGood(ctx context.Context, id int64) (*model.Good, error) {
	g, err := scanGood(r.db.QueryRowContext(ctx, "SELECT "+goodColumns+" FROM goods WHERE id=$1", id))
	if err != nil {
		return nil, mapError("get good", err)
	}
	return &g, nil
}

// UpdateGood обновляет наименование, рекомендованную цену и продукт товара
func (r *CatalogRepository) UpdateGood(ctx context.Context, g model.Good) (*model.Good, error) {
	query := `UPDATE goods SET name=$1, price_rrc=$2, product_id=$3, updated_at=now()
		WHERE id=$4 RETURNING ` + goodColumns
	out, err := scanGood(r.db.QueryRowContext(ctx, query, g.Name, g.PriceRRC, g.ProductID, g.ID))
	if err != nil {
		return nil, mapError("update good", err)
	}
	return &out, nil
}

// DeleteGood удаляет товар вместе с его параметрами и предложениями магазинов
func (r *CatalogRepository) DeleteGood(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "goods", id)
}

// ListGoods возвращает страницу товаров, опционально только одного продукта
func (r *CatalogRepository) ListGoods(ctx context.Context, f GoodFilter, page Page) ([]model.Good, int, error) {
	var c conditions
	if f.ProductID > 0 {
		c.add("product_id=$%d", f.ProductID)
	}
	return listQuery(ctx, r.db, model.EntityGood, goodColumns, c, page, scanGood)
}
