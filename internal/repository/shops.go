package repository

import (
	"context"

	"ShopCatalog/internal/model"
)

const shopColumns = "id, url, name, is_active, created_at, updated_at"

// ShopFilter фильтры списка магазинов; Active=nil возвращает все магазины
type ShopFilter struct {
	Active *bool
}

func scanShop(s rowScanner) (model.Shop, error) {
	var sh model.Shop
	err := s.Scan(&sh.ID, &sh.URL, &sh.Name, &sh.IsActive, &sh.CreatedAt, &sh.UpdatedAt)
	return sh, err
}

// CreateShop добавляет магазин
func (r *CatalogRepository) CreateShop(ctx context.Context, sh model.Shop) (*model.Shop, error) {
	query := `INSERT INTO shops(url, name, is_active) VALUES($1, $2, $3)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, sh.URL, sh.Name, sh.IsActive).
		Scan(&sh.ID, &sh.CreatedAt, &sh.UpdatedAt)
	if err != nil {
		return nil, mapError("insert shop", err)
	}
	return &sh, nil
}

// GetShop возвращает магазин по id
func (r *CatalogRepository) GetShop(ctx context.Context, id int64) (*model.Shop, error) {
	sh, err := scanShop(r.db.QueryRowContext(ctx, "SELECT "+shopColumns+" FROM shops WHERE id=$1", id))
	if err != nil {
		return nil, mapError("get shop", err)
	}
	return &sh, nil
}

// UpdateShop обновляет url, наименование и статус активности магазина
func (r *CatalogRepository) UpdateShop(ctx context.Context, sh model.Shop) (*model.Shop, error) {
	query := `UPDATE shops SET url=$1, name=$2, is_active=$3, updated_at=now()
		WHERE id=$4 RETURNING ` + shopColumns
	out, err := scanShop(r.db.QueryRowContext(ctx, query, sh.URL, sh.Name, sh.IsActive, sh.ID))
	if err != nil {
		return nil, mapError("update shop", err)
	}
	return &out, nil
}

// DeleteShop удаляет магазин вместе с его ценами и остатками
func (r *CatalogRepository) DeleteShop(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "shops", id)
}

// ListShops возвращает страницу магазинов в порядке (id, name)
func (r *CatalogRepository) ListShops(ctx context.Context, f ShopFilter, page Page) ([]model.Shop, int, error) {
	var c conditions
	if f.Active != nil {
		c.add("is_active=$%d", *f.Active)
	}
	return listQuery(ctx, r.db, model.EntityShop, shopColumns, c, page, scanShop)
}
