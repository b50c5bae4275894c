package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ShopCatalog/internal/model"
)

const shopGoodColumns = "id, shop_id, good_id, unit_price, remained_numbee, created_at, updated_at"

// ShopGoodFilter фильтры списка товаров магазинов
type ShopGoodFilter struct {
	ShopID int64
	GoodID int64
}

func scanShopGood(s rowScanner) (model.ShopGood, error) {
	var sg model.ShopGood
	err := s.Scan(&sg.ID, &sg.ShopID, &sg.GoodID, &sg.UnitPrice, &sg.RemainedNumbee, &sg.CreatedAt, &sg.UpdatedAt)
	return sg, err
}

// CreateShopGood добавляет товар в магазин с ценой и остатком.
// Повторная пара (shop_id, good_id) нарушает unique_shop_good и возвращает ErrAlreadyExists
func (r *CatalogRepository) CreateShopGood(ctx context.Context, sg model.ShopGood) (*model.ShopGood, error) {
	query := `INSERT INTO shop_goods(shop_id, good_id, unit_price, remained_numbee) VALUES($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, sg.ShopID, sg.GoodID, sg.UnitPrice, sg.RemainedNumbee).
		Scan(&sg.ID, &sg.CreatedAt, &sg.UpdatedAt)
	if err != nil {
		return nil, mapError("insert shop good", err)
	}
	return &sg, nil
}

// GetShopGood возвращает строку товара магазина по id
func (r *CatalogRepository) GetShopGood(ctx context.Context, id int64) (*model.ShopGood, error) {
	sg, err := scanShopGood(r.db.QueryRowContext(ctx, "SELECT "+shopGoodColumns+" FROM shop_goods WHERE id=$1", id))
	if err != nil {
		return nil, mapError("get shop good", err)
	}
	return &sg, nil
}

// UpdateShopGood обновляет цену и остаток товара в магазине
func (r *CatalogRepository) UpdateShopGood(ctx context.Context, sg model.ShopGood) (*model.ShopGood, error) {
	query := `UPDATE shop_goods SET shop_id=$1, good_id=$2, unit_price=$3, remained_numbee=$4, updated_at=now()
		WHERE id=$5 RETURNING ` + shopGoodColumns
	out, err := scanShopGood(r.db.QueryRowContext(ctx, query, sg.ShopID, sg.GoodID, sg.UnitPrice, sg.RemainedNumbee, sg.ID))
	if err != nil {
		return nil, mapError("update shop good", err)
	}
	return &out, nil
}

// DeleteShopGood убирает товар из магазина
func (r *CatalogRepository) DeleteShopGood(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "shop_goods", id)
}

// ListShopGoods возвращает страницу товаров магазинов
func (r *CatalogRepository) ListShopGoods(ctx context.Context, f ShopGoodFilter, page Page) ([]model.ShopGood, int, error) {
	var c conditions
	if f.ShopID > 0 {
		c.add("shop_id=$%d", f.ShopID)
	}
	if f.GoodID > 0 {
		c.add("good_id=$%d", f.GoodID)
	}
	return listQuery(ctx, r.db, model.EntityShopGood, shopGoodColumns, c, page, scanShopGood)
}

// ListGoodOffers возвращает предложения товара в активных магазинах, от дешёвых к дорогим
func (r *CatalogRepository) ListGoodOffers(ctx context.Context, goodID int64) ([]model.GoodOffer, error) {
	query := `SELECT sg.shop_id, s.name, s.url, sg.unit_price, sg.remained_numbee
		FROM shop_goods sg JOIN shops s ON s.id = sg.shop_id
		WHERE sg.good_id=$1 AND s.is_active ORDER BY sg.unit_price, s.id`
	offers, err := queryRows(ctx, r.db, query, func(s rowScanner) (model.GoodOffer, error) {
		var o model.GoodOffer
		err := s.Scan(&o.ShopID, &o.ShopName, &o.ShopURL, &o.UnitPrice, &o.RemainedNumbee)
		return o, err
	}, goodID)
	if err != nil {
		return nil, mapError("select good offers", err)
	}
	return offers, nil
}

// AdjustStock изменяет остаток товара в магазине на delta с блокировкой строки.
// Остаток не может стать отрицательным или выйти за INTEGER: в этом случае возвращается *model.ValidationError
func (r *CatalogRepository) AdjustStock(ctx context.Context, id, delta int64) (*model.ShopGood, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	// выборка с блокировкой
	selectQuery := "SELECT " + shopGoodColumns + " FROM shop_goods WHERE id=$1 FOR UPDATE"
	sg, err := scanShopGood(tx.QueryRowContext(ctx, selectQuery, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to select shop good for update: %w", err)
	}
	remained := sg.RemainedNumbee + delta
	if remained < 0 {
		return nil, model.NewValidationError("remainedNumbee", model.MsgNegativeQuantity)
	}
	if remained > model.MaxInteger {
		return nil, model.NewValidationError("remainedNumbee", model.MsgOutOfRange)
	}
	err = tx.QueryRowContext(ctx,
		`UPDATE shop_goods SET remained_numbee=$1, updated_at=now() WHERE id=$2 RETURNING updated_at`, remained, id).
		Scan(&sg.UpdatedAt)
	if err != nil {
		return nil, mapError("update stock", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	sg.RemainedNumbee = remained
	return &sg, nil
}
