package repository

import (
	"context"

	"ShopCatalog/internal/model"
)

const goodParameterColumns = "id, good_id, parameter_id, value, created_at, updated_at"

// GoodParameterFilter фильтры списка значений параметров
type GoodParameterFilter struct {
	GoodID      int64
	ParameterID int64
}

func scanGoodParameter(s rowScanner) (model.GoodParameter, error) {
	var gp model.GoodParameter
	err := s.Scan(&gp.ID, &gp.GoodID, &gp.ParameterID, &gp.Value, &gp.CreatedAt, &gp.UpdatedAt)
	return gp, err
}

// CreateGoodParameter задаёт значение параметра товара.
// Повторная пара (good_id, parameter_id) нарушает unique_good_parameter и возвращает ErrAlreadyExists
func (r *CatalogRepository) CreateGoodParameter(ctx context.Context, gp model.GoodParameter) (*model.GoodParameter, error) {
	query := `INSERT INTO good_parameters(good_id, parameter_id, value) VALUES($1, $2, $3)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, gp.GoodID, gp.ParameterID, gp.Value).
		Scan(&gp.ID, &gp.CreatedAt, &gp.UpdatedAt)
	if err != nil {
		return nil, mapError("insert good parameter", err)
	}
	return &gp, nil
}

// GetGoodParameter возвращает значение параметра товара по id
func (r *CatalogRepository) GetGoodParameter(ctx context.Context, id int64) (*model.GoodParameter, error) {
	gp, err := scanGoodParameter(r.db.QueryRowContext(ctx,
		"SELECT "+goodParameterColumns+" FROM good_parameters WHERE id=$1", id))
	if err != nil {
		return nil, mapError("get good parameter", err)
	}
	return &gp, nil
}

// UpdateGoodParameter обновляет строку связи товара и параметра
func (r *CatalogRepository) UpdateGoodParameter(ctx context.Context, gp model.GoodParameter) (*model.GoodParameter, error) {
	query := `UPDATE good_parameters SET good_id=$1, parameter_id=$2, value=$3, updated_at=now()
		WHERE id=$4 RETURNING ` + goodParameterColumns
	out, err := scanGoodParameter(r.db.QueryRowContext(ctx, query, gp.GoodID, gp.ParameterID, gp.Value, gp.ID))
	if err != nil {
		return nil, mapError("update good parameter", err)
	}
	return &out, nil
}

// DeleteGoodParameter удаляет значение параметра у товара
func (r *CatalogRepository) DeleteGoodParameter(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "good_parameters", id)
}

// ListGoodParameters возвращает страницу значений параметров
func (r *CatalogRepository) ListGoodParameters(ctx context.Context, f GoodParameterFilter, page Page) ([]model.GoodParameter, int, error) {
	var c conditions
	if f.GoodID > 0 {
		c.add("good_id=$%d", f.GoodID)
	}
	if f.ParameterID > 0 {
		c.add("parameter_id=$%d", f.ParameterID)
	}
	return listQuery(ctx, r.db, model.EntityGoodParameter, goodParameterColumns, c, page, scanGoodParameter)
}

// ListGoodParameterValues возвращает все параметры товара вместе с наименованиями параметров
func (r *CatalogRepository) ListGoodParameterValues(ctx context.Context, goodID int64) ([]model.GoodParameterValue, error) {
	query := `SELECT gp.parameter_id, p.name, gp.value
		FROM good_parameters gp JOIN parameters p ON p.id = gp.parameter_id
		WHERE gp.good_id=$1 ORDER BY gp.id`
	values, err := queryRows(ctx, r.db, query, func(s rowScanner) (model.GoodParameterValue, error) {
		var v model.GoodParameterValue
		err := s.Scan(&v.ParameterID, &v.Name, &v.Value)
		return v, err
	}, goodID)
	if err != nil {
		return nil, mapError("select good parameter values", err)
	}
	return values, nil
}
