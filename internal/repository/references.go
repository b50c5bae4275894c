package repository

import (
	"context"

	"ShopCatalog/internal/model"
)

// Параметры, производители и категории являются справочниками одинаковой формы:
// уникальное наименование и даты. Общая часть работает с namedRow,
// публичные методы приводят его к конкретной модели

type namedRow struct {
	ID   int64
	Name string
	model.Timestamps
}

const namedColumns = "id, name, created_at, updated_at"

func scanNamed(s rowScanner) (namedRow, error) {
	var n namedRow
	err := s.Scan(&n.ID, &n.Name, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

func (r *CatalogRepository) createNamed(ctx context.Context, table, name string) (namedRow, error) {
	n := namedRow{Name: name}
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO "+table+"(name) VALUES($1) RETURNING id, created_at, updated_at", name).
		Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return namedRow{}, mapError("insert into "+table, err)
	}
	return n, nil
}

func (r *CatalogRepository) getNamed(ctx context.Context, table string, id int64) (namedRow, error) {
	n, err := scanNamed(r.db.QueryRowContext(ctx, "SELECT "+namedColumns+" FROM "+table+" WHERE id=$1", id))
	if err != nil {
		return namedRow{}, mapError("get from "+table, err)
	}
	return n, nil
}

func (r *CatalogRepository) updateNamed(ctx context.Context, table string, id int64, name string) (namedRow, error) {
	n, err := scanNamed(r.db.QueryRowContext(ctx,
		"UPDATE "+table+" SET name=$1, updated_at=now() WHERE id=$2 RETURNING "+namedColumns, name, id))
	if err != nil {
		return namedRow{}, mapError("update "+table, err)
	}
	return n, nil
}

func (r *CatalogRepository) listNamed(ctx context.Context, entity string, page Page) ([]namedRow, int, error) {
	return listQuery(ctx, r.db, entity, namedColumns, conditions{}, page, scanNamed)
}

// CreateParameter добавляет параметр; дубликат имени возвращает ErrAlreadyExists
func (r *CatalogRepository) CreateParameter(ctx context.Context, name string) (*model.Parameter, error) {
	n, err := r.createNamed(ctx, "parameters", name)
	if err != nil {
		return nil, err
	}
	p := model.Parameter(n)
	return &p, nil
}

// GetParameter возвращает параметр по id
func (r *CatalogRepository) GetParameter(ctx context.Context, id int64) (*model.Parameter, error) {
	n, err := r.getNamed(ctx, "parameters", id)
	if err != nil {
		return nil, err
	}
	p := model.Parameter(n)
	return &p, nil
}

// UpdateParameter переименовывает параметр
func (r *CatalogRepository) UpdateParameter(ctx context.Context, id int64, name string) (*model.Parameter, error) {
	n, err := r.updateNamed(ctx, "parameters", id, name)
	if err != nil {
		return nil, err
	}
	p := model.Parameter(n)
	return &p, nil
}

// DeleteParameter удаляет параметр вместе со значениями у товаров
func (r *CatalogRepository) DeleteParameter(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "parameters", id)
}

// ListParameters возвращает страницу параметров и их общее количество
func (r *CatalogRepository) ListParameters(ctx context.Context, page Page) ([]model.Parameter, int, error) {
	rows, total, err := r.listNamed(ctx, model.EntityParameter, page)
	if err != nil {
		return nil, 0, err
	}
	out := make([]model.Parameter, len(rows))
	for i, n := range rows {
		out[i] = model.Parameter(n)
	}
	return out, total, nil
}

// CreateManufacture добавляет производителя
func (r *CatalogRepository) CreateManufacture(ctx context.Context, name string) (*model.Manufacture, error) {
	n, err := r.createNamed(ctx, "manufactures", name)
	if err != nil {
		return nil, err
	}
	m := model.Manufacture(n)
	return &m, nil
}

// GetManufacture возвращает производителя по id
func (r *CatalogRepository) GetManufacture(ctx context.Context, id int64) (*model.Manufacture, error) {
	n, err := r.getNamed(ctx, "manufactures", id)
	if err != nil {
		return nil, err
	}
	m := model.Manufacture(n)
	return &m, nil
}

// UpdateManufacture переименовывает производителя
func (r *CatalogRepository) UpdateManufacture(ctx context.Context, id int64, name string) (*model.Manufacture, error) {
	n, err := r.updateNamed(ctx, "manufactures", id, name)
	if err != nil {
		return nil, err
	}
	m := model.Manufacture(n)
	return &m, nil
}

// DeleteManufacture удаляет производителя; его продукты и товары удаляются каскадно
func (r *CatalogRepository) DeleteManufacture(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "manufactures", id)
}

// ListManufactures возвращает страницу производителей
func (r *CatalogRepository) ListManufactures(ctx context.Context, page Page) ([]model.Manufacture, int, error) {
	rows, total, err := r.listNamed(ctx, model.EntityManufacture, page)
	if err != nil {
		return nil, 0, err
	}
	out := make([]model.Manufacture, len(rows))
	for i, n := range rows {
		out[i] = model.Manufacture(n)
	}
	return out, total, nil
}

// CreateCategory добавляет категорию
func (r *CatalogRepository) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	n, err := r.createNamed(ctx, "categories", name)
	if err != nil {
		return nil, err
	}
	c := model.Category(n)
	return &c, nil
}

// GetCategory возвращает категорию по id
func (r *CatalogRepository) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	n, err := r.getNamed(ctx, "categories", id)
	if err != nil {
		return nil, err
	}
	c := model.Category(n)
	return &c, nil
}

// UpdateCategory переименовывает категорию
func (r *CatalogRepository) UpdateCategory(ctx context.Context, id int64, name string) (*model.Category, error) {
	n, err := r.updateNamed(ctx, "categories", id, name)
	if err != nil {
		return nil, err
	}
	c := model.Category(n)
	return &c, nil
}

// DeleteCategory удаляет категорию; её продукты и товары удаляются каскадно
func (r *CatalogRepository) DeleteCategory(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "categories", id)
}

// ListCategories возвращает страницу категорий
func (r *CatalogRepository) ListCategories(ctx context.Context, page Page) ([]model.Category, int, error) {
	rows, total, err := r.listNamed(ctx, model.EntityCategory, page)
	if err != nil {
		return nil, 0, err
	}
	out := make([]model.Category, len(rows))
	for i, n := range rows {
		out[i] = model.Category(n)
	}
	return out, total, nil
}
