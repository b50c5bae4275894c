package repository

import (
	"context"

	"ShopCatalog/internal/model"
)

const productColumns = "id, name, manufacture_id, category_id, created_at, updated_at"

// ProductFilter фильтры списка продуктов; нулевое значение поля не фильтрует
type ProductFilter struct {
	ManufactureID int64
	CategoryID    int64
}

func scanProduct(s rowScanner) (model.Product, error) {
	var p model.Product
	err := s.Scan(&p.ID, &p.Name, &p.ManufactureID, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreateProduct добавляет продукт производителя в категорию
func (r *CatalogRepository) CreateProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	query := `INSERT INTO products(name, manufacture_id, category_id) VALUES($1, $2, $3)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, p.Name, p.ManufactureID, p.CategoryID).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapError("insert product", err)
	}
	return &p, nil
}

// GetProduct возвращает продукт по id
func (r *CatalogRepository) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id=$1", id))
	if err != nil {
		return nil, mapError("get product", err)
	}
	return &p, nil
}

// UpdateProduct обновляет наименование и ссылки продукта
func (r *CatalogRepository) UpdateProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	query := `UPDATE products SET name=$1, manufacture_id=$2, category_id=$3, updated_at=now()
		WHERE id=$4 RETURNING ` + productColumns
	out, err := scanProduct(r.db.QueryRowContext(ctx, query, p.Name, p.ManufactureID, p.CategoryID, p.ID))
	if err != nil {
		return nil, mapError("update product", err)
	}
	return &out, nil
}

// DeleteProduct удаляет продукт; его товары удаляются каскадно
func (r *CatalogRepository) DeleteProduct(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "products", id)
}

// ListProducts возвращает страницу продуктов с фильтрами по производителю и категории
func (r *CatalogRepository) ListProducts(ctx context.Context, f ProductFilter, page Page) ([]model.Product, int, error) {
	var c conditions
	if f.ManufactureID > 0 {
		c.add("manufacture_id=$%d", f.ManufactureID)
	}
	if f.CategoryID > 0 {
		c.add("category_id=$%d", f.CategoryID)
	}
	return listQuery(ctx, r.db, model.EntityProduct, productColumns, c, page, scanProduct)
}
