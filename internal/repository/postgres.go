package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"ShopCatalog/internal/model"
)

// CatalogRepository реализует доступ к таблицам каталога в PostgreSQL
type CatalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository создает новый репозиторий каталога
func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Page параметры пагинации списков
type Page struct {
	Limit  int
	Offset int
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// conditions собирает WHERE с нумерованными плейсхолдерами $1, $2, ...
type conditions struct {
	parts []string
	args  []interface{}
}

// add добавляет условие; format содержит один %d под номер аргумента, например "good_id=$%d"
func (c *conditions) add(format string, arg interface{}) {
	c.args = append(c.args, arg)
	c.parts = append(c.parts, fmt.Sprintf(format, len(c.args)))
}

func (c *conditions) where() string {
	if len(c.parts) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.parts, " AND ")
}

// listQuery считает записи таблицы с условиями и выбирает страницу в порядке сортировки сущности
func listQuery[T any](ctx context.Context, db *sql.DB, entity, columns string, c conditions, page Page, scan func(rowScanner) (T, error)) ([]T, int, error) {
	meta, ok := model.MetaFor(entity)
	if !ok {
		return nil, 0, fmt.Errorf("unknown entity %q", entity)
	}
	var total int
	countQuery := "SELECT COUNT(*) FROM " + meta.Table + c.where()
	if err := db.QueryRowContext(ctx, countQuery, c.args...).Scan(&total); err != nil {
		return nil, 0, mapError("count "+meta.Table, err)
	}
	args := append(append([]interface{}{}, c.args...), page.Limit, page.Offset)
	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT $%d OFFSET $%d",
		columns, meta.Table, c.where(), model.OrderBy(entity), len(args)-1, len(args))
	items, err := queryRows(ctx, db, query, scan, args...)
	if err != nil {
		return nil, 0, mapError("select "+meta.Table, err)
	}
	return items, total, nil
}

// queryRows выполняет запрос и сканирует все строки результата
func queryRows[T any](ctx context.Context, db *sql.DB, query string, scan func(rowScanner) (T, error), args ...interface{}) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// deleteByID удаляет строку по id; зависимые строки удаляются каскадно самой базой
func (r *CatalogRepository) deleteByID(ctx context.Context, table string, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id=$1", id)
	if err != nil {
		return mapError("delete from "+table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapError("delete from "+table, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
