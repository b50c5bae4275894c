// Пакет repository содержит unit-тесты слоя доступа к данным CatalogRepository
package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"ShopCatalog/internal/model"
)

func newMockRepo(t *testing.T) (*CatalogRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewCatalogRepository(db), mock
}

// Тест создания параметра: вставка и автогенерация полей через RETURNING
func TestCreateParameter(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO parameters(name) VALUES($1) RETURNING id, created_at, updated_at")).
		WithArgs("цвет").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(7, now, now))

	p, err := repo.CreateParameter(context.Background(), "цвет")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != 7 || p.Name != "цвет" || !p.CreatedAt.Equal(now) {
		t.Errorf("unexpected parameter: %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// Дубликат имени производителя превращается в ErrAlreadyExists с именем ограничения
func TestCreateManufacture_Duplicate(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO manufactures(name)")).
		WithArgs("Apple").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "manufactures_name_key"})

	_, err := repo.CreateManufacture(context.Background(), "Apple")
	require.ErrorIs(t, err, ErrAlreadyExists)
	var cerr *ConstraintError
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, "manufactures_name_key", cerr.Constraint)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Тест получения категории: успешное чтение и ErrNotFound
func TestGetCategory(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()
	columns := []string{"id", "name", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, created_at, updated_at FROM categories WHERE id=$1")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(1, "Телефоны", time.Now(), time.Now()))

	c, err := repo.GetCategory(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Телефоны", c.Name)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, created_at, updated_at FROM categories WHERE id=$1")).
		WithArgs(2).
		WillReturnError(sql.ErrNoRows)
	_, err = repo.GetCategory(ctx, 2)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestGetProduct_QueryError: произвольная ошибка драйвера оборачивается и прокидывается
func TestGetProduct_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, manufacture_id, category_id, created_at, updated_at FROM products WHERE id=$1")).
		WithArgs(3).
		WillReturnError(errors.New("timeout"))
	_, err := repo.GetProduct(context.Background(), 3)
	if err == nil || !strings.Contains(err.Error(), "timeout") {
		t.Errorf("expected query error, got %v", err)
	}
	require.False(t, errors.Is(err, ErrNotFound))
}

// Продукт с несуществующим производителем нарушает внешний ключ
func TestCreateProduct_InvalidReference(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO products(name, manufacture_id, category_id)")).
		WithArgs("Iphone", 99, 1).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "products_manufacture_id_fkey"})

	_, err := repo.CreateProduct(context.Background(), model.Product{Name: "Iphone", ManufactureID: 99, CategoryID: 1})
	require.ErrorIs(t, err, ErrInvalidReference)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Тест обновления товара: UPDATE ... RETURNING и ErrNotFound для отсутствующей строки
func TestUpdateGood(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()
	columns := []string{"id", "name", "price_rrc", "product_id", "created_at", "updated_at"}
	query := regexp.QuoteMeta("UPDATE goods SET name=$1, price_rrc=$2, product_id=$3, updated_at=now()")
	mock.ExpectQuery(query).
		WithArgs("X", 120, 1, 5).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(5, "X", 120, 1, time.Now(), time.Now()))

	g, err := repo.UpdateGood(ctx, model.Good{ID: 5, Name: "X", PriceRRC: 120, ProductID: 1})
	require.NoError(t, err)
	require.Equal(t, int64(120), g.PriceRRC)

	mock.ExpectQuery(query).WithArgs("X", 120, 1, 6).WillReturnError(sql.ErrNoRows)
	_, err = repo.UpdateGood(ctx, model.Good{ID: 6, Name: "X", PriceRRC: 120, ProductID: 1})
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Тест удаления: каскад выполняет база, репозиторий проверяет число удалённых строк
func TestDeleteManufacture(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM manufactures WHERE id=$1")).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.DeleteManufacture(ctx, 1))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM manufactures WHERE id=$1")).
		WithArgs(2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.DeleteManufacture(ctx, 2), ErrNotFound)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM manufactures WHERE id=$1")).
		WithArgs(3).
		WillReturnError(errors.New("conn reset"))
	err := repo.DeleteManufacture(ctx, 3)
	require.Error(t, err)
	require.Contains(t, err.Error(), "conn reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

// Тест списка товаров с фильтром по продукту и сортировкой по убыванию id
func TestListGoods(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM goods WHERE product_id=$1")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, price_rrc, product_id, created_at, updated_at FROM goods WHERE product_id=$1 ORDER BY id DESC LIMIT $2 OFFSET $3")).
		WithArgs(3, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price_rrc", "product_id", "created_at", "updated_at"}).
			AddRow(2, "B", 200, 3, time.Now(), time.Now()).
			AddRow(1, "A", 100, 3, time.Now(), time.Now()))

	goods, total, err := repo.ListGoods(context.Background(), GoodFilter{ProductID: 3}, Page{Limit: 10, Offset: 0})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, goods, 2)
	require.Equal(t, int64(2), goods[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Тест списка магазинов: порядок (id, name) и фильтр активности
func TestListShops_ActiveFilter(t *testing.T) {
	repo, mock := newMockRepo(t)
	active := true
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM shops WHERE is_active=$1")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM shops WHERE is_active=$1 ORDER BY id, name LIMIT $2 OFFSET $3")).
		WithArgs(true, 5, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "url", "name", "is_active", "created_at", "updated_at"}).
			AddRow(1, "https://a.example.com", "A", true, time.Now(), time.Now()))

	shops, total, err := repo.ListShops(context.Background(), ShopFilter{Active: &active}, Page{Limit: 5, Offset: 5})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "A", shops[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestListParameters_CountError: ошибка подсчёта прерывает выборку
func TestListParameters_CountError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM parameters")).
		WillReturnError(errors.New("count failed"))
	_, _, err := repo.ListParameters(context.Background(), Page{Limit: 10})
	require.Error(t, err)
	require.Contains(t, err.Error(), "count failed")
	require.NoError(t, mock.ExpectationsWereMet())
}

// Повторная пара (shop, good) нарушает unique_shop_good
func TestCreateShopGood_Duplicate(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()
	query := regexp.QuoteMeta("INSERT INTO shop_goods(shop_id, good_id, unit_price, remained_numbee)")
	mock.ExpectQuery(query).
		WithArgs(1, 1, 50, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(1, time.Now(), time.Now()))
	mock.ExpectQuery(query).
		WithArgs(1, 1, 60, 1).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "unique_shop_good"})

	sg, err := repo.CreateShopGood(ctx, model.ShopGood{ShopID: 1, GoodID: 1, UnitPrice: 50, RemainedNumbee: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), sg.ID)

	_, err = repo.CreateShopGood(ctx, model.ShopGood{ShopID: 1, GoodID: 1, UnitPrice: 60, RemainedNumbee: 1})
	require.ErrorIs(t, err, ErrAlreadyExists)
	require.Contains(t, err.Error(), "unique_shop_good")
	require.NoError(t, mock.ExpectationsWereMet())
}

// Повторная пара (good, parameter) нарушает unique_good_parameter
func TestCreateGoodParameter_Duplicate(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO good_parameters(good_id, parameter_id, value)")).
		WithArgs(1, 2, "красный").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "unique_good_parameter"})
	_, err := repo.CreateGoodParameter(context.Background(), model.GoodParameter{GoodID: 1, ParameterID: 2, Value: "красный"})
	require.ErrorIs(t, err, ErrAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Отрицательный остаток, пропущенный мимо валидации, отклоняет CHECK базы
func TestUpdateShopGood_CheckViolation(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE shop_goods SET shop_id=$1")).
		WithArgs(1, 1, 10, -1, 4).
		WillReturnError(&pq.Error{Code: "23514", Constraint: "shop_goods_remained_numbee_check"})
	_, err := repo.UpdateShopGood(context.Background(), model.ShopGood{ID: 4, ShopID: 1, GoodID: 1, UnitPrice: 10, RemainedNumbee: -1})
	require.ErrorIs(t, err, ErrCheckViolation)
}

// Тест карточных выборок: значения параметров и предложения активных магазинов
func TestGoodCardQueries(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()
	mock.ExpectQuery(regexp.QuoteMeta("FROM good_parameters gp JOIN parameters p ON p.id = gp.parameter_id")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"parameter_id", "name", "value"}).AddRow(2, "цвет", "красный"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM shop_goods sg JOIN shops s ON s.id = sg.shop_id")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"shop_id", "name", "url", "unit_price", "remained_numbee"}).
			AddRow(1, "A", "https://a.example.com", 50, 10))

	values, err := repo.ListGoodParameterValues(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []model.GoodParameterValue{{ParameterID: 2, Name: "цвет", Value: "красный"}}, values)

	offers, err := repo.ListGoodOffers(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []model.GoodOffer{{ShopID: 1, ShopName: "A", ShopURL: "https://a.example.com", UnitPrice: 50, RemainedNumbee: 10}}, offers)
	require.NoError(t, mock.ExpectationsWereMet())
}

var shopGoodRowColumns = []string{"id", "shop_id", "good_id", "unit_price", "remained_numbee", "created_at", "updated_at"}

// Тест изменения остатка: SELECT FOR UPDATE + UPDATE + COMMIT
func TestAdjustStock(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM shop_goods WHERE id=$1 FOR UPDATE")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows(shopGoodRowColumns).AddRow(4, 1, 1, 50, 10, time.Now(), time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE shop_goods SET remained_numbee=$1, updated_at=now() WHERE id=$2 RETURNING updated_at")).
		WithArgs(7, 4).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))
	mock.ExpectCommit()

	sg, err := repo.AdjustStock(context.Background(), 4, -3)
	require.NoError(t, err)
	require.Equal(t, int64(7), sg.RemainedNumbee)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Списание больше остатка отклоняется с откатом транзакции
func TestAdjustStock_BelowZero(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM shop_goods WHERE id=$1 FOR UPDATE")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows(shopGoodRowColumns).AddRow(4, 1, 1, 50, 2, time.Now(), time.Now()))
	mock.ExpectRollback()

	_, err := repo.AdjustStock(context.Background(), 4, -3)
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, model.MsgNegativeQuantity, verr.Fields["remainedNumbee"])
	require.NoError(t, mock.ExpectationsWereMet())
}

// Отсутствующая строка при изменении остатка даёт ErrNotFound
func TestAdjustStock_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM shop_goods WHERE id=$1 FOR UPDATE")).
		WithArgs(9).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()
	_, err := repo.AdjustStock(context.Background(), 9, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

// TestAdjustStock_CommitError: ошибка Commit возвращается вызывающему
func TestAdjustStock_CommitError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM shop_goods WHERE id=$1 FOR UPDATE")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows(shopGoodRowColumns).AddRow(4, 1, 1, 50, 2, time.Now(), time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE shop_goods SET remained_numbee=$1")).
		WithArgs(5, 4).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))
	_, err := repo.AdjustStock(context.Background(), 4, 3)
	if err == nil || !strings.Contains(err.Error(), "commit failed") {
		t.Errorf("expected commit error, got %v", err)
	}
}

// Увеличение остатка сверх INTEGER отклоняется до UPDATE
func TestAdjustStock_AboveMaxInteger(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM shop_goods WHERE id=$1 FOR UPDATE")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows(shopGoodRowColumns).AddRow(4, 1, 1, 50, model.MaxInteger-1, time.Now(), time.Now()))
	mock.ExpectRollback()

	_, err := repo.AdjustStock(context.Background(), 4, 2)
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, model.MsgOutOfRange, verr.Fields["remainedNumbee"])
	require.NoError(t, mock.ExpectationsWereMet())
}

// Значение, не помещающееся в колонку, и символ NUL дают ErrCheckViolation, а не внутреннюю ошибку
func TestCreate_ValueNotStorable(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO shop_goods(shop_id, good_id, unit_price, remained_numbee)")).
		WithArgs(1, 1, 3000000000, 1).
		WillReturnError(&pq.Error{Code: "22003", Column: "unit_price"})
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO parameters(name)")).
		WithArgs("a\x00b").
		WillReturnError(&pq.Error{Code: "22021"})

	_, err := repo.CreateShopGood(ctx, model.ShopGood{ShopID: 1, GoodID: 1, UnitPrice: 3000000000, RemainedNumbee: 1})
	require.ErrorIs(t, err, ErrCheckViolation)
	var cerr *ConstraintError
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, "unit_price", cerr.Constraint)

	_, err = repo.CreateParameter(ctx, "a\x00b")
	require.ErrorIs(t, err, ErrCheckViolation)
	require.NoError(t, mock.ExpectationsWereMet())
}
