// Пакет clickhouse содержит встроенные миграции таблицы аудита catalog_events
package clickhouse

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratech "github.com/golang-migrate/migrate/v4/database/clickhouse"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var files embed.FS

// New создаёт экземпляр golang-migrate для ClickHouse
func New(db *sql.DB) (*migrate.Migrate, error) {
	m, _, err := newWithSource(db)
	return m, err
}

func newWithSource(db *sql.DB) (*migrate.Migrate, source.Driver, error) {
	src, err := iofs.New(files, ".")
	if err != nil {
		return nil, nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	driver, err := migratech.WithInstance(db, &migratech.Config{})
	if err != nil {
		_ = src.Close()
		return nil, nil, fmt.Errorf("create ClickHouse migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "clickhouse", driver)
	if err != nil {
		_ = src.Close()
		return nil, nil, fmt.Errorf("create ClickHouse migrate instance: %w", err)
	}
	return m, src, nil
}

// Up применяет все up миграции ClickHouse.
// Драйвер ClickHouse закрывает общий db в Close, поэтому закрывается только источник
func Up(db *sql.DB) (err error) {
	m, src, err := newWithSource(db)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := src.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close ClickHouse migration source: %w", cerr)
		}
	}()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply ClickHouse migrations: %w", err)
	}
	return nil
}
