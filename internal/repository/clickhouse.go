package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"ShopCatalog/internal/model"
)

// ClickhouseRepo реализует пакетную запись событий каталога в ClickHouse
type ClickhouseRepo struct {
	db  *sql.DB
	log logrus.FieldLogger
}

// NewClickhouseRepo создаёт новый репозиторий для ClickHouse
func NewClickhouseRepo(db *sql.DB, log logrus.FieldLogger) *ClickhouseRepo {
	return &ClickhouseRepo{db: db, log: log}
}

// BatchInsertEvents записывает пакет событий в таблицу catalog_events.
// clickhouse-go собирает все Exec внутри транзакции в один блок
func (r *ClickhouseRepo) BatchInsertEvents(ctx context.Context, events []model.ChangeEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin ClickHouse batch: %w", err)
	}
	query := `INSERT INTO catalog_events (EventId, Entity, Action, EntityId, Payload, OccurredAt) VALUES (?, ?, ?, ?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare ClickHouse batch: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for _, e := range events {
		_, err := stmt.ExecContext(ctx, e.ID, e.Entity, e.Action, e.EntityID, string(e.Payload), e.OccurredAt)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to append event %s: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ClickHouse batch: %w", err)
	}
	r.log.WithField("count", len(events)).Info("catalog events written to ClickHouse")
	return nil
}
