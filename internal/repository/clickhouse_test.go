package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"ShopCatalog/internal/model"
)

func TestBatchInsertEvents(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	log, hook := test.NewNullLogger()
	repo := NewClickhouseRepo(db, log)

	occurred := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	events := []model.ChangeEvent{
		{ID: "01HX0000000000000000000001", Entity: model.EntityGood, Action: model.ActionCreated, EntityID: 1,
			Payload: json.RawMessage(`{"id":1}`), OccurredAt: occurred},
		{ID: "01HX0000000000000000000002", Entity: model.EntityShop, Action: model.ActionDeleted, EntityID: 3,
			Payload: json.RawMessage(`{"id":3}`), OccurredAt: occurred},
	}

	// Ожидаем начало транзакции
	mock.ExpectBegin()
	// Ожидаем подготовку запроса и вставку каждого события
	prep := mock.ExpectPrepare("INSERT INTO catalog_events")
	prep.ExpectExec().
		WithArgs("01HX0000000000000000000001", "good", "created", 1, `{"id":1}`, occurred).
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().
		WithArgs("01HX0000000000000000000002", "shop", "deleted", 3, `{"id":3}`, occurred).
		WillReturnResult(sqlmock.NewResult(1, 1))
	// Ожидаем коммит
	mock.ExpectCommit()

	err = repo.BatchInsertEvents(context.Background(), events)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	require.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	require.Equal(t, 2, hook.LastEntry().Data["count"])
}

func TestBatchInsertEvents_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	log, _ := test.NewNullLogger()

	require.NoError(t, NewClickhouseRepo(db, log).BatchInsertEvents(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchInsertEvents_ExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	log, hook := test.NewNullLogger()
	repo := NewClickhouseRepo(db, log)

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO catalog_events").
		ExpectExec().
		WillReturnError(errors.New("clickhouse down"))
	mock.ExpectRollback()

	err = repo.BatchInsertEvents(context.Background(), []model.ChangeEvent{{ID: "x", Entity: model.EntityGood}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "clickhouse down")
	require.NoError(t, mock.ExpectationsWereMet())
	require.Empty(t, hook.AllEntries())
}
