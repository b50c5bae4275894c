package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrNotFound возвращается при отсутствии записи
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists возвращается при нарушении ограничения уникальности
var ErrAlreadyExists = errors.New("record already exists")

// ErrInvalidReference возвращается, когда внешний ключ ссылается на несуществующую строку
var ErrInvalidReference = errors.New("referenced record does not exist")

// ErrCheckViolation возвращается при нарушении CHECK ограничения (отрицательная цена или остаток)
// и при значениях, которые колонка не может хранить
var ErrCheckViolation = errors.New("check constraint violated")

// ConstraintError описывает нарушение ограничения базы данных.
// Err всегда один из ErrAlreadyExists, ErrInvalidReference, ErrCheckViolation
type ConstraintError struct {
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.Constraint == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s (%s)", e.Err.Error(), e.Constraint)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// mapError переводит ошибки драйвера в ошибки репозитория.
// op описывает операцию и попадает в текст прочих ошибок
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return &ConstraintError{Constraint: pqErr.Constraint, Err: ErrAlreadyExists}
		case "foreign_key_violation":
			return &ConstraintError{Constraint: pqErr.Constraint, Err: ErrInvalidReference}
		case "check_violation":
			return &ConstraintError{Constraint: pqErr.Constraint, Err: ErrCheckViolation}
		case "numeric_value_out_of_range", "character_not_in_repertoire":
			return &ConstraintError{Constraint: pqErr.Column, Err: ErrCheckViolation}
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
