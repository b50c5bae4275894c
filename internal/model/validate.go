package model

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Сообщения об ошибках валидации полей
const (
	MsgRequired         = "is required"
	MsgNegativePrice    = "price cannot be negative"
	MsgNegativeQuantity = "quantity cannot be negative"
	MsgInvalidURL       = "must be a valid URL"
	MsgInvalidReference = "must reference an existing row"
	MsgNulCharacter     = "must not contain NUL characters"
)

// MsgOutOfRange сообщение о значении за пределами колонки INTEGER
var MsgOutOfRange = fmt.Sprintf("must be between %d and %d", MinInteger, MaxInteger)

// ValidationError содержит ошибки по полям: ключом служит json-имя поля, значением сообщение
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError создаёт ошибку валидации для одного поля
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// validatorInstance лениво создаёт общий валидатор.
// Имена полей берутся из json-тегов, чтобы совпадать с API
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		// цена и остаток в магазине не могут быть отрицательными
		_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
			return fl.Field().Int() >= 0
		})
		_ = v.RegisterValidation("quantity", func(fl validator.FieldLevel) bool {
			return fl.Field().Int() >= 0
		})
		_ = v.RegisterValidation("integer", func(fl validator.FieldLevel) bool {
			i := fl.Field().Int()
			return i >= MinInteger && i <= MaxInteger
		})
		// PostgreSQL не хранит символ NUL в text
		_ = v.RegisterValidation("nonul", func(fl validator.FieldLevel) bool {
			return !strings.ContainsRune(fl.Field().String(), 0)
		})
		validate = v
	})
	return validate
}

// Validate проверяет сущность по тегам validate и возвращает *ValidationError
// со списком всех нарушенных полей либо nil
func Validate(v interface{}) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "url":
		return MsgInvalidURL
	case "gt":
		return MsgInvalidReference
	case "price":
		return MsgNegativePrice
	case "quantity":
		return MsgNegativeQuantity
	case "integer":
		return MsgOutOfRange
	case "nonul":
		return MsgNulCharacter
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}
