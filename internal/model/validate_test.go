package model

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate_ShopGoodNegativeValues(t *testing.T) {
	// отрицательная цена и отрицательный остаток отклоняются
	err := Validate(ShopGood{ShopID: 1, GoodID: 1, UnitPrice: -1, RemainedNumbee: -5})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, MsgNegativePrice, verr.Fields["unitPrice"])
	require.Equal(t, MsgNegativeQuantity, verr.Fields["remainedNumbee"])
}

func TestValidate_ShopGoodZeroAllowed(t *testing.T) {
	// ноль допустим и для цены, и для остатка
	require.NoError(t, Validate(ShopGood{ShopID: 1, GoodID: 2, UnitPrice: 0, RemainedNumbee: 0}))
	require.NoError(t, Validate(ShopGood{ShopID: 1, GoodID: 2, UnitPrice: 50, RemainedNumbee: 10}))
}

func TestValidate_NameLength(t *testing.T) {
	long := strings.Repeat("я", MaxNameLength+1)
	err := Validate(Parameter{Name: long})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "must be at most 180 characters", verr.Fields["name"])

	// ровно 180 символов допустимо, длина считается в символах, а не байтах
	require.NoError(t, Validate(Parameter{Name: strings.Repeat("я", MaxNameLength)}))
}

func TestValidate_Required(t *testing.T) {
	err := Validate(Manufacture{})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, MsgRequired, verr.Fields["name"])
}

func TestValidate_References(t *testing.T) {
	err := Validate(Product{Name: "Iphone"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, MsgInvalidReference, verr.Fields["manufactureId"])
	require.Equal(t, MsgInvalidReference, verr.Fields["categoryId"])
}

func TestValidate_ShopURL(t *testing.T) {
	err := Validate(Shop{Name: "A", URL: "not a url"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, MsgInvalidURL, verr.Fields["url"])

	require.NoError(t, Validate(Shop{Name: "A", URL: "https://a.example.com", IsActive: true}))
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"b": "second", "a": "first"}}
	require.Equal(t, "validation failed: a: first; b: second", err.Error())
	require.Equal(t, map[string]string{"x": "y"}, NewValidationError("x", "y").Fields)
}

func TestValidate_IntegerRange(t *testing.T) {
	err := Validate(ShopGood{ShopID: 1, GoodID: 1, UnitPrice: 3000000000, RemainedNumbee: MaxInteger + 1})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, MsgOutOfRange, verr.Fields["unitPrice"])
	require.Equal(t, MsgOutOfRange, verr.Fields["remainedNumbee"])

	err = Validate(Good{Name: "X", PriceRRC: MinInteger - 1, ProductID: 1})
	require.True(t, errors.As(err, &verr))
	require.Equal(t, MsgOutOfRange, verr.Fields["priceRrc"])

	// граничные значения INTEGER допустимы
	require.NoError(t, Validate(ShopGood{ShopID: 1, GoodID: 1, UnitPrice: MaxInteger, RemainedNumbee: MaxInteger}))
	require.NoError(t, Validate(Good{Name: "X", PriceRRC: MaxInteger, ProductID: 1}))
}

func TestValidate_NulCharacter(t *testing.T) {
	err := Validate(Parameter{Name: "цв\x00ет"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, MsgNulCharacter, verr.Fields["name"])

	err = Validate(Shop{Name: "A\x00", URL: "https://a.example.com"})
	require.True(t, errors.As(err, &verr))
	require.Equal(t, MsgNulCharacter, verr.Fields["name"])

	err = Validate(GoodParameter{GoodID: 1, ParameterID: 1, Value: "\x00"})
	require.True(t, errors.As(err, &verr))
	require.Equal(t, MsgNulCharacter, verr.Fields["value"])
}
