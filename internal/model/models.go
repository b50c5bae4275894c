package model

import (
	"fmt"
	"math"
	"time"
)

// MaxNameLength ограничивает длину наименований справочников и товаров
const MaxNameLength = 180

// MaxShopFieldLength ограничивает длину url и наименования магазина
const MaxShopFieldLength = 254

// Цены и остатки хранятся в колонках INTEGER
const (
	MaxInteger = math.MaxInt32
	MinInteger = math.MinInt32
)

// Timestamps общая часть всех таблиц: время создания и последнего изменения.
// Оба поля заполняются базой данных
type Timestamps struct {
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Parameter представляет параметр товара (таблица parameters), например "цвет"
type Parameter struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name" validate:"required,nonul,max=180"`
	Timestamps
}

func (p Parameter) String() string { return p.Name }

// Manufacture представляет производителя (таблица manufactures)
type Manufacture struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name" validate:"required,nonul,max=180"`
	Timestamps
}

func (m Manufacture) String() string { return m.Name }

// Category представляет категорию товаров (таблица categories)
type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name" validate:"required,nonul,max=180"`
	Timestamps
}

func (c Category) String() string { return c.Name }

// Product представляет продукт производителя (таблица products)
type Product struct {
	ID            int64  `db:"id" json:"id"`
	Name          string `db:"name" json:"name" validate:"required,nonul,max=180"`
	ManufactureID int64  `db:"manufacture_id" json:"manufactureId" validate:"gt=0"`
	CategoryID    int64  `db:"category_id" json:"categoryId" validate:"gt=0"`
	Timestamps
}

func (p Product) String() string { return p.Name }

// Good представляет товар (таблица goods), привязанный к продукту
type Good struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name" validate:"required,nonul,max=180"`
	PriceRRC  int64  `db:"price_rrc" json:"priceRrc" validate:"integer"`
	ProductID int64  `db:"product_id" json:"productId" validate:"gt=0"`
	Timestamps
}

func (g Good) String() string { return g.Name }

// GoodParameter значение параметра для конкретного товара (таблица good_parameters).
// Пара (good_id, parameter_id) уникальна
type GoodParameter struct {
	ID          int64  `db:"id" json:"id"`
	GoodID      int64  `db:"good_id" json:"goodId" validate:"gt=0"`
	ParameterID int64  `db:"parameter_id" json:"parameterId" validate:"gt=0"`
	Value       string `db:"value" json:"value" validate:"required,nonul,max=180"`
	Timestamps
}

func (gp GoodParameter) String() string { return gp.Value }

// Shop представляет магазин (таблица shops)
type Shop struct {
	ID       int64  `db:"id" json:"id"`
	URL      string `db:"url" json:"url" validate:"required,nonul,url,max=254"`
	Name     string `db:"name" json:"name" validate:"required,nonul,max=254"`
	IsActive bool   `db:"is_active" json:"isActive"`
	Timestamps
}

func (s Shop) String() string { return s.Name }

// ShopGood цена и остаток товара в конкретном магазине (таблица shop_goods).
// Пара (shop_id, good_id) уникальна, цена и остаток не бывают отрицательными
type ShopGood struct {
	ID             int64 `db:"id" json:"id"`
	ShopID         int64 `db:"shop_id" json:"shopId" validate:"gt=0"`
	GoodID         int64 `db:"good_id" json:"goodId" validate:"gt=0"`
	UnitPrice      int64 `db:"unit_price" json:"unitPrice" validate:"price,integer"`
	RemainedNumbee int64 `db:"remained_numbee" json:"remainedNumbee" validate:"quantity,integer"`
	Timestamps
}

func (sg ShopGood) String() string { return fmt.Sprintf("%d:%d", sg.ShopID, sg.GoodID) }

// GoodParameterValue параметр товара вместе с его наименованием
type GoodParameterValue struct {
	ParameterID int64  `db:"parameter_id" json:"parameterId"`
	Name        string `db:"name" json:"name"`
	Value       string `db:"value" json:"value"`
}

// GoodOffer предложение товара в активном магазине
type GoodOffer struct {
	ShopID         int64  `db:"shop_id" json:"shopId"`
	ShopName       string `db:"shop_name" json:"shopName"`
	ShopURL        string `db:"shop_url" json:"shopUrl"`
	UnitPrice      int64  `db:"unit_price" json:"unitPrice"`
	RemainedNumbee int64  `db:"remained_numbee" json:"remainedNumbee"`
}

// GoodCard карточка товара: товар, его продукт, значения параметров и предложения магазинов
type GoodCard struct {
	Good       Good                 `json:"good"`
	Product    Product              `json:"product"`
	Parameters []GoodParameterValue `json:"parameters"`
	Offers     []GoodOffer          `json:"offers"`
}
