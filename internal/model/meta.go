package model

import "strings"

// Ключи сущностей, используются в метаданных, событиях и ключах кэша
const (
	EntityParameter     = "parameter"
	EntityManufacture   = "manufacture"
	EntityCategory      = "category"
	EntityProduct       = "product"
	EntityGood          = "good"
	EntityGoodParameter = "good_parameter"
	EntityShop          = "shop"
	EntityShopGood      = "shop_good"
)

// FieldMeta описывает поле сущности для административного интерфейса
type FieldMeta struct {
	Name        string `json:"name"`
	Column      string `json:"column"`
	Type        string `json:"type"`
	VerboseName string `json:"verboseName"`
	HelpText    string `json:"helpText,omitempty"`
	MaxLength   int    `json:"maxLength,omitempty"`
	Unique      bool   `json:"unique,omitempty"`
	Ref         string `json:"ref,omitempty"`
	Default     string `json:"default,omitempty"`
}

// UniqueConstraint составное ограничение уникальности
type UniqueConstraint struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

// EntityMeta метаданные таблицы: отображаемые имена, порядок сортировки,
// поля, ограничения и сущности, удаляемые каскадно вместе с этой
type EntityMeta struct {
	Entity            string             `json:"entity"`
	Table             string             `json:"table"`
	VerboseName       string             `json:"verboseName"`
	VerboseNamePlural string             `json:"verboseNamePlural"`
	Ordering          []string           `json:"ordering"`
	Fields            []FieldMeta        `json:"fields"`
	Constraints       []UniqueConstraint `json:"constraints,omitempty"`
	Cascades          []string           `json:"cascades,omitempty"`
}

func nameField(verbose, help string) FieldMeta {
	return FieldMeta{Name: "name", Column: "name", Type: "string", VerboseName: verbose, HelpText: help, MaxLength: MaxNameLength, Unique: true}
}

var timestampFields = []FieldMeta{
	{Name: "createdAt", Column: "created_at", Type: "datetime", VerboseName: "Дата создания"},
	{Name: "updatedAt", Column: "updated_at", Type: "datetime", VerboseName: "Дата изменения"},
}

func withTimestamps(fields ...FieldMeta) []FieldMeta {
	out := make([]FieldMeta, 0, len(fields)+len(timestampFields)+1)
	out = append(out, FieldMeta{Name: "id", Column: "id", Type: "int"})
	out = append(out, fields...)
	return append(out, timestampFields...)
}

// registry порядок важен: ссылки идут только на уже описанные сущности
var registry = []EntityMeta{
	{
		Entity: EntityParameter, Table: "parameters",
		VerboseName: "Параметр", VerboseNamePlural: "Параметры",
		Ordering: []string{"-id"},
		Fields:   withTimestamps(nameField("параметр", "")),
		Cascades: []string{EntityGoodParameter},
	},
	{
		Entity: EntityManufacture, Table: "manufactures",
		VerboseName: "Производитель", VerboseNamePlural: "Производители",
		Ordering: []string{"-id"},
		Fields:   withTimestamps(nameField("Наименование производителя", "")),
		Cascades: []string{EntityProduct},
	},
	{
		Entity: EntityCategory, Table: "categories",
		VerboseName: "Категория", VerboseNamePlural: "Категории",
		Ordering: []string{"-id"},
		Fields:   withTimestamps(nameField("Категория", "Категория ваших товаров")),
		Cascades: []string{EntityProduct},
	},
	{
		Entity: EntityProduct, Table: "products",
		VerboseName: "Продукт", VerboseNamePlural: "Продукты",
		Ordering: []string{"-id"},
		Fields: withTimestamps(
			nameField("Наименование продукта", "Наименование продукта производителя (Iphone, Flesh card)"),
			FieldMeta{Name: "manufactureId", Column: "manufacture_id", Type: "ref", VerboseName: "Производитель", Ref: EntityManufacture},
			FieldMeta{Name: "categoryId", Column: "category_id", Type: "ref", VerboseName: "Категория", Ref: EntityCategory},
		),
		Cascades: []string{EntityGood},
	},
	{
		Entity: EntityGood, Table: "goods",
		VerboseName: "Товар", VerboseNamePlural: "Товары",
		Ordering: []string{"-id"},
		Fields: withTimestamps(
			FieldMeta{Name: "name", Column: "name", Type: "string", VerboseName: "Наименование товара", MaxLength: MaxNameLength},
			FieldMeta{Name: "priceRrc", Column: "price_rrc", Type: "int", VerboseName: "Рекомендованая розничная цена"},
			FieldMeta{Name: "productId", Column: "product_id", Type: "ref", VerboseName: "Продукт", Ref: EntityProduct},
		),
		Cascades: []string{EntityGoodParameter, EntityShopGood},
	},
	{
		Entity: EntityGoodParameter, Table: "good_parameters",
		VerboseName: "Параметр товара", VerboseNamePlural: "Параметры товаров",
		Ordering: []string{"id"},
		Fields: withTimestamps(
			FieldMeta{Name: "goodId", Column: "good_id", Type: "ref", VerboseName: "Товар", Ref: EntityGood},
			FieldMeta{Name: "parameterId", Column: "parameter_id", Type: "ref", VerboseName: "Параметр", Ref: EntityParameter},
			FieldMeta{Name: "value", Column: "value", Type: "string", VerboseName: "Значение", MaxLength: MaxNameLength},
		),
		Constraints: []UniqueConstraint{{Name: "unique_good_parameter", Fields: []string{"good_id", "parameter_id"}}},
	},
	{
		Entity: EntityShop, Table: "shops",
		VerboseName: "Магазин", VerboseNamePlural: "Магазины",
		Ordering: []string{"id", "name"},
		Fields: withTimestamps(
			FieldMeta{Name: "url", Column: "url", Type: "url", VerboseName: "URL", MaxLength: MaxShopFieldLength},
			FieldMeta{Name: "name", Column: "name", Type: "string", VerboseName: "Наименование магазина", MaxLength: MaxShopFieldLength},
			FieldMeta{Name: "isActive", Column: "is_active", Type: "bool", VerboseName: "Статус активности", Default: "true"},
		),
		Cascades: []string{EntityShopGood},
	},
	{
		Entity: EntityShopGood, Table: "shop_goods",
		VerboseName: "Товар магазина", VerboseNamePlural: "Товары магазинов",
		Ordering: []string{"id"},
		Fields: withTimestamps(
			FieldMeta{Name: "shopId", Column: "shop_id", Type: "ref", VerboseName: "Магазин", Ref: EntityShop},
			FieldMeta{Name: "goodId", Column: "good_id", Type: "ref", VerboseName: "Товар", Ref: EntityGood},
			FieldMeta{Name: "unitPrice", Column: "unit_price", Type: "int", VerboseName: "Цена за единицу товара"},
			FieldMeta{Name: "remainedNumbee", Column: "remained_numbee", Type: "int", VerboseName: "Остаток товара", Default: "0"},
		),
		Constraints: []UniqueConstraint{{Name: "unique_shop_good", Fields: []string{"shop_id", "good_id"}}},
	},
}

// Meta возвращает метаданные всех сущностей каталога
func Meta() []EntityMeta {
	out := make([]EntityMeta, len(registry))
	copy(out, registry)
	return out
}

// MetaFor возвращает метаданные сущности по ключу или имени таблицы
func MetaFor(entity string) (EntityMeta, bool) {
	entity = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(entity)), "-", "_")
	for _, m := range registry {
		if m.Entity == entity || m.Table == entity {
			return m, true
		}
	}
	return EntityMeta{}, false
}

// OrderBy возвращает порядок сортировки сущности в виде SQL, например "id DESC".
// Для неизвестной сущности сортирует по id
func OrderBy(entity string) string {
	m, ok := MetaFor(entity)
	if !ok || len(m.Ordering) == 0 {
		return "id"
	}
	parts := make([]string, 0, len(m.Ordering))
	for _, o := range m.Ordering {
		if strings.HasPrefix(o, "-") {
			parts = append(parts, strings.TrimPrefix(o, "-")+" DESC")
			continue
		}
		parts = append(parts, o)
	}
	return strings.Join(parts, ", ")
}

// CascadeClosure возвращает все сущности, строки которых удаляются вместе с entity,
// включая транзитивные каскады. Сама entity в результат не входит
func CascadeClosure(entity string) []string {
	seen := map[string]bool{entity: true}
	var out []string
	queue := []string{entity}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		m, ok := MetaFor(cur)
		if !ok {
			continue
		}
		for _, dep := range m.Cascades {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			out = append(out, dep)
			queue = append(queue, dep)
		}
	}
	return out
}
