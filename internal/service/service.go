package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"ShopCatalog/internal/model"
	"ShopCatalog/internal/repository"
	"ShopCatalog/pkg/cache"
)

// ReferenceRepo справочники: параметры, производители, категории
type ReferenceRepo interface {
	CreateParameter(ctx context.Context, name string) (*model.Parameter, error)
	GetParameter(ctx context.Context, id int64) (*model.Parameter, error)
	UpdateParameter(ctx context.Context, id int64, name string) (*model.Parameter, error)
	DeleteParameter(ctx context.Context, id int64) error
	ListParameters(ctx context.Context, page repository.Page) ([]model.Parameter, int, error)

	CreateManufacture(ctx context.Context, name string) (*model.Manufacture, error)
	GetManufacture(ctx context.Context, id int64) (*model.Manufacture, error)
	UpdateManufacture(ctx context.Context, id int64, name string) (*model.Manufacture, error)
	DeleteManufacture(ctx context.Context, id int64) error
	ListManufactures(ctx context.Context, page repository.Page) ([]model.Manufacture, int, error)

	CreateCategory(ctx context.Context, name string) (*model.Category, error)
	GetCategory(ctx context.Context, id int64) (*model.Category, error)
	UpdateCategory(ctx context.Context, id int64, name string) (*model.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context, page repository.Page) ([]model.Category, int, error)
}

// ProductRepo операции с продуктами
type ProductRepo interface {
	CreateProduct(ctx context.Context, p model.Product) (*model.Product, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	UpdateProduct(ctx context.Context, p model.Product) (*model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListProducts(ctx context.Context, f repository.ProductFilter, page repository.Page) ([]model.Product, int, error)
}

// GoodRepo операции с товарами и значениями их параметров
type GoodRepo interface {
	CreateGood(ctx context.Context, g model.Good) (*model.Good, error)
	GetGood(ctx context.Context, id int64) (*model.Good, error)
	UpdateGood(ctx context.Context, g model.Good) (*model.Good, error)
	DeleteGood(ctx context.Context, id int64) error
	ListGoods(ctx context.Context, f repository.GoodFilter, page repository.Page) ([]model.Good, int, error)

	CreateGoodParameter(ctx context.Context, gp model.GoodParameter) (*model.GoodParameter, error)
	GetGoodParameter(ctx context.Context, id int64) (*model.GoodParameter, error)
	UpdateGoodParameter(ctx context.Context, gp model.GoodParameter) (*model.GoodParameter, error)
	DeleteGoodParameter(ctx context.Context, id int64) error
	ListGoodParameters(ctx context.Context, f repository.GoodParameterFilter, page repository.Page) ([]model.GoodParameter, int, error)
	ListGoodParameterValues(ctx context.Context, goodID int64) ([]model.GoodParameterValue, error)
}

// ShopRepo операции с магазинами, их ценами и остатками
type ShopRepo interface {
	CreateShop(ctx context.Context, sh model.Shop) (*model.Shop, error)
	GetShop(ctx context.Context, id int64) (*model.Shop, error)
	UpdateShop(ctx context.Context, sh model.Shop) (*model.Shop, error)
	DeleteShop(ctx context.Context, id int64) error
	ListShops(ctx context.Context, f repository.ShopFilter, page repository.Page) ([]model.Shop, int, error)

	CreateShopGood(ctx context.Context, sg model.ShopGood) (*model.ShopGood, error)
	GetShopGood(ctx context.Context, id int64) (*model.ShopGood, error)
	UpdateShopGood(ctx context.Context, sg model.ShopGood) (*model.ShopGood, error)
	DeleteShopGood(ctx context.Context, id int64) error
	ListShopGoods(ctx context.Context, f repository.ShopGoodFilter, page repository.Page) ([]model.ShopGood, int, error)
	ListGoodOffers(ctx context.Context, goodID int64) ([]model.GoodOffer, error)
	AdjustStock(ctx context.Context, id, delta int64) (*model.ShopGood, error)
}

// Repo полный набор операций хранилища каталога, реализуется repository.CatalogRepository
type Repo interface {
	ReferenceRepo
	ProductRepo
	GoodRepo
	ShopRepo
}

// Cache определяет интерфейс кэширования результатов операций (Redis)
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Invalidate(ctx context.Context, keys ...string) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// Publisher отправляет события изменения каталога (NATS)
type Publisher interface {
	Publish(e model.ChangeEvent) error
}

const goodCardPrefix = "good_card:"

// Page результат постраничного списка
type Page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// CatalogService бизнес-логика каталога: валидация, вызов репозитория,
// кэширование чтений, инвалидация кэша и публикация событий.
// Ошибки кэша и брокера только логируются
type CatalogService struct {
	repo  Repo
	cache Cache
	pub   Publisher
	log   logrus.FieldLogger
	ttl   time.Duration
}

// NewCatalogService создаёт сервис каталога; ttl время жизни записей кэша
func NewCatalogService(r Repo, c Cache, p Publisher, log logrus.FieldLogger, ttl time.Duration) *CatalogService {
	return &CatalogService{repo: r, cache: c, pub: p, log: log, ttl: ttl}
}

func cacheKey(entity string, id int64) string {
	return fmt.Sprintf("%s:%d", entity, id)
}

func goodCardKey(goodID int64) string {
	return fmt.Sprintf("%s%d", goodCardPrefix, goodID)
}

func listPrefix(entity string) string {
	return entity + ":list:"
}

func listKey(entity string, filter string, page repository.Page) string {
	return fmt.Sprintf("%s%s:%d:%d", listPrefix(entity), filter, page.Limit, page.Offset)
}

// getCached читает значение из кэша, при промахе загружает через load и кладёт в кэш
func getCached[T any](ctx context.Context, s *CatalogService, key string, load func() (T, error)) (T, error) {
	data, err := s.cache.Get(ctx, key)
	if err == nil {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
		s.log.WithField("key", key).Warn("corrupted cache entry, reloading")
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.WithError(err).WithField("key", key).Warn("cache read failed")
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if data, err := json.Marshal(v); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.log.WithError(err).WithField("key", key).Warn("cache write failed")
		}
	}
	return v, nil
}

// listCached постраничный список через кэш
func listCached[T any](ctx context.Context, s *CatalogService, entity, filter string, page repository.Page,
	load func() ([]T, int, error)) (*Page[T], error) {
	return getCached(ctx, s, listKey(entity, filter, page), func() (*Page[T], error) {
		items, total, err := load()
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []T{}
		}
		return &Page[T]{Items: items, Total: total, Limit: page.Limit, Offset: page.Offset}, nil
	})
}

// affectsGoodCards сущности, данные которых попадают в карточку товара
func affectsGoodCards(entity string) bool {
	switch entity {
	case model.EntityProduct, model.EntityGood, model.EntityGoodParameter,
		model.EntityParameter, model.EntityShop, model.EntityShopGood:
		return true
	}
	return false
}

// afterChange инвалидирует кэш после изменения строки и публикует событие.
// keys дополнительные ключи для удаления, например карточка затронутого товара
func (s *CatalogService) afterChange(ctx context.Context, entity, action string, id int64, payload interface{}, keys ...string) {
	log := s.log.WithFields(logrus.Fields{"entity": entity, "action": action, "id": id})

	if action != model.ActionCreated {
		keys = append(keys, cacheKey(entity, id))
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		log.WithError(err).Warn("cache invalidation failed")
	}

	prefixes := []string{listPrefix(entity)}
	if action == model.ActionDeleted {
		// каскад базы удаляет зависимые строки, их ключи удаляются целиком по сущности
		for _, dep := range model.CascadeClosure(entity) {
			prefixes = append(prefixes, dep+":")
		}
		prefixes = append(prefixes, goodCardPrefix)
	} else if action == model.ActionUpdated && affectsGoodCards(entity) {
		prefixes = append(prefixes, goodCardPrefix)
	}
	for _, p := range prefixes {
		if err := s.cache.InvalidatePrefix(ctx, p); err != nil {
			log.WithError(err).WithField("prefix", p).Warn("cache invalidation failed")
		}
	}

	ev := model.NewChangeEvent(entity, action, id, payload)
	if err := s.pub.Publish(ev); err != nil {
		log.WithError(err).Warn("failed to publish change event")
		return
	}
	log.WithField("event", ev.ID).Debug("change event published")
}
