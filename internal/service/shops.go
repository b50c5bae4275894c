package service

import (
	"context"
	"fmt"

	"ShopCatalog/internal/model"
	"ShopCatalog/internal/repository"
)

func (s *CatalogService) CreateShop(ctx context.Context, sh model.Shop) (*model.Shop, error) {
	if err := model.Validate(sh); err != nil {
		return nil, err
	}
	out, err := s.repo.CreateShop(ctx, sh)
	if err != nil {
		return nil, err
	}
	s.afterChange(ctx, model.EntityShop, model.ActionCreated, out.ID, out)
	return out, nil
}

func (s *CatalogService) GetShop(ctx context.Context, id int64) (*model.Shop, error) {
	return getCached(ctx, s, cacheKey(model.EntityShop, id), func() (*model.Shop, error) {
		return s.repo.GetShop(ctx, id)
	})
}

// UpdateShop обновляет магазин; смена активности меняет предложения в карточках
func (s *CatalogService) UpdateShop(ctx context.Context, sh model.Shop) (*model.Shop, error) {
	if err := model.Validate(sh); err != nil {
		return nil, err
	}
	out, err := s.repo.UpdateShop(ctx, sh)
	if err != nil {
		return nil, err
	}
	s.afterChange(ctx, model.EntityShop, model.ActionUpdated, out.ID, out)
	return out, nil
}

func (s *CatalogService) DeleteShop(ctx context.Context, id int64) error {
	sh, err := s.repo.GetShop(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteShop(ctx, id); err != nil {
		return err
	}
	s.afterChange(ctx, model.EntityShop, model.ActionDeleted, id, sh)
	return nil
}

func (s *CatalogService) ListShops(ctx context.Context, f repository.ShopFilter, page repository.Page) (*Page[model.Shop], error) {
	filter := "any"
	if f.Active != nil {
		filter = fmt.Sprintf("active=%t", *f.Active)
	}
	return listCached(ctx, s, model.EntityShop, filter, page, func() ([]model.Shop, int, error) {
		return s.repo.ListShops(ctx, f, page)
	})
}

// CreateShopGood выставляет товар в магазине.
// Отрицательные цена и остаток отклоняются валидацией до обращения к базе
func (s *CatalogService) CreateShopGood(ctx context.Context, sg model.ShopGood) (*model.ShopGood, error) {
	if err := model.Validate(sg); err != nil {
		return nil, err
	}
	out, err := s.repo.CreateShopGood(ctx, sg)
	if err != nil {
		return nil, err
	}
	s.afterChange(ctx, model.EntityShopGood, model.ActionCreated, out.ID, out, goodCardKey(out.GoodID))
	return out, nil
}

func (s *CatalogService) GetShopGood(ctx context.Context, id int64) (*model.ShopGood, error) {
	return getCached(ctx, s, cacheKey(model.EntityShopGood, id), func() (*model.ShopGood, error) {
		return s.repo.GetShopGood(ctx, id)
	})
}

func (s *CatalogService) UpdateShopGood(ctx context.Context, sg model.ShopGood) (*model.ShopGood, error) {
	if err := model.Validate(sg); err != nil {
		return nil, err
	}
	out, err := s.repo.UpdateShopGood(ctx, sg)
	if err != nil {
		return nil, err
	}
	s.afterChange(ctx, model.EntityShopGood, model.ActionUpdated, out.ID, out)
	return out, nil
}

func (s *CatalogService) DeleteShopGood(ctx context.Context, id int64) error {
	sg, err := s.repo.GetShopGood(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteShopGood(ctx, id); err != nil {
		return err
	}
	s.afterChange(ctx, model.EntityShopGood, model.ActionDeleted, id, sg)
	return nil
}

func (s *CatalogService) ListShopGoods(ctx context.Context, f repository.ShopGoodFilter, page repository.Page) (*Page[model.ShopGood], error) {
	filter := fmt.Sprintf("s%d:g%d", f.ShopID, f.GoodID)
	return listCached(ctx, s, model.EntityShopGood, filter, page, func() ([]model.ShopGood, int, error) {
		return s.repo.ListShopGoods(ctx, f, page)
	})
}

// AdjustStock изменяет остаток товара в магазине на delta (поступление или продажа)
func (s *CatalogService) AdjustStock(ctx context.Context, id, delta int64) (*model.ShopGood, error) {
	if delta == 0 {
		return nil, model.NewValidationError("delta", "must not be zero")
	}
	out, err := s.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	s.afterChange(ctx, model.EntityShopGood, model.ActionUpdated, out.ID, out, goodCardKey(out.GoodID))
	return out, nil
}
