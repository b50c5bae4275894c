package service

import (
	"context"
	"fmt"

	"ShopCatalog/internal/model"
	"ShopCatalog/internal/repository"
)

// CreateGood создаёт товар продукта
func (s *CatalogService) CreateGood(ctx context.Context, g model.Good) (*model.Good, error) {
	if err := model.Validate(g); err != nil {
		return nil, err
	}
	out, err := s.repo.CreateGood(ctx, g)
	if err != nil {
		return nil, err
	}
	s.afterChange(ctx, model.EntityGood, model.ActionCreated, out.ID, out)
	return out, nil
}

// GetGood возвращает товар по id:
// 1. Пытается получить из кэша Redis
// 2. При промахе кэша запрашивает из репозитория и кэширует результат
func (s *CatalogService) GetGood(ctx context.Context, id int64) (*model.Good, error) {
	return getCached(ctx, s, cacheKey(model.EntityGood, id), func() (*model.Good, error) {
		return s.repo.GetGood(ctx, id)
	})
}

// UpdateGood заменяет поля товара и сбрасывает карточки
func (s *CatalogService) UpdateGood(ctx context.Context, g model.Good) (*model.Good, error) {
	if err := model.Validate(g); err != nil {
		return nil, err
	}
	out, err := s.repo.UpdateGood(ctx, g)
	if err != nil {
		return nil, err
	}
	s.afterChange(ctx, model.EntityGood, model.ActionUpdated, out.ID, out)
	return out, nil
}

// DeleteGood удаляет товар и публикует удалённый объект целиком
func (s *CatalogService) DeleteGood(ctx context.Context, id int64) error {
	g, err := s.repo.GetGood(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteGood(ctx, id); err != nil {
		return err
	}
	s.afterChange(ctx, model.EntityGood, model.ActionDeleted, id, g)
	return nil
}

func (s *CatalogService) ListGoods(ctx context.Context, f repository.GoodFilter, page repository.Page) (*Page[model.Good], error) {
	filter := fmt.Sprintf("p%d", f.ProductID)
	return listCached(ctx, s, model.EntityGood, filter, page, func() ([]model.Good, int, error) {
		return s.repo.ListGoods(ctx, f, page)
	})
}

// CreateGoodParameter задаёт значение параметра товару; повтор пары (товар, параметр) запрещён
func (s *CatalogService) CreateGoodParameter(ctx context.Context, gp model.GoodParameter) (*model.GoodParameter, error) {
	if err := model.Validate(gp); err != nil {
		return nil, err
	}
	out, err := s.repo.CreateGoodParameter(ctx, gp)
	if err != nil {
		return nil, err
	}
	s.afterChange(ctx, model.EntityGoodParameter, model.ActionCreated, out.ID, out, goodCardKey(out.GoodID))
	return out, nil
}

func (s *CatalogService) GetGoodParameter(ctx context.Context, id int64) (*model.GoodParameter, error) {
	return getCached(ctx, s, cacheKey(model.EntityGoodParameter, id), func() (*model.GoodParameter, error) {
		return s.repo.GetGoodParameter(ctx, id)
	})
}

func (s *CatalogService) UpdateGoodParameter(ctx context.Context, gp model.GoodParameter) (*model.GoodParameter, error) {
	if err := model.Validate(gp); err != nil {
		return nil, err
	}
	out, err := s.repo.UpdateGoodParameter(ctx, gp)
	if err != nil {
		return nil, err
	}
	s.afterChange(ctx, model.EntityGoodParameter, model.ActionUpdated, out.ID, out)
	return out, nil
}

func (s *CatalogService) DeleteGoodParameter(ctx context.Context, id int64) error {
	gp, err := s.repo.GetGoodParameter(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteGoodParameter(ctx, id); err != nil {
		return err
	}
	s.afterChange(ctx, model.EntityGoodParameter, model.ActionDeleted, id, gp)
	return nil
}

func (s *CatalogService) ListGoodParameters(ctx context.Context, f repository.GoodParameterFilter, page repository.Page) (*Page[model.GoodParameter], error) {
	filter := fmt.Sprintf("g%d:p%d", f.GoodID, f.ParameterID)
	return listCached(ctx, s, model.EntityGoodParameter, filter, page, func() ([]model.GoodParameter, int, error) {
		return s.repo.ListGoodParameters(ctx, f, page)
	})
}

// GoodCard собирает карточку товара: товар, продукт, значения параметров и предложения магазинов.
// Карточка кэшируется целиком и сбрасывается при изменении любой входящей в неё сущности
func (s *CatalogService) GoodCard(ctx context.Context, goodID int64) (*model.GoodCard, error) {
	return getCached(ctx, s, goodCardKey(goodID), func() (*model.GoodCard, error) {
		g, err := s.repo.GetGood(ctx, goodID)
		if err != nil {
			return nil, err
		}
		p, err := s.repo.GetProduct(ctx, g.ProductID)
		if err != nil {
			return nil, err
		}
		params, err := s.repo.ListGoodParameterValues(ctx, goodID)
		if err != nil {
			return nil, err
		}
		offers, err := s.repo.ListGoodOffers(ctx, goodID)
		if err != nil {
			return nil, err
		}
		if params == nil {
			params = []model.GoodParameterValue{}
		}
		if offers == nil {
			offers = []model.GoodOffer{}
		}
		return &model.GoodCard{Good: *g, Product: *p, Parameters: params, Offers: offers}, nil
	})
}
