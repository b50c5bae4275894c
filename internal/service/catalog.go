package service

import (
	"context"
	"fmt"

	"ShopCatalog/internal/model"
	"ShopCatalog/internal/repository"
)

// CreateParameter создаёт параметр после проверки наименования
func (s *CatalogService) CreateParameter(ctx context.Context, p model.Parameter) (*model.Parameter, error) {
	if err := model.Validate(p); err != nil {
		return nil, err
	}
	out, err := s.repo.CreateParameter(ctx, p.Name)
	if err != nil {
		return nil, err
	}
	s.afterChange(ctx, model.EntityParameter, model.ActionCreated, out.ID, out)
	return out, nil
}

// GetParameter возвращает параметр, сначала из кэша
func (s *CatalogService) GetParameter(ctx context.Context, id int64) (*model.Parameter, error) {
	return getCached(ctx, s, cacheKey(model.EntityParameter, id), func() (*model.Parameter, error) {
		return s.repo.GetParameter(ctx, id)
	})
}

// UpdateParameter переименовывает параметр
func (s *CatalogService) UpdateParameter(ctx context.Context, p model.Parameter) (*model.Parameter, error) {
	if err := model.Validate(p); err != nil {
		return nil, err
	}
	out, err := s.repo.UpdateParameter(ctx, p.ID, p.Name)
	if err != nil {
		return nil, err
	}
	s.afterChange(ctx, model.EntityParameter, model.ActionUpdated, out.ID, out)
	return out, nil
}

// DeleteParameter удаляет параметр и его значения у товаров
func (s *CatalogService) DeleteParameter(ctx context.Context, id int64) error {
	p, err := s.repo.GetParameter(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteParameter(ctx, id); err != nil {
		return err
	}
	s.afterChange(ctx, model.EntityParameter, model.ActionDeleted, id, p)
	return nil
}

// ListParameters возвращает страницу параметров
func (s *CatalogService) ListParameters(ctx context.Context, page repository.Page) (*Page[model.Parameter], error) {
	return listCached(ctx, s, model.EntityParameter, "all", page, func() ([]model.Parameter, int, error) {
		return s.repo.ListParameters(ctx, page)
	})
}

func (s *CatalogService) CreateManufacture(ctx context.Context, m model.Manufacture) (*model.Manufacture, error) {
	if err := model.Validate(m); err != nil {
		return nil, err
	}
	out, err := s.repo.CreateManufacture(ctx, m.Name)
	if err != nil {
		return nil, err
	}
	s.afterChange(ctx, model.EntityManufacture, model.ActionCreated, out.ID, out)
	return out, nil
}

func (s *CatalogService) GetManufacture(ctx context.Context, id int64) (*model.Manufacture, error) {
	return getCached(ctx, s, cacheKey(model.EntityManufacture, id), func() (*model.Manufacture, error) {
		return s.repo.GetManufacture(ctx, id)
	})
}

func (s *CatalogService) UpdateManufacture(ctx context.Context, m model.Manufacture) (*model.Manufacture, error) {
	if err := model.Validate(m); err != nil {
		return nil, err
	}
	out, err := s.repo.UpdateManufacture(ctx, m.ID, m.Name)
	if err != nil {
		return nil, err
	}
	s.afterChange(ctx, model.EntityManufacture, model.ActionUpdated, out.ID, out)
	return out, nil
}

// DeleteManufacture удаляет производителя; продукты и товары удаляет каскад базы
func (s *CatalogService) DeleteManufacture(ctx context.Context, id int64) error {
	m, err := s.repo.GetManufacture(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteManufacture(ctx, id); err != nil {
		return err
	}
	s.afterChange(ctx, model.EntityManufacture, model.ActionDeleted, id, m)
	return nil
}

func (s *CatalogService) ListManufactures(ctx context.Context, page repository.Page) (*Page[model.Manufacture], error) {
	return listCached(ctx, s, model.EntityManufacture, "all", page, func() ([]model.Manufacture, int, error) {
		return s.repo.ListManufactures(ctx, page)
	})
}

func (s *CatalogService) CreateCategory(ctx context.Context, c model.Category) (*model.Category, error) {
	if err := model.Validate(c); err != nil {
		return nil, err
	}
	out, err := s.repo.CreateCategory(ctx, c.Name)
	if err != nil {
		return nil, err
	}
	s.afterChange(ctx, model.EntityCategory, model.ActionCreated, out.ID, out)
	return out, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	return getCached(ctx, s, cacheKey(model.EntityCategory, id), func() (*model.Category, error) {
		return s.repo.GetCategory(ctx, id)
	})
}

func (s *CatalogService) UpdateCategory(ctx context.Context, c model.Category) (*model.Category, error) {
	if err := model.Validate(c); err != nil {
		return nil, err
	}
	out, err := s.repo.UpdateCategory(ctx, c.ID, c.Name)
	if err != nil {
		return nil, err
	}
	s.afterChange(ctx, model.EntityCategory, model.ActionUpdated, out.ID, out)
	return out, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.afterChange(ctx, model.EntityCategory, model.ActionDeleted, id, c)
	return nil
}

func (s *CatalogService) ListCategories(ctx context.Context, page repository.Page) (*Page[model.Category], error) {
	return listCached(ctx, s, model.EntityCategory, "all", page, func() ([]model.Category, int, error) {
		return s.repo.ListCategories(ctx, page)
	})
}

// CreateProduct создаёт продукт; несуществующие производитель или категория
// возвращаются ошибкой репозитория ErrInvalidReference
func (s *CatalogService) CreateProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	if err := model.Validate(p); err != nil {
		return nil, err
	}
	out, err := s.repo.CreateProduct(ctx, p)
	if err != nil {
		return nil, err
	}
	s.afterChange(ctx, model.EntityProduct, model.ActionCreated, out.ID, out)
	return out, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return getCached(ctx, s, cacheKey(model.EntityProduct, id), func() (*model.Product, error) {
		return s.repo.GetProduct(ctx, id)
	})
}

func (s *CatalogService) UpdateProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	if err := model.Validate(p); err != nil {
		return nil, err
	}
	out, err := s.repo.UpdateProduct(ctx, p)
	if err != nil {
		return nil, err
	}
	s.afterChange(ctx, model.EntityProduct, model.ActionUpdated, out.ID, out)
	return out, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.afterChange(ctx, model.EntityProduct, model.ActionDeleted, id, p)
	return nil
}

func (s *CatalogService) ListProducts(ctx context.Context, f repository.ProductFilter, page repository.Page) (*Page[model.Product], error) {
	filter := fmt.Sprintf("m%d:c%d", f.ManufactureID, f.CategoryID)
	return listCached(ctx, s, model.EntityProduct, filter, page, func() ([]model.Product, int, error) {
		return s.repo.ListProducts(ctx, f, page)
	})
}
