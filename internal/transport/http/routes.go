package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"ShopCatalog/internal/model"
	"ShopCatalog/internal/repository"
	"ShopCatalog/internal/service"
)

// crud набор операций одного ресурса API
type crud[T any] struct {
	create func(ctx context.Context, v T) (*T, error)
	get    func(ctx context.Context, id int64) (*T, error)
	update func(ctx context.Context, v T) (*T, error)
	delete func(ctx context.Context, id int64) error
	// list разбирает фильтры из query; ok=false означает некорректный фильтр
	list func(r *http.Request, page repository.Page) (result interface{}, ok bool, err error)
	// blank значение, в которое декодируется тело POST; задаёт значения по умолчанию при создании
	blank func() T
	setID func(v *T, id int64)
}

// decode разбирает тело запроса; значения по умолчанию применяются только при создании
func (c crud[T]) decode(r *http.Request, create bool) (T, error) {
	var v T
	if create && c.blank != nil {
		v = c.blank()
	}
	err := json.NewDecoder(r.Body).Decode(&v)
	return v, err
}

// register вешает POST/GET коллекции и GET/PUT/DELETE элемента на path
func register[T any](router *mux.Router, h *Handler, path string, c crud[T]) {
	router.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		v, err := c.decode(r, true)
		if err != nil {
			badRequest(w, "invalid request body")
			return
		}
		out, err := c.create(r.Context(), v)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}).Methods(http.MethodPost)

	router.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		page, ok := parsePage(r)
		if !ok {
			badRequest(w, "invalid limit or offset")
			return
		}
		res, ok, err := c.list(r, page)
		if !ok {
			badRequest(w, "invalid filter")
			return
		}
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}).Methods(http.MethodGet)

	router.HandleFunc(path+"/{id:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r)
		if !ok {
			badRequest(w, "invalid id")
			return
		}
		out, err := c.get(r.Context(), id)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}).Methods(http.MethodGet)

	// PUT заменяет все изменяемые поля строки
	router.HandleFunc(path+"/{id:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r)
		if !ok {
			badRequest(w, "invalid id")
			return
		}
		v, err := c.decode(r, false)
		if err != nil {
			badRequest(w, "invalid request body")
			return
		}
		c.setID(&v, id)
		out, err := c.update(r.Context(), v)
		if err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}).Methods(http.MethodPut)

	router.HandleFunc(path+"/{id:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r)
		if !ok {
			badRequest(w, "invalid id")
			return
		}
		if err := c.delete(r.Context(), id); err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "removed": true})
	}).Methods(http.MethodDelete)
}

func listResult[T any](p *service.Page[T], err error) (interface{}, bool, error) {
	if err != nil {
		return nil, true, err
	}
	return p, true, nil
}

// RegisterRoutes регистрирует маршруты API
func (h *Handler) RegisterRoutes(r *mux.Router) {
	// Эндпоинты для проверки здоровья и готовности сервиса
	r.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.Readyz).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/meta", h.Meta).Methods(http.MethodGet)
	api.HandleFunc("/meta/{entity}", h.EntityMeta).Methods(http.MethodGet)
	api.HandleFunc("/goods/{id:[0-9]+}/card", h.GoodCard).Methods(http.MethodGet)
	api.HandleFunc("/shop-goods/{id:[0-9]+}/stock", h.AdjustStock).Methods(http.MethodPost)

	srv := h.srv
	register(api, h, "/parameters", crud[model.Parameter]{
		create: srv.CreateParameter, get: srv.GetParameter, update: srv.UpdateParameter, delete: srv.DeleteParameter,
		list: func(r *http.Request, page repository.Page) (interface{}, bool, error) {
			p, err := srv.ListParameters(r.Context(), page)
			return listResult(p, err)
		},
		setID: func(v *model.Parameter, id int64) { v.ID = id },
	})
	register(api, h, "/manufactures", crud[model.Manufacture]{
		create: srv.CreateManufacture, get: srv.GetManufacture, update: srv.UpdateManufacture, delete: srv.DeleteManufacture,
		list: func(r *http.Request, page repository.Page) (interface{}, bool, error) {
			p, err := srv.ListManufactures(r.Context(), page)
			return listResult(p, err)
		},
		setID: func(v *model.Manufacture, id int64) { v.ID = id },
	})
	register(api, h, "/categories", crud[model.Category]{
		create: srv.CreateCategory, get: srv.GetCategory, update: srv.UpdateCategory, delete: srv.DeleteCategory,
		list: func(r *http.Request, page repository.Page) (interface{}, bool, error) {
			p, err := srv.ListCategories(r.Context(), page)
			return listResult(p, err)
		},
		setID: func(v *model.Category, id int64) { v.ID = id },
	})
	register(api, h, "/products", crud[model.Product]{
		create: srv.CreateProduct, get: srv.GetProduct, update: srv.UpdateProduct, delete: srv.DeleteProduct,
		list: func(r *http.Request, page repository.Page) (interface{}, bool, error) {
			mid, ok1 := queryID(r, "manufactureId")
			cid, ok2 := queryID(r, "categoryId")
			if !ok1 || !ok2 {
				return nil, false, nil
			}
			p, err := srv.ListProducts(r.Context(), repository.ProductFilter{ManufactureID: mid, CategoryID: cid}, page)
			return listResult(p, err)
		},
		setID: func(v *model.Product, id int64) { v.ID = id },
	})
	register(api, h, "/goods", crud[model.Good]{
		create: srv.CreateGood, get: srv.GetGood, update: srv.UpdateGood, delete: srv.DeleteGood,
		list: func(r *http.Request, page repository.Page) (interface{}, bool, error) {
			pid, ok := queryID(r, "productId")
			if !ok {
				return nil, false, nil
			}
			p, err := srv.ListGoods(r.Context(), repository.GoodFilter{ProductID: pid}, page)
			return listResult(p, err)
		},
		setID: func(v *model.Good, id int64) { v.ID = id },
	})
	register(api, h, "/good-parameters", crud[model.GoodParameter]{
		create: srv.CreateGoodParameter, get: srv.GetGoodParameter, update: srv.UpdateGoodParameter, delete: srv.DeleteGoodParameter,
		list: func(r *http.Request, page repository.Page) (interface{}, bool, error) {
			gid, ok1 := queryID(r, "goodId")
			pid, ok2 := queryID(r, "parameterId")
			if !ok1 || !ok2 {
				return nil, false, nil
			}
			p, err := srv.ListGoodParameters(r.Context(), repository.GoodParameterFilter{GoodID: gid, ParameterID: pid}, page)
			return listResult(p, err)
		},
		setID: func(v *model.GoodParameter, id int64) { v.ID = id },
	})
	register(api, h, "/shops", crud[model.Shop]{
		create: srv.CreateShop, get: srv.GetShop, update: srv.UpdateShop, delete: srv.DeleteShop,
		list: func(r *http.Request, page repository.Page) (interface{}, bool, error) {
			var f repository.ShopFilter
			if v := r.URL.Query().Get("active"); v != "" {
				active, err := strconv.ParseBool(v)
				if err != nil {
					return nil, false, nil
				}
				f.Active = &active
			}
			p, err := srv.ListShops(r.Context(), f, page)
			return listResult(p, err)
		},
		// новый магазин активен, если isActive не передан
		blank: func() model.Shop { return model.Shop{IsActive: true} },
		setID: func(v *model.Shop, id int64) { v.ID = id },
	})
	register(api, h, "/shop-goods", crud[model.ShopGood]{
		create: srv.CreateShopGood, get: srv.GetShopGood, update: srv.UpdateShopGood, delete: srv.DeleteShopGood,
		list: func(r *http.Request, page repository.Page) (interface{}, bool, error) {
			sid, ok1 := queryID(r, "shopId")
			gid, ok2 := queryID(r, "goodId")
			if !ok1 || !ok2 {
				return nil, false, nil
			}
			p, err := srv.ListShopGoods(r.Context(), repository.ShopGoodFilter{ShopID: sid, GoodID: gid}, page)
			return listResult(p, err)
		},
		setID: func(v *model.ShopGood, id int64) { v.ID = id },
	})
}
