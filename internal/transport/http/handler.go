package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"ShopCatalog/internal/model"
	"ShopCatalog/internal/repository"
	"ShopCatalog/internal/service"
)

// CatalogService задаёт интерфейс бизнес-логики каталога, используемый хендлером
type CatalogService interface {
	CreateParameter(ctx context.Context, p model.Parameter) (*model.Parameter, error)
	GetParameter(ctx context.Context, id int64) (*model.Parameter, error)
	UpdateParameter(ctx context.Context, p model.Parameter) (*model.Parameter, error)
	DeleteParameter(ctx context.Context, id int64) error
	ListParameters(ctx context.Context, page repository.Page) (*service.Page[model.Parameter], error)

	CreateManufacture(ctx context.Context, m model.Manufacture) (*model.Manufacture, error)
	GetManufacture(ctx context.Context, id int64) (*model.Manufacture, error)
	UpdateManufacture(ctx context.Context, m model.Manufacture) (*model.Manufacture, error)
	DeleteManufacture(ctx context.Context, id int64) error
	ListManufactures(ctx context.Context, page repository.Page) (*service.Page[model.Manufacture], error)

	CreateCategory(ctx context.Context, c model.Category) (*model.Category, error)
	GetCategory(ctx context.Context, id int64) (*model.Category, error)
	UpdateCategory(ctx context.Context, c model.Category) (*model.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context, page repository.Page) (*service.Page[model.Category], error)

	CreateProduct(ctx context.Context, p model.Product) (*model.Product, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	UpdateProduct(ctx context.Context, p model.Product) (*model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListProducts(ctx context.Context, f repository.ProductFilter, page repository.Page) (*service.Page[model.Product], error)

	CreateGood(ctx context.Context, g model.Good) (*model.Good, error)
	GetGood(ctx context.Context, id int64) (*model.Good, error)
	UpdateGood(ctx context.Context, g model.Good) (*model.Good, error)
	DeleteGood(ctx context.Context, id int64) error
	ListGoods(ctx context.Context, f repository.GoodFilter, page repository.Page) (*service.Page[model.Good], error)
	GoodCard(ctx context.Context, goodID int64) (*model.GoodCard, error)

	CreateGoodParameter(ctx context.Context, gp model.GoodParameter) (*model.GoodParameter, error)
	GetGoodParameter(ctx context.Context, id int64) (*model.GoodParameter, error)
	UpdateGoodParameter(ctx context.Context, gp model.GoodParameter) (*model.GoodParameter, error)
	DeleteGoodParameter(ctx context.Context, id int64) error
	ListGoodParameters(ctx context.Context, f repository.GoodParameterFilter, page repository.Page) (*service.Page[model.GoodParameter], error)

	CreateShop(ctx context.Context, sh model.Shop) (*model.Shop, error)
	GetShop(ctx context.Context, id int64) (*model.Shop, error)
	UpdateShop(ctx context.Context, sh model.Shop) (*model.Shop, error)
	DeleteShop(ctx context.Context, id int64) error
	ListShops(ctx context.Context, f repository.ShopFilter, page repository.Page) (*service.Page[model.Shop], error)

	CreateShopGood(ctx context.Context, sg model.ShopGood) (*model.ShopGood, error)
	GetShopGood(ctx context.Context, id int64) (*model.ShopGood, error)
	UpdateShopGood(ctx context.Context, sg model.ShopGood) (*model.ShopGood, error)
	DeleteShopGood(ctx context.Context, id int64) error
	ListShopGoods(ctx context.Context, f repository.ShopGoodFilter, page repository.Page) (*service.Page[model.ShopGood], error)
	AdjustStock(ctx context.Context, id, delta int64) (*model.ShopGood, error)
}

// ReadyCheck проверка зависимости для /readyz, например ping Postgres или Redis
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handler содержит зависимости и реализует HTTP-эндпоинты каталога
type Handler struct {
	srv    CatalogService
	log    logrus.FieldLogger
	checks []ReadyCheck
}

// NewHandler создаёт новый HTTP Handler
func NewHandler(srv CatalogService, log logrus.FieldLogger, checks ...ReadyCheck) *Handler {
	return &Handler{srv: srv, log: log, checks: checks}
}

// Коды ошибок API
const (
	codeBadRequest = 1
	codeValidation = 2
	codeNotFound   = 3
	codeConflict   = 4
	codeInternal   = 5
	codeNotReady   = 6
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// ErrorResponse модель ошибки API
type ErrorResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

func writeError(w http.ResponseWriter, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, ErrorResponse{codeBadRequest, msg, map[string]interface{}{}})
}

// writeServiceError переводит ошибку сервиса в HTTP-статус:
// валидация и CHECK дают 422, отсутствие строки 404, уникальность и внешние ключи 409
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusUnprocessableEntity, ErrorResponse{codeValidation, "errors.common.validation", verr.Fields})
		return
	}
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, ErrorResponse{codeNotFound, "errors.common.notFound", map[string]interface{}{}})
		return
	}
	details := map[string]interface{}{}
	var cerr *repository.ConstraintError
	if errors.As(err, &cerr) && cerr.Constraint != "" {
		details["constraint"] = cerr.Constraint
	}
	switch {
	case errors.Is(err, repository.ErrAlreadyExists):
		writeError(w, http.StatusConflict, ErrorResponse{codeConflict, "errors.common.alreadyExists", details})
	case errors.Is(err, repository.ErrInvalidReference):
		writeError(w, http.StatusConflict, ErrorResponse{codeConflict, "errors.common.invalidReference", details})
	case errors.Is(err, repository.ErrCheckViolation):
		writeError(w, http.StatusUnprocessableEntity, ErrorResponse{codeValidation, "errors.common.validation", details})
	default:
		h.log.WithError(err).WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}).Error("request failed")
		writeError(w, http.StatusInternalServerError, ErrorResponse{codeInternal, "errors.common.internal", map[string]interface{}{}})
	}
}

// parseID извлекает положительный id из пути
func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parsePage читает limit и offset: limit по умолчанию 10 и ограничен 1..100, offset не меньше 0
func parsePage(r *http.Request) (repository.Page, bool) {
	page := repository.Page{Limit: defaultLimit}
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return page, false
		}
		page.Limit = i
	}
	if page.Limit < 1 {
		page.Limit = 1
	}
	if page.Limit > maxLimit {
		page.Limit = maxLimit
	}
	if v := q.Get("offset"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil || i < 0 {
			return page, false
		}
		page.Offset = i
	}
	return page, true
}

// queryID читает необязательный фильтр-идентификатор из query; 0 означает отсутствие фильтра
func queryID(r *http.Request, name string) (int64, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// GoodCard обрабатывает GET /api/v1/goods/{id}/card
func (h *Handler) GoodCard(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	card, err := h.srv.GoodCard(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// AdjustStock обрабатывает POST /api/v1/shop-goods/{id}/stock с телом {"delta": n}
func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req struct {
		Delta *int64 `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Delta == nil {
		badRequest(w, "invalid request body")
		return
	}
	sg, err := h.srv.AdjustStock(r.Context(), id, *req.Delta)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sg)
}

// Meta возвращает метаданные всех сущностей для админки
func (h *Handler) Meta(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"entities": model.Meta()})
}

// EntityMeta возвращает метаданные одной сущности по имени или таблице
func (h *Handler) EntityMeta(w http.ResponseWriter, r *http.Request) {
	m, ok := model.MetaFor(mux.Vars(r)["entity"])
	if !ok {
		writeError(w, http.StatusNotFound, ErrorResponse{codeNotFound, "errors.common.notFound", map[string]interface{}{}})
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Healthz возвращает статус работы сервиса
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Readyz возвращает готовность сервиса; недоступная зависимость даёт 503
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	failed := map[string]interface{}{}
	for _, c := range h.checks {
		if err := c.Check(ctx); err != nil {
			h.log.WithError(err).WithField("dependency", c.Name).Warn("readiness check failed")
			failed[c.Name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeError(w, http.StatusServiceUnavailable, ErrorResponse{codeNotReady, "errors.common.notReady", failed})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}
