package citizens

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/civreg/civreg/internal/audit"
	"github.com/civreg/civreg/internal/lifecycle"
	"github.com/civreg/civreg/internal/platform/httpx"
	"github.com/civreg/civreg/internal/rbac"
	"github.com/civreg/civreg/internal/shared"
)

// Handler wires HTTP endpoints for the citizen registry.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	history   *audit.Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, history *audit.Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		history:   history,
		validator: validator.New(),
	}
}

// MountRoutes registers citizen routes.
func (h *Handler) MountRoutes(r chi.Router, mw rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAny(shared.PermViewCitizen))
		r.Get("/", h.listActive)
		r.Get("/search", h.search)
		r.Get("/{citizenID}", h.get)
		r.Get("/{citizenID}/history", h.statusHistory)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAny(shared.PermCreateCitizen))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAny(shared.PermUpdateCitizen))
		r.Put("/{citizenID}", h.update)
		r.Patch("/{citizenID}/status", h.changeStatus)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAny(shared.PermDeleteCitizen))
		r.Get("/trash", h.listTrash)
		r.Delete("/{citizenID}", h.softDelete)
		r.Post("/{citizenID}/restore", h.restore)
		r.Delete("/{citizenID}/purge", h.purge)
	})
}

type citizenRequest struct {
	RegistryNo string `json:"registryNo" validate:"required,max=32"`
	FullName   string `json:"fullName" validate:"required,max=120"`
	BirthDate  string `json:"birthDate" validate:"required"`
	Address    string `json:"address" validate:"max=255"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) listActive(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	result, err := h.service.ListActive(r.Context(), page, perPage)
	if err != nil {
		h.logger.Error("list citizens", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) listTrash(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	result, err := h.service.ListTrash(r.Context(), page, perPage)
	if err != nil {
		h.logger.Error("list citizen trash", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.service.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		h.logger.Error("search citizens", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := citizenID(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	citizen, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, citizen)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req citizenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	actorID, _ := rbac.PrincipalID(r)
	citizen, err := h.service.Create(r.Context(), CreateInput{
		RegistryNo: req.RegistryNo,
		FullName:   req.FullName,
		BirthDate:  birthDate,
		Address:    req.Address,
	}, actorID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, citizen)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := citizenID(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req citizenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	actorID, _ := rbac.PrincipalID(r)
	citizen, err := h.service.Update(r.Context(), id, UpdateInput{
		FullName:  req.FullName,
		BirthDate: birthDate,
		Address:   req.Address,
	}, actorID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, citizen)
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := citizenID(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	actorID, _ := rbac.PrincipalID(r)
	citizen, err := h.service.ChangeStatus(r.Context(), id, Status(req.Status), actorID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, citizen)
}

func (h *Handler) statusHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := citizenID(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	page, pageSize := pageParams(r)
	result, err := h.history.History(r.Context(), audit.HistoryFilters{
		SubjectID: id,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		h.logger.Error("citizen history", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) softDelete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.SoftDelete)
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Restore)
}

func (h *Handler) purge(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Purge)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id, actorID int64) error) {
	id, ok := citizenID(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	actorID, _ := rbac.PrincipalID(r)
	if err := fn(r.Context(), id, actorID); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, lifecycle.ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrDuplicateRegistryNo):
		httpx.RespondError(w, httpx.ErrDuplicate)
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, httpx.ErrValidation):
		httpx.RespondError(w, httpx.ErrValidation)
	default:
		h.logger.Error("citizens handler", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func citizenID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "citizenID"), 10, 64)
	return id, err == nil && id > 0
}

func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))
	return page, perPage
}
