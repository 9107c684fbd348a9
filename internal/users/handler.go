package users

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/civreg/civreg/internal/lifecycle"
	"github.com/civreg/civreg/internal/platform/httpx"
	"github.com/civreg/civreg/internal/rbac"
	"github.com/civreg/civreg/internal/shared"
)

// Handler wires HTTP endpoints for account administration.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers user administration routes.
func (h *Handler) MountRoutes(r chi.Router, mw rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAny(shared.PermViewUser))
		r.Get("/", h.listActive)
		r.Get("/{userID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAny(shared.PermCreateUser))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAny(shared.PermUpdateUser))
		r.Put("/{userID}", h.update)
		r.Patch("/{userID}/status", h.setStatus)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAny(shared.PermDeleteUser))
		r.Get("/trash", h.listTrash)
		r.Delete("/{userID}", h.softDelete)
		r.Post("/{userID}/restore", h.restore)
		r.Delete("/{userID}/purge", h.purge)
	})
}

type createRequest struct {
	Email    string `json:"email" validate:"required,email,max=120"`
	FullName string `json:"fullName" validate:"required,max=120"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	RoleID   int64  `json:"roleId" validate:"required,gt=0"`
}

type updateRequest struct {
	FullName string `json:"fullName" validate:"required,max=120"`
	RoleID   int64  `json:"roleId" validate:"required,gt=0"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) listActive(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	result, err := h.service.ListActive(r.Context(), page, perPage)
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) listTrash(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	result, err := h.service.ListTrash(r.Context(), page, perPage)
	if err != nil {
		h.logger.Error("list user trash", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	actorID, _ := rbac.PrincipalID(r)
	user, err := h.service.Create(r.Context(), actorID, CreateInput{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		RoleID:   req.RoleID,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	actorID, _ := rbac.PrincipalID(r)
	user, err := h.service.Update(r.Context(), actorID, id, UpdateInput{
		FullName: req.FullName,
		RoleID:   req.RoleID,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
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
	user, err := h.service.SetStatus(r.Context(), actorID, id, rbac.AccountStatus(req.Status))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
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

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actorID, id int64) error) {
	id, ok := userID(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	actorID, _ := rbac.PrincipalID(r)
	if err := fn(r.Context(), actorID, id); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, lifecycle.ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrDuplicateEmail):
		httpx.RespondError(w, httpx.ErrDuplicate)
	case errors.Is(err, httpx.ErrValidation):
		httpx.RespondError(w, httpx.ErrValidation)
	default:
		h.logger.Error("users handler", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func userID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	return id, err == nil && id > 0
}

func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))
	return page, perPage
}
