package rbac

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/civreg/civreg/internal/platform/httpx"
	"github.com/civreg/civreg/internal/shared"
)

// Handler exposes role and permission administration endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers role and permission routes.
func (h *Handler) MountRoutes(r chi.Router, mw Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAny(shared.PermManageRoles))
		r.Get("/roles", h.listRoles)
		r.Get("/permissions", h.listPermissions)
		r.Put("/roles/{roleID}/permissions", h.setRolePermissions)
	})
}

type roleResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

type permissionResponse struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type setPermissionsRequest struct {
	PermissionIDs []int64 `json:"permissionIds"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	payload := make([]roleResponse, 0, len(roles))
	for _, role := range roles {
		codes, err := h.service.repo.RolePermissionCodes(r.Context(), role.ID)
		if err != nil {
			h.logger.Error("role permissions", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		payload = append(payload, roleResponse{
			ID:          role.ID,
			Name:        role.Name,
			Description: role.Description,
			Permissions: codes,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": payload})
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		h.logger.Error("list permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	payload := make([]permissionResponse, 0, len(perms))
	for _, perm := range perms {
		payload = append(payload, permissionResponse{
			ID:          perm.ID,
			Code:        perm.Code,
			Name:        perm.Name,
			Description: perm.Description,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": payload})
}

func (h *Handler) setRolePermissions(w http.ResponseWriter, r *http.Request) {
	roleID, err := strconv.ParseInt(chi.URLParam(r, "roleID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req setPermissionsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.service.SetRolePermissions(r.Context(), roleID, req.PermissionIDs); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("set role permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
