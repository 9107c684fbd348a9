package menu

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/civreg/civreg/internal/platform/httpx"
	"github.com/civreg/civreg/internal/rbac"
)

// Handler serves the navigation payload for the current principal.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers menu routes. No permission code is required: the
// composer itself filters entries to what the principal is granted.
func (h *Handler) MountRoutes(r chi.Router, mw rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAny())
		r.Get("/", h.getMenu)
	})
}

func (h *Handler) getMenu(w http.ResponseWriter, r *http.Request) {
	principalID, ok := rbac.PrincipalID(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	forest, err := h.service.ComposeFor(r.Context(), principalID)
	if err != nil {
		h.logger.Error("compose menu", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"menu": forest})
}
