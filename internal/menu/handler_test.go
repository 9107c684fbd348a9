package menu

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/civreg/civreg/internal/rbac"
)

func TestMountRoutesServesMountRoot(t *testing.T) {
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	r := chi.NewRouter()
	r.Route("/api/menu", func(r chi.Router) {
		h.MountRoutes(r, rbac.Middleware{})
	})

	var routes []string
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, method+" "+route)
		return nil
	})
	require.NoError(t, err)
	require.Contains(t, routes, "GET /api/menu/")
}
