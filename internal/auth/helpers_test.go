package auth_test

import (
	"io"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/civreg/civreg/internal/auth"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRouter(handler *auth.Handler) chi.Router {
	r := chi.NewRouter()
	r.Route("/auth", handler.MountRoutes)
	return r
}
