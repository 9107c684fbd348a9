package rbac

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	"github.com/civreg/civreg/internal/shared"
)

// DenialCounter counts rejected authorization checks.
type DenialCounter interface {
	IncAuthzDenial()
}

// Middleware wires authorization helpers for HTTP handlers.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
	Denials DenialCounter
}

// RequireAny ensures the current principal holds at least one of the given
// permission codes. With no codes it only requires an authenticated,
// active principal.
func (m Middleware) RequireAny(codes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principalID, ok := m.currentPrincipalID(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			err := m.Service.Authorize(r.Context(), principalID, codes...)
			if err == nil {
				next.ServeHTTP(w, r)
				return
			}
			if errors.Is(err, ErrDenied) {
				if m.Denials != nil {
					m.Denials.IncAuthzDenial()
				}
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			if m.Logger != nil {
				m.Logger.Error("rbac require any", slog.Any("error", err))
			}
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		})
	}
}

func (m Middleware) currentPrincipalID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("rbac parse principal id", slog.String("value", raw))
		}
		return 0, false
	}
	return id, true
}

// PrincipalID extracts the authenticated principal from the request session.
// Handlers use it for actor attribution after the middleware has already
// authorized the request.
func PrincipalID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(sess.User()), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
