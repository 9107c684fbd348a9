package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/civreg/civreg/internal/auth"
	"github.com/civreg/civreg/internal/menu"
	"github.com/civreg/civreg/internal/rbac"
	"github.com/civreg/civreg/internal/shared"
)

type stubRepo struct {
	account  *auth.Account
	sessions map[string]int64
	findErr  error
}

func (s *stubRepo) FindByEmail(_ context.Context, email string) (*auth.Account, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.account == nil || s.account.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.account, nil
}

func (s *stubRepo) CreateSession(_ context.Context, id string, userID int64, _ time.Time, _, _ string) error {
	if s.sessions == nil {
		s.sessions = map[string]int64{}
	}
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) DeleteSession(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

type stubResolver struct {
	granted rbac.PermissionSet
}

func (s stubResolver) ResolvePermissions(context.Context, int64) (rbac.PermissionSet, error) {
	return s.granted, nil
}

type stubComposer struct {
	tree []*menu.Node
}

func (s stubComposer) ComposeForPermissions(context.Context, rbac.PermissionSet) ([]*menu.Node, error) {
	return s.tree, nil
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")

	resolver := stubResolver{granted: rbac.NewPermissionSet(shared.PermViewCitizen, shared.PermViewDashboard)}
	composer := stubComposer{tree: []*menu.Node{{ID: 1, Label: "Citizens", Route: "/citizens"}}}

	handler := auth.NewHandler(testLogger(), auth.NewService(repo), resolver, composer, sessionManager, csrfManager)
	return handler, sessionManager
}

func postLogin(t *testing.T, handler *auth.Handler, sessionManager *shared.SessionManager, body string) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	sess, err := sessionManager.Load(context.Background(), req)
	require.NoError(t, err)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	res := httptest.NewRecorder()
	router := newRouter(handler)
	router.ServeHTTP(res, req)
	return res, sess
}

func TestLoginSuccess(t *testing.T) {
	repo := &stubRepo{account: &auth.Account{
		ID:           7,
		Email:        "officer@registry.test",
		FullName:     "Officer One",
		PasswordHash: hashFor(t, "correctpass1"),
		RoleID:       2,
		Status:       rbac.AccountActive,
	}}
	handler, sessionManager := newAuthHandler(t, repo)

	res, sess := postLogin(t, handler, sessionManager, `{"email":"officer@registry.test","password":"correctpass1"}`)
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		User struct {
			ID    int64  `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
		Permissions []string `json:"permissions"`
		CSRFToken   string   `json:"csrfToken"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Equal(t, int64(7), payload.User.ID)
	require.Contains(t, payload.Permissions, shared.PermViewCitizen)
	require.NotEmpty(t, payload.CSRFToken)

	require.Equal(t, "7", sess.User())
	require.Contains(t, repo.sessions, sess.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &stubRepo{account: &auth.Account{
		ID:           7,
		Email:        "officer@registry.test",
		PasswordHash: hashFor(t, "correctpass1"),
		Status:       rbac.AccountActive,
	}}
	handler, sessionManager := newAuthHandler(t, repo)

	res, sess := postLogin(t, handler, sessionManager, `{"email":"officer@registry.test","password":"wrongpass99"}`)
	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Empty(t, sess.User())
}

func TestLoginUnknownAccount(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, &stubRepo{})

	res, _ := postLogin(t, handler, sessionManager, `{"email":"nobody@registry.test","password":"whatever123"}`)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginDisabledAccount(t *testing.T) {
	repo := &stubRepo{account: &auth.Account{
		ID:           7,
		Email:        "officer@registry.test",
		PasswordHash: hashFor(t, "correctpass1"),
		Status:       rbac.AccountDisabled,
	}}
	handler, sessionManager := newAuthHandler(t, repo)

	res, _ := postLogin(t, handler, sessionManager, `{"email":"officer@registry.test","password":"correctpass1"}`)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginTrashedAccount(t *testing.T) {
	now := time.Now()
	repo := &stubRepo{account: &auth.Account{
		ID:           7,
		Email:        "officer@registry.test",
		PasswordHash: hashFor(t, "correctpass1"),
		Status:       rbac.AccountActive,
		DeletedAt:    &now,
	}}
	handler, sessionManager := newAuthHandler(t, repo)

	res, _ := postLogin(t, handler, sessionManager, `{"email":"officer@registry.test","password":"correctpass1"}`)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginRepositoryFailureIsNotUnauthorized(t *testing.T) {
	repo := &stubRepo{findErr: errors.New("connection refused")}
	handler, sessionManager := newAuthHandler(t, repo)

	res, sess := postLogin(t, handler, sessionManager, `{"email":"officer@registry.test","password":"correctpass1"}`)
	require.Equal(t, http.StatusInternalServerError, res.Code)
	require.Empty(t, sess.User())
}

func TestLogout(t *testing.T) {
	repo := &stubRepo{account: &auth.Account{
		ID:           7,
		Email:        "officer@registry.test",
		PasswordHash: hashFor(t, "correctpass1"),
		Status:       rbac.AccountActive,
	}}
	handler, sessionManager := newAuthHandler(t, repo)

	_, sess := postLogin(t, handler, sessionManager, `{"email":"officer@registry.test","password":"correctpass1"}`)
	require.Contains(t, repo.sessions, sess.ID)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	res := httptest.NewRecorder()
	newRouter(handler).ServeHTTP(res, req)

	require.Equal(t, http.StatusNoContent, res.Code)
	require.NotContains(t, repo.sessions, sess.ID)
}
