package users

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/civreg/civreg/internal/lifecycle"
	"github.com/civreg/civreg/internal/platform/httpx"
	"github.com/civreg/civreg/internal/rbac"
	"github.com/civreg/civreg/internal/shared"
)

// PasswordHasher derives storable hashes from plaintext passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	lifecycle.Store[User]
	Create(ctx context.Context, input CreateInput, passwordHash string) (User, error)
	GetActive(ctx context.Context, id int64) (User, error)
	Update(ctx context.Context, id int64, input UpdateInput) (User, error)
	SetStatus(ctx context.Context, id int64, status rbac.AccountStatus) (User, error)
}

// Service implements account administration.
type Service struct {
	repo      RepositoryPort
	hasher    PasswordHasher
	rbacCache *rbac.Cache
	trail     *lifecycle.Manager[User]
	activity  *shared.ActivityLogger
	logger    *slog.Logger
}

// NewService constructs the service.
func NewService(repo RepositoryPort, hasher PasswordHasher, rbacCache *rbac.Cache, activity *shared.ActivityLogger, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		hasher:    hasher,
		rbacCache: rbacCache,
		trail:     lifecycle.NewManager[User](repo),
		activity:  activity,
		logger:    logger,
	}
}

// Create registers a new active account with a hashed password.
func (s *Service) Create(ctx context.Context, actorID int64, input CreateInput) (User, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.repo.Create(ctx, input, hash)
	if err != nil {
		return User{}, err
	}
	s.recordActivity(ctx, actorID, "CREATE", u.ID)
	return u, nil
}

// Get fetches an active user.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.GetActive(ctx, id)
}

// Update rewrites an active user's profile and role assignment.
func (s *Service) Update(ctx context.Context, actorID, id int64, input UpdateInput) (User, error) {
	u, err := s.repo.Update(ctx, id, input)
	if err != nil {
		return User{}, err
	}
	s.invalidatePermissions(ctx)
	s.recordActivity(ctx, actorID, "UPDATE", id)
	return u, nil
}

// SetStatus activates or disables an account. A disabled account fails
// every authorization check until reactivated.
func (s *Service) SetStatus(ctx context.Context, actorID, id int64, status rbac.AccountStatus) (User, error) {
	if status != rbac.AccountActive && status != rbac.AccountDisabled {
		return User{}, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, status)
	}
	u, err := s.repo.SetStatus(ctx, id, status)
	if err != nil {
		return User{}, err
	}
	s.recordActivity(ctx, actorID, "SET_STATUS", id)
	return u, nil
}

// SoftDelete moves an active account to the trash. Trashed accounts fail
// authorization immediately even while their session is still alive.
func (s *Service) SoftDelete(ctx context.Context, actorID, id int64) error {
	if err := s.trail.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidatePermissions(ctx)
	s.recordActivity(ctx, actorID, "SOFT_DELETE", id)
	return nil
}

// Restore returns a trashed account to the active set.
func (s *Service) Restore(ctx context.Context, actorID, id int64) error {
	if err := s.trail.Restore(ctx, id); err != nil {
		return err
	}
	s.recordActivity(ctx, actorID, "RESTORE", id)
	return nil
}

// Purge permanently removes a trashed account.
func (s *Service) Purge(ctx context.Context, actorID, id int64) error {
	if err := s.trail.Purge(ctx, id); err != nil {
		return err
	}
	s.recordActivity(ctx, actorID, "PURGE", id)
	return nil
}

// ListActive returns a page of active accounts.
func (s *Service) ListActive(ctx context.Context, page, perPage int) (lifecycle.Page[User], error) {
	return s.trail.ListActive(ctx, page, perPage)
}

// ListTrash returns a page of trashed accounts.
func (s *Service) ListTrash(ctx context.Context, page, perPage int) (lifecycle.Page[User], error) {
	return s.trail.ListTrash(ctx, page, perPage)
}

// invalidatePermissions bumps the permission cache version so open sessions
// pick up role and account changes on their next check.
func (s *Service) invalidatePermissions(ctx context.Context) {
	if s.rbacCache == nil {
		return
	}
	if err := s.rbacCache.Invalidate(ctx); err != nil && s.logger != nil {
		s.logger.Warn("invalidate permission cache", slog.Any("error", err))
	}
}

// recordActivity logs best-effort; a failed activity entry never fails the
// operation it describes.
func (s *Service) recordActivity(ctx context.Context, actorID int64, action string, userID int64) {
	if s.activity == nil {
		return
	}
	err := s.activity.Record(ctx, shared.Activity{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(userID, 10),
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("record activity", slog.Any("error", err))
	}
}
