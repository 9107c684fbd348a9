package rbac

import (
	"context"
	"errors"
	"log/slog"
)

// ErrNotFound indicates that the requested record does not exist.
var ErrNotFound = errors.New("rbac: not found")

// ErrDenied indicates the principal failed an authorization check.
var ErrDenied = errors.New("rbac: access denied")

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	GetPrincipal(ctx context.Context, id int64) (Principal, error)
	RolePermissionCodes(ctx context.Context, roleID int64) ([]string, error)
	ListRoles(ctx context.Context) ([]Role, error)
	GetRoleByName(ctx context.Context, name string) (Role, error)
	ListPermissions(ctx context.Context) ([]Permission, error)
	ReplaceRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error
}

// Service resolves effective permissions and decides access.
type Service struct {
	repo   RepositoryPort
	cache  *Cache
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo RepositoryPort, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// ResolvePermissions returns the permission codes granted to a principal
// through its role. An unknown principal or an unresolvable role yields an
// empty set rather than an error: downstream consumers must treat "no
// permissions" identically to "unknown principal", so resolution fails
// closed. Storage failures are still surfaced.
func (s *Service) ResolvePermissions(ctx context.Context, principalID int64) (PermissionSet, error) {
	principal, err := s.repo.GetPrincipal(ctx, principalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return PermissionSet{}, nil
		}
		return nil, err
	}
	return s.resolveForRole(ctx, principal.RoleID)
}

// Authorize grants access when the principal holds at least one of the
// required codes. An empty required set means "authenticated only" and is
// granted to any active principal. Disabled or soft-deleted principals are
// denied before any permission lookup happens.
func (s *Service) Authorize(ctx context.Context, principalID int64, required ...string) error {
	principal, err := s.repo.GetPrincipal(ctx, principalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrDenied
		}
		return err
	}
	if !principal.Active() {
		return ErrDenied
	}
	if len(required) == 0 {
		return nil
	}
	granted, err := s.resolveForRole(ctx, principal.RoleID)
	if err != nil {
		return err
	}
	if granted.ContainsAny(required...) {
		return nil
	}
	return ErrDenied
}

// ListRoles returns all roles ordered by name.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRoleByName fetches a role by its unique name.
func (s *Service) GetRoleByName(ctx context.Context, name string) (Role, error) {
	return s.repo.GetRoleByName(ctx, name)
}

// ListPermissions returns the permission catalog.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// SetRolePermissions replaces the permission set of a role as a whole and
// invalidates cached resolutions.
func (s *Service) SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	if err := s.repo.ReplaceRolePermissions(ctx, roleID, permissionIDs); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx); err != nil && s.logger != nil {
		s.logger.Warn("rbac cache invalidate", slog.Any("error", err))
	}
	return nil
}

func (s *Service) resolveForRole(ctx context.Context, roleID int64) (PermissionSet, error) {
	codes, err := s.cache.FetchCodes(ctx, roleID, func(ctx context.Context) ([]string, error) {
		return s.repo.RolePermissionCodes(ctx, roleID)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return PermissionSet{}, nil
		}
		return nil, err
	}
	return NewPermissionSet(codes...), nil
}
