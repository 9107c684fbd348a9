package menu

import (
	"context"

	"github.com/civreg/civreg/internal/rbac"
)

// RepositoryPort abstracts catalog persistence.
type RepositoryPort interface {
	ListMenus(ctx context.Context) ([]Menu, error)
}

// ResolverPort resolves a principal's granted permission codes.
type ResolverPort interface {
	ResolvePermissions(ctx context.Context, principalID int64) (rbac.PermissionSet, error)
}

// Service composes navigation trees for principals.
type Service struct {
	repo     RepositoryPort
	resolver ResolverPort
	cache    *Cache
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, resolver ResolverPort, cache *Cache) *Service {
	return &Service{repo: repo, resolver: resolver, cache: cache}
}

// ComposeFor resolves the principal's permissions and builds its navigation
// forest. Resolution fails closed, so an unknown principal receives only
// entries without a permission requirement.
func (s *Service) ComposeFor(ctx context.Context, principalID int64) ([]*Node, error) {
	granted, err := s.resolver.ResolvePermissions(ctx, principalID)
	if err != nil {
		return nil, err
	}
	return s.ComposeForPermissions(ctx, granted)
}

// ComposeForPermissions builds the forest for an already-resolved set.
func (s *Service) ComposeForPermissions(ctx context.Context, granted rbac.PermissionSet) ([]*Node, error) {
	catalog, err := s.cache.FetchCatalog(ctx, s.repo.ListMenus)
	if err != nil {
		return nil, err
	}
	return Compose(catalog, granted), nil
}
