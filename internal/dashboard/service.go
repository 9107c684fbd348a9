package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/civreg/civreg/internal/rbac"
)

// recentWindow bounds the "recent changes" counter.
const recentWindow = 7 * 24 * time.Hour

// RepositoryPort abstracts the summary counters.
type RepositoryPort interface {
	CountCitizensByStatus(ctx context.Context) (map[string]int64, error)
	CountCitizensTrashed(ctx context.Context) (int64, error)
	CountUsersByStatus(ctx context.Context, status string) (int64, error)
	CountStatusChangesSince(ctx context.Context, cutoff time.Time) (int64, error)
}

// Service produces dashboard summaries.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService constructs the service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Summary fans the counter queries out concurrently. The first failing
// query cancels the rest.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	var summary Summary
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := s.repo.CountCitizensByStatus(ctx)
		if err != nil {
			return err
		}
		summary.CitizensByStatus = counts
		return nil
	})

	g.Go(func() error {
		n, err := s.repo.CountCitizensTrashed(ctx)
		if err != nil {
			return err
		}
		summary.CitizensTrashed = n
		return nil
	})

	g.Go(func() error {
		n, err := s.repo.CountUsersByStatus(ctx, string(rbac.AccountActive))
		if err != nil {
			return err
		}
		summary.ActiveUsers = n
		return nil
	})

	g.Go(func() error {
		n, err := s.repo.CountUsersByStatus(ctx, string(rbac.AccountDisabled))
		if err != nil {
			return err
		}
		summary.DisabledUsers = n
		return nil
	})

	g.Go(func() error {
		n, err := s.repo.CountStatusChangesSince(ctx, s.now().Add(-recentWindow))
		if err != nil {
			return err
		}
		summary.RecentChanges = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return summary, nil
}
