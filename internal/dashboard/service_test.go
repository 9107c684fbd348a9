package dashboard

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubCounters struct {
	byStatus    map[string]int64
	trashed     int64
	usersActive int64
	usersDenied int64
	recent      int64
	lastCutoff  time.Time
	failUsers   bool
	queriesMade atomic.Int32
}

func (s *stubCounters) CountCitizensByStatus(context.Context) (map[string]int64, error) {
	s.queriesMade.Add(1)
	return s.byStatus, nil
}

func (s *stubCounters) CountCitizensTrashed(context.Context) (int64, error) {
	s.queriesMade.Add(1)
	return s.trashed, nil
}

func (s *stubCounters) CountUsersByStatus(_ context.Context, status string) (int64, error) {
	s.queriesMade.Add(1)
	if s.failUsers {
		return 0, errors.New("users table unavailable")
	}
	if status == "ACTIVE" {
		return s.usersActive, nil
	}
	return s.usersDenied, nil
}

func (s *stubCounters) CountStatusChangesSince(_ context.Context, cutoff time.Time) (int64, error) {
	s.queriesMade.Add(1)
	s.lastCutoff = cutoff
	return s.recent, nil
}

func TestSummaryAggregatesCounters(t *testing.T) {
	repo := &stubCounters{
		byStatus:    map[string]int64{"ACTIVE": 120, "MOVED": 7, "DECEASED": 3},
		trashed:     5,
		usersActive: 9,
		usersDenied: 2,
		recent:      14,
	}
	svc := NewService(repo)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(120), summary.CitizensByStatus["ACTIVE"])
	require.Equal(t, int64(5), summary.CitizensTrashed)
	require.Equal(t, int64(9), summary.ActiveUsers)
	require.Equal(t, int64(2), summary.DisabledUsers)
	require.Equal(t, int64(14), summary.RecentChanges)
	require.Equal(t, fixed.Add(-recentWindow), repo.lastCutoff)
	require.Equal(t, int32(5), repo.queriesMade.Load())
}

func TestSummaryPropagatesFirstError(t *testing.T) {
	repo := &stubCounters{failUsers: true}
	svc := NewService(repo)

	_, err := svc.Summary(context.Background())
	require.Error(t, err)
}
