package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubHistoryRepo struct {
	rows       []StatusChange
	lastLimit  int
	lastOffset int
}

func (s *stubHistoryRepo) ListBySubject(ctx context.Context, filters HistoryFilters, limit, offset int) ([]StatusChange, error) {
	s.lastLimit = limit
	s.lastOffset = offset
	if offset >= len(s.rows) {
		return nil, nil
	}
	rows := s.rows[offset:]
	if limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

func change(ts string, old, new string) StatusChange {
	at, _ := time.Parse(time.RFC3339, ts)
	return StatusChange{SubjectID: 7, OldStatus: old, NewStatus: new, ActorID: 1, ChangedAt: at}
}

func TestHistoryPaging(t *testing.T) {
	repo := &stubHistoryRepo{rows: []StatusChange{
		change("2025-03-10T10:00:00Z", "MOVED", "DECEASED"),
		change("2025-03-09T09:00:00Z", "ACTIVE", "MOVED"),
		change("2025-03-08T08:00:00Z", "DECEASED", "ACTIVE"),
	}}
	svc := NewService(repo)

	result, err := svc.History(context.Background(), HistoryFilters{SubjectID: 7, Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	require.True(t, result.Paging.HasNext)
	require.Equal(t, 2, result.Paging.NextPage)
	require.Equal(t, 3, repo.lastLimit)
	require.Equal(t, 0, repo.lastOffset)
}

func TestHistorySecondPage(t *testing.T) {
	repo := &stubHistoryRepo{rows: []StatusChange{
		change("2025-03-10T10:00:00Z", "ACTIVE", "MOVED"),
		change("2025-03-09T09:00:00Z", "MOVED", "ACTIVE"),
		change("2025-03-08T08:00:00Z", "ACTIVE", "MOVED"),
	}}
	svc := NewService(repo)

	result, err := svc.History(context.Background(), HistoryFilters{SubjectID: 7, Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	require.False(t, result.Paging.HasNext)
	require.Equal(t, 1, result.Paging.PrevPage)
	require.Equal(t, 2, repo.lastOffset)
}

func TestHistoryClampsPageSize(t *testing.T) {
	repo := &stubHistoryRepo{}
	svc := NewService(repo)

	_, err := svc.History(context.Background(), HistoryFilters{SubjectID: 7, PageSize: 500})
	require.NoError(t, err)
	require.Equal(t, 51, repo.lastLimit)
}
