package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides the read-only counters behind the summary.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CountCitizensByStatus counts active citizens per registry status.
func (r *Repository) CountCitizensByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM citizens
		WHERE deleted_at IS NULL
		GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int64)
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// CountCitizensTrashed counts soft-deleted citizens.
func (r *Repository) CountCitizensTrashed(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM citizens WHERE deleted_at IS NOT NULL`).Scan(&n)
	return n, err
}

// CountUsersByStatus counts active (non-trashed) accounts with the given
// status.
func (r *Repository) CountUsersByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL AND status = $1`, status).Scan(&n)
	return n, err
}

// CountStatusChangesSince counts citizen status transitions recorded on or
// after the cutoff.
func (r *Repository) CountStatusChangesSince(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM status_change_logs WHERE changed_at >= $1`, cutoff).Scan(&n)
	return n, err
}
