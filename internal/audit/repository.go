package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository reads the status change log from PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ListBySubject returns transitions for one citizen, newest first.
func (r *PGRepository) ListBySubject(ctx context.Context, filters HistoryFilters, limit, offset int) ([]StatusChange, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, subject_id, old_status, new_status, actor_id, changed_at
		FROM status_change_logs
		WHERE subject_id = $1
		  AND ($2::timestamptz IS NULL OR changed_at >= $2)
		  AND ($3::timestamptz IS NULL OR changed_at <= $3)
		ORDER BY changed_at DESC, id DESC
		LIMIT $4 OFFSET $5`,
		filters.SubjectID, nullableTime(filters.From), nullableTime(filters.To), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var changes []StatusChange
	for rows.Next() {
		var change StatusChange
		if err := rows.Scan(&change.ID, &change.SubjectID, &change.OldStatus, &change.NewStatus, &change.ActorID, &change.ChangedAt); err != nil {
			return nil, err
		}
		changes = append(changes, change)
	}
	return changes, rows.Err()
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
