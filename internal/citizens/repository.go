package citizens

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civreg/civreg/internal/audit"
	"github.com/civreg/civreg/internal/platform/db"
)

// ErrNotFound indicates the citizen does not exist in the expected state.
var ErrNotFound = errors.New("citizens: not found")

// ErrDuplicateRegistryNo indicates a registry number collision.
var ErrDuplicateRegistryNo = errors.New("citizens: registry number already exists")

// Repository persists citizen records in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional operations used by the service for
// audited status changes.
type TxRepository interface {
	GetActiveForUpdate(ctx context.Context, id int64) (Citizen, error)
	UpdateStatus(ctx context.Context, id int64, status Status, at time.Time) error
	InsertStatusChange(ctx context.Context, change audit.StatusChange) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction. The
// status update and its audit row commit or roll back together.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

const citizenColumns = `id, registry_no, full_name, birth_date, address, status, created_at, updated_at, deleted_at`

func scanCitizen(row pgx.Row) (Citizen, error) {
	var (
		c      Citizen
		status string
	)
	err := row.Scan(&c.ID, &c.RegistryNo, &c.FullName, &c.BirthDate, &c.Address, &status, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Citizen{}, ErrNotFound
		}
		return Citizen{}, err
	}
	c.Status = Status(status)
	return c, nil
}

// Create inserts a new active citizen.
func (r *Repository) Create(ctx context.Context, input CreateInput) (Citizen, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO citizens (registry_no, full_name, name_key, birth_date, address, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING `+citizenColumns,
		input.RegistryNo, input.FullName, SearchKey(input.FullName), input.BirthDate, input.Address, string(StatusActive))
	c, err := scanCitizen(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Citizen{}, ErrDuplicateRegistryNo
		}
		return Citizen{}, err
	}
	return c, nil
}

// GetActive fetches an active citizen by id.
func (r *Repository) GetActive(ctx context.Context, id int64) (Citizen, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+citizenColumns+` FROM citizens WHERE id = $1 AND deleted_at IS NULL`, id)
	return scanCitizen(row)
}

// Update rewrites the mutable profile fields of an active citizen.
func (r *Repository) Update(ctx context.Context, id int64, input UpdateInput) (Citizen, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE citizens
		SET full_name = $2, name_key = $3, birth_date = $4, address = $5, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+citizenColumns,
		id, input.FullName, SearchKey(input.FullName), input.BirthDate, input.Address)
	return scanCitizen(row)
}

// Search matches active citizens by folded name or registry number.
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]Citizen, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+citizenColumns+`
		FROM citizens
		WHERE deleted_at IS NULL
		  AND (name_key LIKE '%' || $1 || '%' OR registry_no = $2)
		ORDER BY name_key
		LIMIT $3`, SearchKey(query), query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCitizens(rows)
}

// MarkDeleted soft-deletes an active row. The precondition lives in the
// UPDATE itself so only one of two racing deletes can win.
func (r *Repository) MarkDeleted(ctx context.Context, id int64, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE citizens SET deleted_at = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ClearDeleted restores a trashed row.
func (r *Repository) ClearDeleted(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE citizens SET deleted_at = NULL, updated_at = NOW() WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeletePermanently removes a trashed row.
func (r *Repository) DeletePermanently(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM citizens WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListActive returns one page of active citizens, newest first.
func (r *Repository) ListActive(ctx context.Context, limit, offset int) ([]Citizen, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM citizens WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+citizenColumns+` FROM citizens
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectCitizens(rows)
	return items, total, err
}

// ListTrashed returns one page of trashed citizens, most recently deleted
// first.
func (r *Repository) ListTrashed(ctx context.Context, limit, offset int) ([]Citizen, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM citizens WHERE deleted_at IS NOT NULL`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+citizenColumns+` FROM citizens
		WHERE deleted_at IS NOT NULL
		ORDER BY deleted_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectCitizens(rows)
	return items, total, err
}

func collectCitizens(rows pgx.Rows) ([]Citizen, error) {
	var items []Citizen
	for rows.Next() {
		var (
			c      Citizen
			status string
		)
		if err := rows.Scan(&c.ID, &c.RegistryNo, &c.FullName, &c.BirthDate, &c.Address, &status, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt); err != nil {
			return nil, err
		}
		c.Status = Status(status)
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *txRepo) GetActiveForUpdate(ctx context.Context, id int64) (Citizen, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+citizenColumns+` FROM citizens WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id)
	return scanCitizen(row)
}

func (r *txRepo) UpdateStatus(ctx context.Context, id int64, status Status, at time.Time) error {
	tag, err := r.tx.Exec(ctx, `UPDATE citizens SET status = $2, updated_at = $3 WHERE id = $1 AND deleted_at IS NULL`, id, string(status), at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *txRepo) InsertStatusChange(ctx context.Context, change audit.StatusChange) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO status_change_logs (subject_id, old_status, new_status, actor_id, changed_at)
		VALUES ($1, $2, $3, $4, $5)`,
		change.SubjectID, change.OldStatus, change.NewStatus, change.ActorID, change.ChangedAt)
	return err
}
