package users

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civreg/civreg/internal/rbac"
)

// ErrNotFound indicates the user does not exist in the expected state.
var ErrNotFound = errors.New("users: not found")

// ErrDuplicateEmail indicates an email collision.
var ErrDuplicateEmail = errors.New("users: email already exists")

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, full_name, role_id, status, created_at, updated_at, deleted_at`

func scanUser(row pgx.Row) (User, error) {
	var (
		u      User
		status string
	)
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.RoleID, &status, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	u.Status = rbac.AccountStatus(status)
	return u, nil
}

// Create inserts a new active account.
func (r *Repository) Create(ctx context.Context, input CreateInput, passwordHash string) (User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, full_name, password_hash, role_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING `+userColumns,
		input.Email, input.FullName, passwordHash, input.RoleID, string(rbac.AccountActive))
	u, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrDuplicateEmail
		}
		return User{}, err
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// GetActive fetches an active user by id.
func (r *Repository) GetActive(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND deleted_at IS NULL`, id)
	return scanUser(row)
}

// Update rewrites profile fields and role assignment of an active user.
func (r *Repository) Update(ctx context.Context, id int64, input UpdateInput) (User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET full_name = $2, role_id = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+userColumns,
		id, input.FullName, input.RoleID)
	return scanUser(row)
}

// SetStatus flips the account status of an active user.
func (r *Repository) SetStatus(ctx context.Context, id int64, status rbac.AccountStatus) (User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+userColumns,
		id, string(status))
	return scanUser(row)
}

// MarkDeleted soft-deletes an active row.
func (r *Repository) MarkDeleted(ctx context.Context, id int64, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET deleted_at = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ClearDeleted restores a trashed row.
func (r *Repository) ClearDeleted(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET deleted_at = NULL, updated_at = NOW() WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeletePermanently removes a trashed row.
func (r *Repository) DeletePermanently(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListActive returns one page of active users, newest first.
func (r *Repository) ListActive(ctx context.Context, limit, offset int) ([]User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectUsers(rows)
	return items, total, err
}

// ListTrashed returns one page of trashed users, most recently deleted
// first.
func (r *Repository) ListTrashed(ctx context.Context, limit, offset int) ([]User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE deleted_at IS NOT NULL`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE deleted_at IS NOT NULL
		ORDER BY deleted_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectUsers(rows)
	return items, total, err
}

func collectUsers(rows pgx.Rows) ([]User, error) {
	var items []User
	for rows.Next() {
		var (
			u      User
			status string
		)
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.RoleID, &status, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt); err != nil {
			return nil, err
		}
		u.Status = rbac.AccountStatus(status)
		items = append(items, u)
	}
	return items, rows.Err()
}
