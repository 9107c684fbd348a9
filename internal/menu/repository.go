package menu

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for the menu catalog.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const catalogQuery = `
	SELECT id, label, COALESCE(route, ''), COALESCE(icon, ''), parent_id, order_index, permission_code
	FROM menus
	ORDER BY id`

// ListMenus returns the full catalog in stable insertion order. Ordering by
// id keeps composition deterministic across calls.
func (r *Repository) ListMenus(ctx context.Context) ([]Menu, error) {
	rows, err := r.pool.Query(ctx, catalogQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var menus []Menu
	for rows.Next() {
		var m Menu
		if err := rows.Scan(&m.ID, &m.Name, &m.Route, &m.Icon, &m.ParentID, &m.OrderIndex, &m.PermissionCode); err != nil {
			return nil, err
		}
		menus = append(menus, m)
	}
	return menus, rows.Err()
}
