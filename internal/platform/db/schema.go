package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema holds the DDL for every application table, in dependency order.
// The seeder applies it on startup. Repository tests read it through
// Columns so their SQL stays aligned with the column names defined here.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS roles (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS permissions (
		id BIGSERIAL PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS role_permissions (
		role_id BIGINT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
		permission_id BIGINT NOT NULL REFERENCES permissions(id) ON DELETE CASCADE,
		PRIMARY KEY (role_id, permission_id)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		role_id BIGINT NOT NULL REFERENCES roles(id),
		status TEXT NOT NULL DEFAULT 'ACTIVE',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS menus (
		id BIGSERIAL PRIMARY KEY,
		parent_id BIGINT REFERENCES menus(id),
		label TEXT NOT NULL,
		route TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT '',
		permission_code TEXT,
		order_index INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS citizens (
		id BIGSERIAL PRIMARY KEY,
		registry_no TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		birth_date DATE NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'ACTIVE',
		name_key TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS status_change_logs (
		id BIGSERIAL PRIMARY KEY,
		subject_id BIGINT NOT NULL REFERENCES citizens(id) ON DELETE CASCADE,
		old_status TEXT NOT NULL,
		new_status TEXT NOT NULL,
		actor_id BIGINT NOT NULL,
		changed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at TIMESTAMPTZ NOT NULL,
		ip TEXT,
		ua TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS activity_logs (
		id BIGSERIAL PRIMARY KEY,
		actor_id BIGINT NOT NULL,
		action TEXT NOT NULL,
		entity TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		meta JSONB,
		occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_citizens_name_key ON citizens (name_key)`,
	`CREATE INDEX IF NOT EXISTS idx_status_change_logs_subject ON status_change_logs (subject_id, changed_at DESC)`,
}

// EnsureSchema applies every schema statement in order.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range Schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Columns returns the column names the Schema DDL defines for the given
// table, or nil when the table is unknown.
func Columns(table string) []string {
	marker := "CREATE TABLE IF NOT EXISTS " + table + " ("
	for _, stmt := range Schema {
		idx := strings.Index(stmt, marker)
		if idx < 0 {
			continue
		}
		var cols []string
		for _, line := range strings.Split(stmt[idx+len(marker):], "\n") {
			fields := strings.Fields(strings.TrimSuffix(strings.TrimSpace(line), ","))
			if len(fields) < 2 {
				continue
			}
			switch fields[0] {
			case "PRIMARY", "FOREIGN", "UNIQUE", "CONSTRAINT", "CHECK":
				continue
			}
			cols = append(cols, strings.ToLower(fields[0]))
		}
		return cols
	}
	return nil
}
