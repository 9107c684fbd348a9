package users

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/civreg/civreg/internal/platform/db"
)

func TestUniqueViolationDetection(t *testing.T) {
	wrapped := fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505"})
	require.True(t, isUniqueViolation(wrapped))

	require.False(t, isUniqueViolation(errors.New("connection refused")))
	require.False(t, isUniqueViolation(fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23503"})))
}

func TestUserColumnsMatchSchema(t *testing.T) {
	schema := db.Columns("users")
	require.NotEmpty(t, schema)
	for _, col := range strings.Split(userColumns, ", ") {
		require.Contains(t, schema, col)
	}
}
