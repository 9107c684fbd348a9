package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/civreg/civreg/internal/platform/db"
)

func TestRolePermissionInsertMatchesSchema(t *testing.T) {
	cols := db.Columns("role_permissions")
	require.ElementsMatch(t, []string{"role_id", "permission_id"}, cols)
	for _, col := range cols {
		require.Contains(t, insertRolePermissionSQL, col)
	}
	require.NotContains(t, insertRolePermissionSQL, "created_at")
}
