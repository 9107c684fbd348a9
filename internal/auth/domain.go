package auth

import (
	"time"

	"github.com/civreg/civreg/internal/rbac"
)

// Account is the credential-bearing view of a user row. Status and the
// soft-delete marker are loaded up front so a disabled or trashed account
// is denied before any password comparison.
type Account struct {
	ID           int64
	Email        string
	FullName     string
	PasswordHash string
	RoleID       int64
	Status       rbac.AccountStatus
	DeletedAt    *time.Time
}
