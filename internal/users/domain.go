package users

import (
	"time"

	"github.com/civreg/civreg/internal/rbac"
)

// User represents a staff account for management. Status gates login and
// authorization; DeletedAt drives the soft-delete lifecycle.
type User struct {
	ID        int64              `json:"id"`
	Email     string             `json:"email"`
	FullName  string             `json:"fullName"`
	RoleID    int64              `json:"roleId"`
	Status    rbac.AccountStatus `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
	DeletedAt *time.Time         `json:"deletedAt,omitempty"`
}

// CreateInput carries the fields accepted when provisioning an account.
type CreateInput struct {
	Email    string
	FullName string
	Password string
	RoleID   int64
}

// UpdateInput carries the mutable profile fields.
type UpdateInput struct {
	FullName string
	RoleID   int64
}
