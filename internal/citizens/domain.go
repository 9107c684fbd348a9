package citizens

import (
	"errors"
	"fmt"
	"time"
)

// Status is the civil status of a registered citizen.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusMoved    Status = "MOVED"
	StatusDeceased Status = "DECEASED"
)

// ErrInvalidStatus reports an unknown status value.
var ErrInvalidStatus = errors.New("citizens: invalid status")

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusActive, StatusMoved, StatusDeceased:
		return Status(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

// Citizen is one registry record. DeletedAt drives the soft-delete
// lifecycle: nil means active, non-nil means trashed.
type Citizen struct {
	ID         int64      `json:"id"`
	RegistryNo string     `json:"registryNo"`
	FullName   string     `json:"fullName"`
	BirthDate  time.Time  `json:"birthDate"`
	Address    string     `json:"address"`
	Status     Status     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	DeletedAt  *time.Time `json:"deletedAt,omitempty"`
}

// CreateInput carries the fields accepted when registering a citizen.
type CreateInput struct {
	RegistryNo string
	FullName   string
	BirthDate  time.Time
	Address    string
}

// UpdateInput carries the mutable profile fields.
type UpdateInput struct {
	FullName  string
	BirthDate time.Time
	Address   string
}
