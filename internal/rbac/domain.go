package rbac

import (
	"sort"
	"time"
)

// Role names form a closed set created by the seeder.
const (
	RoleAdmin   = "ADMIN"
	RoleOfficer = "OFFICER"
	RoleViewer  = "VIEWER"
)

// AccountStatus describes whether a principal may authenticate at all.
type AccountStatus string

const (
	AccountActive   AccountStatus = "ACTIVE"
	AccountDisabled AccountStatus = "DISABLED"
)

// Role represents a high-level permission grouping.
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission represents an atomic capability.
type Permission struct {
	ID          int64
	Code        string
	Name        string
	Description string
}

// Principal describes the authenticated actor as the subject of an access
// decision. DeletedAt mirrors the user row's soft-delete marker.
type Principal struct {
	ID        int64
	RoleID    int64
	Status    AccountStatus
	DeletedAt *time.Time
}

// Active reports whether the principal may be granted anything at all.
func (p Principal) Active() bool {
	return p.Status == AccountActive && p.DeletedAt == nil
}

// PermissionSet is the resolved set of permission codes for a principal.
type PermissionSet map[string]struct{}

// NewPermissionSet builds a set from codes.
func NewPermissionSet(codes ...string) PermissionSet {
	set := make(PermissionSet, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return set
}

// Has reports membership of a single code.
func (s PermissionSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// ContainsAny reports whether the set intersects the required codes.
func (s PermissionSet) ContainsAny(codes ...string) bool {
	for _, code := range codes {
		if s.Has(code) {
			return true
		}
	}
	return false
}

// Codes returns the sorted code list, suitable for JSON payloads.
func (s PermissionSet) Codes() []string {
	codes := make([]string, 0, len(s))
	for code := range s {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
