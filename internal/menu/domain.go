package menu

// Menu is one catalog entry. Entries form a forest through ParentID; an
// entry with a nil PermissionCode is visible to every authenticated
// principal.
type Menu struct {
	ID             int64
	Name           string
	Route          string
	Icon           string
	ParentID       *int64
	OrderIndex     int
	PermissionCode *string
}

// Node is the presentation shape returned to the frontend. Label carries
// the catalog entry's display name; the field name is part of the frontend
// contract.
type Node struct {
	ID         int64   `json:"id"`
	Label      string  `json:"label"`
	Route      string  `json:"route"`
	Icon       string  `json:"icon"`
	OrderIndex int     `json:"orderIndex"`
	Children   []*Node `json:"children"`
}
