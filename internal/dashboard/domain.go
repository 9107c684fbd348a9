package dashboard

// Summary bundles the registry-wide counters shown on the landing page.
// Producing it has no side effects, so handlers may fan the queries out
// concurrently.
type Summary struct {
	CitizensByStatus map[string]int64 `json:"citizensByStatus"`
	CitizensTrashed  int64            `json:"citizensTrashed"`
	ActiveUsers      int64            `json:"activeUsers"`
	DisabledUsers    int64            `json:"disabledUsers"`
	RecentChanges    int64            `json:"recentChanges"`
}
