package audit

import "time"

// StatusChange is one accepted transition of a citizen's status. Rows are
// append-only: the application inserts them and never updates or deletes
// them.
type StatusChange struct {
	ID        int64     `json:"-"`
	SubjectID int64     `json:"subjectId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	ActorID   int64     `json:"actorId"`
	ChangedAt time.Time `json:"changedAt"`
}

// HistoryFilters narrows a status history query.
type HistoryFilters struct {
	SubjectID int64
	From      time.Time
	To        time.Time
	Page      int
	PageSize  int
}

// PagingInfo carries window metadata for history pages.
type PagingInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
	HasNext  bool `json:"hasNext"`
	PrevPage int  `json:"prevPage,omitempty"`
	NextPage int  `json:"nextPage,omitempty"`
}
