package audit

import (
	"context"
	"fmt"
)

// Repository provides read access to the status change log.
type Repository interface {
	ListBySubject(ctx context.Context, filters HistoryFilters, limit, offset int) ([]StatusChange, error)
}

// Result wraps one history page with paging information.
type Result struct {
	Rows   []StatusChange `json:"rows"`
	Paging PagingInfo     `json:"paging"`
}

// Service coordinates status history reads.
type Service struct {
	repo Repository
}

// NewService builds the history service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// History returns one page of a citizen's status transitions, newest first.
// It fetches one row beyond the page to detect whether a next page exists.
func (s *Service) History(ctx context.Context, filters HistoryFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 50 {
		pageSize = 50
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	rows, err := s.repo.ListBySubject(ctx, filters, pageSize+1, offset)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Rows: rows, Paging: paging}, nil
}
