// Package lifecycle implements the soft-delete state machine shared by the
// registry's primary entities. An entity is Active (deleted_at null),
// Trashed (deleted_at set) or Purged (row removed); active and trash views
// are a strict partition of the remaining rows.
package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/civreg/civreg/internal/shared"
)

// ErrNotFound reports that the entity does not exist or is not in the state
// the transition requires. A trashed row is "not found" to soft-delete, an
// active row is "not found" to restore or purge.
var ErrNotFound = errors.New("lifecycle: not found")

// Store provides the conditional updates the state machine relies on. Each
// mutation must apply its state precondition inside the store's own atomic
// update (e.g. `WHERE deleted_at IS NULL`) and report whether a row
// matched, so concurrent transitions have exactly one winner.
type Store[T any] interface {
	MarkDeleted(ctx context.Context, id int64, at time.Time) (bool, error)
	ClearDeleted(ctx context.Context, id int64) (bool, error)
	DeletePermanently(ctx context.Context, id int64) (bool, error)
	ListActive(ctx context.Context, limit, offset int) ([]T, int, error)
	ListTrashed(ctx context.Context, limit, offset int) ([]T, int, error)
}

// Page bundles one listing page with its metadata.
type Page[T any] struct {
	Items []T               `json:"items"`
	Meta  shared.Pagination `json:"meta"`
}

// Manager drives lifecycle transitions for one entity type.
type Manager[T any] struct {
	store Store[T]
	now   func() time.Time
}

// NewManager builds a Manager over the given store.
func NewManager[T any](store Store[T]) *Manager[T] {
	return &Manager[T]{store: store, now: time.Now}
}

// SoftDelete transitions Active -> Trashed, stamping the deletion time.
func (m *Manager[T]) SoftDelete(ctx context.Context, id int64) error {
	matched, err := m.store.MarkDeleted(ctx, id, m.now().UTC())
	if err != nil {
		return err
	}
	if !matched {
		return ErrNotFound
	}
	return nil
}

// Restore transitions Trashed -> Active by clearing the deletion marker.
func (m *Manager[T]) Restore(ctx context.Context, id int64) error {
	matched, err := m.store.ClearDeleted(ctx, id)
	if err != nil {
		return err
	}
	if !matched {
		return ErrNotFound
	}
	return nil
}

// Purge removes a Trashed row permanently. Purging is gated on the trash
// state: an active entity must pass through soft delete first.
func (m *Manager[T]) Purge(ctx context.Context, id int64) error {
	matched, err := m.store.DeletePermanently(ctx, id)
	if err != nil {
		return err
	}
	if !matched {
		return ErrNotFound
	}
	return nil
}

// ListActive returns one page of active entities, newest-created first.
func (m *Manager[T]) ListActive(ctx context.Context, page, perPage int) (Page[T], error) {
	page, perPage = shared.ClampPage(page, perPage)
	items, total, err := m.store.ListActive(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return Page[T]{}, err
	}
	return Page[T]{Items: items, Meta: shared.NewPagination(page, perPage, total)}, nil
}

// ListTrash returns one page of trashed entities, most recently deleted
// first.
func (m *Manager[T]) ListTrash(ctx context.Context, page, perPage int) (Page[T], error) {
	page, perPage = shared.ClampPage(page, perPage)
	items, total, err := m.store.ListTrashed(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return Page[T]{}, err
	}
	return Page[T]{Items: items, Meta: shared.NewPagination(page, perPage, total)}, nil
}
