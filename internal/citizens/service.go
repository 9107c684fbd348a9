package citizens

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/civreg/civreg/internal/audit"
	"github.com/civreg/civreg/internal/lifecycle"
	"github.com/civreg/civreg/internal/platform/httpx"
	"github.com/civreg/civreg/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	lifecycle.Store[Citizen]
	Create(ctx context.Context, input CreateInput) (Citizen, error)
	GetActive(ctx context.Context, id int64) (Citizen, error)
	Update(ctx context.Context, id int64, input UpdateInput) (Citizen, error)
	Search(ctx context.Context, query string, limit int) ([]Citizen, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// ActivityPort abstracts the request-level activity log.
type ActivityPort interface {
	Record(ctx context.Context, entry shared.Activity) error
}

// Service coordinates citizen registry operations.
type Service struct {
	repo     RepositoryPort
	trail    *lifecycle.Manager[Citizen]
	activity ActivityPort
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, activity ActivityPort, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		trail:    lifecycle.NewManager[Citizen](repo),
		activity: activity,
		logger:   logger,
		now:      time.Now,
	}
}

// Create registers a new citizen in the ACTIVE status.
func (s *Service) Create(ctx context.Context, input CreateInput, actorID int64) (Citizen, error) {
	input.RegistryNo = strings.TrimSpace(input.RegistryNo)
	input.FullName = strings.TrimSpace(input.FullName)
	if input.RegistryNo == "" || input.FullName == "" {
		return Citizen{}, fmt.Errorf("%w: registry number and full name required", httpx.ErrValidation)
	}
	citizen, err := s.repo.Create(ctx, input)
	if err != nil {
		return Citizen{}, err
	}
	s.recordActivity(ctx, actorID, "CREATE", citizen.ID)
	return citizen, nil
}

// Get fetches an active citizen.
func (s *Service) Get(ctx context.Context, id int64) (Citizen, error) {
	return s.repo.GetActive(ctx, id)
}

// Update rewrites the mutable profile fields of an active citizen.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput, actorID int64) (Citizen, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	if input.FullName == "" {
		return Citizen{}, fmt.Errorf("%w: full name required", httpx.ErrValidation)
	}
	citizen, err := s.repo.Update(ctx, id, input)
	if err != nil {
		return Citizen{}, err
	}
	s.recordActivity(ctx, actorID, "UPDATE", citizen.ID)
	return citizen, nil
}

// Search matches active citizens by name or registry number.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Citizen, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	return s.repo.Search(ctx, query, limit)
}

// ChangeStatus applies a civil status transition. The audit row is written
// in the same transaction as the update: either both commit or neither
// does. Re-applying the current status is a no-op and writes nothing.
func (s *Service) ChangeStatus(ctx context.Context, id int64, newStatus Status, actorID int64) (Citizen, error) {
	if _, err := ParseStatus(string(newStatus)); err != nil {
		return Citizen{}, err
	}

	var result Citizen
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		citizen, err := tx.GetActiveForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if citizen.Status == newStatus {
			result = citizen
			return nil
		}
		at := s.now().UTC()
		if err := tx.UpdateStatus(ctx, id, newStatus, at); err != nil {
			return err
		}
		if err := tx.InsertStatusChange(ctx, audit.StatusChange{
			SubjectID: id,
			OldStatus: string(citizen.Status),
			NewStatus: string(newStatus),
			ActorID:   actorID,
			ChangedAt: at,
		}); err != nil {
			return err
		}
		citizen.Status = newStatus
		citizen.UpdatedAt = at
		result = citizen
		return nil
	})
	if err != nil {
		return Citizen{}, err
	}
	s.recordActivity(ctx, actorID, "CHANGE_STATUS", id)
	return result, nil
}

// SoftDelete moves a citizen to the trash.
func (s *Service) SoftDelete(ctx context.Context, id int64, actorID int64) error {
	if err := s.trail.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.recordActivity(ctx, actorID, "SOFT_DELETE", id)
	return nil
}

// Restore returns a trashed citizen to the active view.
func (s *Service) Restore(ctx context.Context, id int64, actorID int64) error {
	if err := s.trail.Restore(ctx, id); err != nil {
		return err
	}
	s.recordActivity(ctx, actorID, "RESTORE", id)
	return nil
}

// Purge removes a trashed citizen permanently.
func (s *Service) Purge(ctx context.Context, id int64, actorID int64) error {
	if err := s.trail.Purge(ctx, id); err != nil {
		return err
	}
	s.recordActivity(ctx, actorID, "PURGE", id)
	return nil
}

// ListActive returns one page of active citizens.
func (s *Service) ListActive(ctx context.Context, page, perPage int) (lifecycle.Page[Citizen], error) {
	return s.trail.ListActive(ctx, page, perPage)
}

// ListTrash returns one page of trashed citizens.
func (s *Service) ListTrash(ctx context.Context, page, perPage int) (lifecycle.Page[Citizen], error) {
	return s.trail.ListTrash(ctx, page, perPage)
}

// recordActivity logs best-effort; a failed activity entry never fails the
// operation it describes.
func (s *Service) recordActivity(ctx context.Context, actorID int64, action string, citizenID int64) {
	if s.activity == nil {
		return
	}
	err := s.activity.Record(ctx, shared.Activity{
		ActorID:  actorID,
		Action:   action,
		Entity:   "citizen",
		EntityID: strconv.FormatInt(citizenID, 10),
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("record activity", slog.Any("error", err))
	}
}
