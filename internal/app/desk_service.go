package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/perchdesk/perchdesk/internal/clock"
	"github.com/perchdesk/perchdesk/internal/domain"
)

type DeskRepository interface {
	CreateDesk(ctx context.Context, desk domain.Desk) error
	GetDesk(ctx context.Context, id string) (domain.Desk, error)
	ListDesks(ctx context.Context) ([]domain.Desk, error)
	UpdateDesk(ctx context.Context, desk domain.Desk) error
	DeleteDesk(ctx context.Context, id string) error
}

// BookingGuard is the slice of the booking scheduler the desk registry needs:
// desk mutations are gated on live booking state, never the other way around.
type BookingGuard interface {
	ActiveCoverage(ctx context.Context, deskID string, at time.Time) (bool, error)
	HasNonTerminal(ctx context.Context, deskID string) (bool, error)
}

type DeskService struct {
	repo  DeskRepository
	guard BookingGuard
	clock clock.Clock
}

func NewDeskService(repo DeskRepository, guard BookingGuard, clk clock.Clock) *DeskService {
	return &DeskService{
		repo:  repo,
		guard: guard,
		clock: clk,
	}
}

type CreateDeskInput struct {
	Label       string
	HourlyRate  float64
	Location    string
	Description string
}

func (s *DeskService) CreateDesk(ctx context.Context, in CreateDeskInput) (domain.Desk, error) {
	label := strings.TrimSpace(in.Label)
	if label == "" {
		return domain.Desk{}, domain.Invalid("label", "required")
	}
	if in.HourlyRate < 0 {
		return domain.Desk{}, domain.Invalid("hourlyRate", "must not be negative")
	}

	desk := domain.Desk{
		ID:          uuid.NewString(),
		Label:       label,
		Status:      domain.DeskStatusAvailable,
		HourlyRate:  in.HourlyRate,
		Location:    in.Location,
		Description: in.Description,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.CreateDesk(ctx, desk); err != nil {
		return domain.Desk{}, err
	}
	return desk, nil
}

func (s *DeskService) GetDesk(ctx context.Context, id string) (domain.Desk, error) {
	return s.repo.GetDesk(ctx, id)
}

func (s *DeskService) ListDesks(ctx context.Context) ([]domain.Desk, error) {
	return s.repo.ListDesks(ctx)
}

// UpdateDeskInput patches a desk; nil fields are left untouched.
type UpdateDeskInput struct {
	Label       *string
	Status      *domain.DeskStatus
	HourlyRate  *float64
	Location    *string
	Description *string
}

func (s *DeskService) UpdateDesk(ctx context.Context, id string, in UpdateDeskInput) (domain.Desk, error) {
	desk, err := s.repo.GetDesk(ctx, id)
	if err != nil {
		return domain.Desk{}, err
	}

	if in.Label != nil {
		label := strings.TrimSpace(*in.Label)
		if label == "" {
			return domain.Desk{}, domain.Invalid("label", "required")
		}
		desk.Label = label
	}
	if in.HourlyRate != nil {
		if *in.HourlyRate < 0 {
			return domain.Desk{}, domain.Invalid("hourlyRate", "must not be negative")
		}
		desk.HourlyRate = *in.HourlyRate
	}
	if in.Location != nil {
		desk.Location = *in.Location
	}
	if in.Description != nil {
		desk.Description = *in.Description
	}
	if in.Status != nil {
		if !domain.ValidDeskStatus(*in.Status) {
			return domain.Desk{}, domain.Invalid("status", "unknown desk status")
		}
		if *in.Status == domain.DeskStatusMaintenance && desk.Status != domain.DeskStatusMaintenance {
			covered, err := s.guard.ActiveCoverage(ctx, id, s.clock.Now())
			if err != nil {
				return domain.Desk{}, err
			}
			if covered {
				return domain.Desk{}, domain.ErrDeskOccupiedNow
			}
		}
		desk.Status = *in.Status
	}

	if err := s.repo.UpdateDesk(ctx, desk); err != nil {
		return domain.Desk{}, err
	}
	return desk, nil
}

// DeleteDesk removes a desk. Desks stay undeletable while any booking that
// still affects availability references them.
func (s *DeskService) DeleteDesk(ctx context.Context, id string) error {
	if _, err := s.repo.GetDesk(ctx, id); err != nil {
		return err
	}
	open, err := s.guard.HasNonTerminal(ctx, id)
	if err != nil {
		return err
	}
	if open {
		return domain.ErrDeskHasBookings
	}
	return s.repo.DeleteDesk(ctx, id)
}
