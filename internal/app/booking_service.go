package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/perchdesk/perchdesk/internal/clock"
	"github.com/perchdesk/perchdesk/internal/domain"
)

type BookingRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetDeskForUpdate(ctx context.Context, deskID string) (domain.Desk, error)
	AnyOverlapping(ctx context.Context, deskID string, start, end time.Time, excludeID string) (bool, error)
	AnyCovering(ctx context.Context, deskID string, at time.Time, statuses []domain.BookingStatus) (bool, error)
	AnyNonTerminal(ctx context.Context, deskID string) (bool, error)
	CreateBooking(ctx context.Context, booking domain.Booking) error
	GetBooking(ctx context.Context, id string) (domain.Booking, error)
	GetBookingForUpdate(ctx context.Context, id string) (domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status domain.BookingStatus) error
	ListBookings(ctx context.Context, filter BookingFilter) ([]domain.Booking, error)
}

type BookingFilter struct {
	DeskID string
	Status domain.BookingStatus
	From   time.Time
	To     time.Time
}

// LedgerRecorder is the slice of the ledger service booking completion needs.
type LedgerRecorder interface {
	Record(ctx context.Context, in RecordInput) (domain.Transaction, error)
}

type BookingService struct {
	repo     BookingRepository
	resolver CartResolver
	ledger   LedgerRecorder
	clock    clock.Clock
}

func NewBookingService(repo BookingRepository, resolver CartResolver, ledger LedgerRecorder, clk clock.Clock) *BookingService {
	return &BookingService{
		repo:     repo,
		resolver: resolver,
		ledger:   ledger,
		clock:    clk,
	}
}

type CreateBookingInput struct {
	DeskID   string
	Customer domain.Customer
	Start    time.Time
	End      time.Time
	// CheckInNow creates the booking already checked in (walk-in customers).
	CheckInNow bool
	// Cart holds the items sold with the reservation. A combo line that
	// carries a fixed duration overrides End with Start plus that duration.
	Cart []CartLine
}

func (in *CreateBookingInput) validate() error {
	if in.DeskID == "" {
		return domain.Invalid("deskId", "required")
	}
	if strings.TrimSpace(in.Customer.Name) == "" {
		return domain.Invalid("customer.name", "required")
	}
	if in.Start.IsZero() {
		return domain.Invalid("startTime", "required")
	}
	for _, line := range in.Cart {
		if line.ItemID == "" {
			return domain.Invalid("cart", "item id required")
		}
		if line.Quantity < 1 {
			return domain.Invalid("cart", "quantity must be at least one")
		}
	}
	return nil
}

// window resolves the booking interval. The longest combo-imposed duration in
// the cart wins over the caller-supplied end time.
func (s *BookingService) window(ctx context.Context, in CreateBookingInput) (time.Time, time.Time, error) {
	var fixed time.Duration
	for _, line := range in.Cart {
		_, d, err := s.resolver.ResolveCartLine(ctx, line.ItemID, line.Quantity)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if d > fixed {
			fixed = d
		}
	}

	end := in.End
	if fixed > 0 {
		end = in.Start.Add(fixed)
	}
	if end.IsZero() {
		return time.Time{}, time.Time{}, domain.Invalid("endTime", "required unless a cart item fixes the duration")
	}
	if !in.Start.Before(end) {
		return time.Time{}, time.Time{}, domain.Invalid("endTime", "must be after startTime")
	}
	return in.Start, end, nil
}

func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (domain.Booking, error) {
	if err := in.validate(); err != nil {
		return domain.Booking{}, err
	}
	start, end, err := s.window(ctx, in)
	if err != nil {
		return domain.Booking{}, err
	}

	now := s.clock.Now()
	var result domain.Booking

	// The conflict check runs inside the same transaction as the insert, with
	// the desk row locked. A fully serializable guard would need an exclusion
	// constraint on (desk_id, interval); the residual window is accepted.
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		desk, err := s.repo.GetDeskForUpdate(txCtx, in.DeskID)
		if err != nil {
			return err
		}
		if desk.Status == domain.DeskStatusMaintenance {
			return domain.ErrDeskInMaintenance
		}

		conflict, err := s.repo.AnyOverlapping(txCtx, in.DeskID, start, end, "")
		if err != nil {
			return err
		}
		if conflict {
			return domain.ErrBookingConflict
		}

		status := domain.BookingStatusPending
		if in.CheckInNow {
			status = domain.BookingStatusCheckedIn
		}

		booking := domain.Booking{
			ID:        uuid.NewString(),
			DeskID:    in.DeskID,
			Customer:  in.Customer,
			StartTime: start,
			EndTime:   end,
			Status:    status,
			DeskCost:  desk.HourlyRate * end.Sub(start).Hours(),
			CreatedAt: now,
		}
		if err := s.repo.CreateBooking(txCtx, booking); err != nil {
			return err
		}

		result = booking
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return result, nil
}

// Transition applies a lifecycle event to a booking. Completing a checked-in
// booking posts the desk cost to the ledger as income.
func (s *BookingService) Transition(ctx context.Context, bookingID string, event domain.BookingEvent) (domain.Booking, error) {
	var result domain.Booking

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.GetBookingForUpdate(txCtx, bookingID)
		if err != nil {
			return err
		}

		next, err := domain.NextBookingStatus(booking.Status, event)
		if err != nil {
			return err
		}
		if err := s.repo.UpdateBookingStatus(txCtx, bookingID, next); err != nil {
			return err
		}

		booking.Status = next
		result = booking

		if next == domain.BookingStatusCompleted && booking.DeskCost > 0 {
			_, err := s.ledger.Record(txCtx, RecordInput{
				Type:        domain.TransactionIncome,
				Amount:      booking.DeskCost,
				Source:      "desk-booking",
				Description: "desk rental for booking",
				Date:        s.clock.Now(),
				BookingID:   booking.ID,
			})
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return result, nil
}

// ConflictsFor reports whether any non-terminal booking on the desk overlaps
// [start, end). excludeID skips one booking, for reschedule checks.
func (s *BookingService) ConflictsFor(ctx context.Context, deskID string, start, end time.Time, excludeID string) (bool, error) {
	return s.repo.AnyOverlapping(ctx, deskID, start, end, excludeID)
}

// ActiveCoverage reports whether a confirmed or checked-in booking covers the
// instant at. The desk registry uses this to gate maintenance.
func (s *BookingService) ActiveCoverage(ctx context.Context, deskID string, at time.Time) (bool, error) {
	return s.repo.AnyCovering(ctx, deskID, at, []domain.BookingStatus{
		domain.BookingStatusConfirmed,
		domain.BookingStatusCheckedIn,
	})
}

// HasNonTerminal reports whether the desk is referenced by any booking that
// is still pending, confirmed or checked in.
func (s *BookingService) HasNonTerminal(ctx context.Context, deskID string) (bool, error) {
	return s.repo.AnyNonTerminal(ctx, deskID)
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *BookingService) ListBookings(ctx context.Context, filter BookingFilter) ([]domain.Booking, error) {
	return s.repo.ListBookings(ctx, filter)
}
