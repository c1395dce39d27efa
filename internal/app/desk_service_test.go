package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/perchdesk/perchdesk/internal/clock"
	"github.com/perchdesk/perchdesk/internal/domain"
)

func TestDeskService_CreateDesk(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	makeSvc := func() (*DeskService, *fakeDeskRepo) {
		repo := &fakeDeskRepo{desks: map[string]domain.Desk{}}
		svc := NewDeskService(repo, &fakeBookingGuard{}, clock.NewFixed(now))
		return svc, repo
	}

	t.Run("creates available desk", func(t *testing.T) {
		svc, repo := makeSvc()
		desk, err := svc.CreateDesk(context.Background(), CreateDeskInput{Label: "  A1 ", HourlyRate: 4.5})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if desk.Label != "A1" {
			t.Fatalf("expected trimmed label, got %q", desk.Label)
		}
		if desk.Status != domain.DeskStatusAvailable {
			t.Fatalf("expected available, got %s", desk.Status)
		}
		if _, ok := repo.desks[desk.ID]; !ok {
			t.Fatal("desk not stored")
		}
	})

	t.Run("rejects empty label", func(t *testing.T) {
		svc, _ := makeSvc()
		_, err := svc.CreateDesk(context.Background(), CreateDeskInput{Label: "   "})
		if !domain.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("rejects negative rate", func(t *testing.T) {
		svc, _ := makeSvc()
		_, err := svc.CreateDesk(context.Background(), CreateDeskInput{Label: "A1", HourlyRate: -1})
		if !domain.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestDeskService_UpdateDesk(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	makeSvc := func(guard *fakeBookingGuard) (*DeskService, *fakeDeskRepo) {
		repo := &fakeDeskRepo{desks: map[string]domain.Desk{
			"desk-1": {ID: "desk-1", Label: "A1", Status: domain.DeskStatusAvailable, HourlyRate: 4},
		}}
		svc := NewDeskService(repo, guard, clock.NewFixed(now))
		return svc, repo
	}

	status := func(s domain.DeskStatus) *domain.DeskStatus { return &s }

	t.Run("maintenance blocked while occupied", func(t *testing.T) {
		svc, _ := makeSvc(&fakeBookingGuard{covered: true})
		_, err := svc.UpdateDesk(context.Background(), "desk-1", UpdateDeskInput{
			Status: status(domain.DeskStatusMaintenance),
		})
		if !errors.Is(err, domain.ErrDeskOccupiedNow) {
			t.Fatalf("expected ErrDeskOccupiedNow, got %v", err)
		}
	})

	t.Run("maintenance allowed when free", func(t *testing.T) {
		svc, repo := makeSvc(&fakeBookingGuard{})
		desk, err := svc.UpdateDesk(context.Background(), "desk-1", UpdateDeskInput{
			Status: status(domain.DeskStatusMaintenance),
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if desk.Status != domain.DeskStatusMaintenance {
			t.Fatalf("expected maintenance, got %s", desk.Status)
		}
		if repo.desks["desk-1"].Status != domain.DeskStatusMaintenance {
			t.Fatal("update not persisted")
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		svc, _ := makeSvc(&fakeBookingGuard{})
		_, err := svc.UpdateDesk(context.Background(), "desk-1", UpdateDeskInput{
			Status: status(domain.DeskStatus("broken")),
		})
		if !domain.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("patches only provided fields", func(t *testing.T) {
		svc, _ := makeSvc(&fakeBookingGuard{})
		rate := 7.5
		desk, err := svc.UpdateDesk(context.Background(), "desk-1", UpdateDeskInput{HourlyRate: &rate})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if desk.HourlyRate != 7.5 || desk.Label != "A1" {
			t.Fatalf("unexpected desk after patch: %+v", desk)
		}
	})

	t.Run("missing desk", func(t *testing.T) {
		svc, _ := makeSvc(&fakeBookingGuard{})
		_, err := svc.UpdateDesk(context.Background(), "desk-9", UpdateDeskInput{})
		if !errors.Is(err, domain.ErrDeskNotFound) {
			t.Fatalf("expected ErrDeskNotFound, got %v", err)
		}
	})
}

func TestDeskService_DeleteDesk(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	makeSvc := func(guard *fakeBookingGuard) (*DeskService, *fakeDeskRepo) {
		repo := &fakeDeskRepo{desks: map[string]domain.Desk{
			"desk-1": {ID: "desk-1", Label: "A1"},
		}}
		svc := NewDeskService(repo, guard, clock.NewFixed(now))
		return svc, repo
	}

	t.Run("blocked while bookings remain open", func(t *testing.T) {
		svc, repo := makeSvc(&fakeBookingGuard{open: true})
		err := svc.DeleteDesk(context.Background(), "desk-1")
		if !errors.Is(err, domain.ErrDeskHasBookings) {
			t.Fatalf("expected ErrDeskHasBookings, got %v", err)
		}
		if _, ok := repo.desks["desk-1"]; !ok {
			t.Fatal("desk deleted despite guard")
		}
	})

	t.Run("deletes when no open bookings", func(t *testing.T) {
		svc, repo := makeSvc(&fakeBookingGuard{})
		if err := svc.DeleteDesk(context.Background(), "desk-1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, ok := repo.desks["desk-1"]; ok {
			t.Fatal("desk still present")
		}
	})
}

type fakeDeskRepo struct {
	desks map[string]domain.Desk
}

func (f *fakeDeskRepo) CreateDesk(_ context.Context, desk domain.Desk) error {
	for _, d := range f.desks {
		if d.Label == desk.Label {
			return domain.ErrDuplicateLabel
		}
	}
	f.desks[desk.ID] = desk
	return nil
}

func (f *fakeDeskRepo) GetDesk(_ context.Context, id string) (domain.Desk, error) {
	desk, ok := f.desks[id]
	if !ok {
		return domain.Desk{}, domain.ErrDeskNotFound
	}
	return desk, nil
}

func (f *fakeDeskRepo) ListDesks(_ context.Context) ([]domain.Desk, error) {
	out := []domain.Desk{}
	for _, d := range f.desks {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeDeskRepo) UpdateDesk(_ context.Context, desk domain.Desk) error {
	if _, ok := f.desks[desk.ID]; !ok {
		return domain.ErrDeskNotFound
	}
	f.desks[desk.ID] = desk
	return nil
}

func (f *fakeDeskRepo) DeleteDesk(_ context.Context, id string) error {
	if _, ok := f.desks[id]; !ok {
		return domain.ErrDeskNotFound
	}
	delete(f.desks, id)
	return nil
}

type fakeBookingGuard struct {
	covered bool
	open    bool
}

func (f *fakeBookingGuard) ActiveCoverage(context.Context, string, time.Time) (bool, error) {
	return f.covered, nil
}

func (f *fakeBookingGuard) HasNonTerminal(context.Context, string) (bool, error) {
	return f.open, nil
}
