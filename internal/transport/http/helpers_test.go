package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/perchdesk/perchdesk/internal/app"
	"github.com/perchdesk/perchdesk/internal/auth"
	"github.com/perchdesk/perchdesk/internal/domain"
)

// newTestServer wires stub services into a full router. Handlers under test
// get their stub via the cfg mutators; everything else stays zero-valued.
func newTestServer(t *testing.T, mutate func(cfg *Config)) http.Handler {
	t.Helper()
	cfg := Config{
		Auth:      &stubAuthService{},
		Desks:     &stubDeskService{},
		Bookings:  &stubBookingService{},
		Inventory: &stubInventoryService{},
		Orders:    &stubOrderService{},
		Ledger:    &stubLedgerService{},
		Issuer:    &stubIssuer{role: domain.RoleAdmin},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewServer(cfg).Routes(nil)
}

const testBearer = "Bearer test-token"

type stubAuthService struct {
	result app.LoginResult
	err    error
}

func (s *stubAuthService) Login(context.Context, string, string) (app.LoginResult, error) {
	return s.result, s.err
}

type stubDeskService struct {
	desk  domain.Desk
	desks []domain.Desk
	err   error
}

func (s *stubDeskService) CreateDesk(context.Context, app.CreateDeskInput) (domain.Desk, error) {
	return s.desk, s.err
}

func (s *stubDeskService) GetDesk(context.Context, string) (domain.Desk, error) {
	return s.desk, s.err
}

func (s *stubDeskService) ListDesks(context.Context) ([]domain.Desk, error) {
	return s.desks, s.err
}

func (s *stubDeskService) UpdateDesk(context.Context, string, app.UpdateDeskInput) (domain.Desk, error) {
	return s.desk, s.err
}

func (s *stubDeskService) DeleteDesk(context.Context, string) error {
	return s.err
}

type stubBookingService struct {
	booking    domain.Booking
	bookings   []domain.Booking
	lastCreate app.CreateBookingInput
	err        error
}

func (s *stubBookingService) CreateBooking(_ context.Context, in app.CreateBookingInput) (domain.Booking, error) {
	s.lastCreate = in
	return s.booking, s.err
}

func (s *stubBookingService) GetBooking(context.Context, string) (domain.Booking, error) {
	return s.booking, s.err
}

func (s *stubBookingService) ListBookings(context.Context, app.BookingFilter) ([]domain.Booking, error) {
	return s.bookings, s.err
}

func (s *stubBookingService) Transition(context.Context, string, domain.BookingEvent) (domain.Booking, error) {
	return s.booking, s.err
}

type stubInventoryService struct {
	item  domain.InventoryItem
	items []domain.InventoryItem
	err   error
}

func (s *stubInventoryService) CreateItem(context.Context, app.CreateItemInput) (domain.InventoryItem, error) {
	return s.item, s.err
}

func (s *stubInventoryService) ListItems(context.Context, app.ListItemsInput) ([]domain.InventoryItem, error) {
	return s.items, s.err
}

type stubOrderService struct {
	result app.BuildOrderResult
	order  domain.Order
	err    error
}

func (s *stubOrderService) BuildOrder(context.Context, app.BuildOrderInput) (app.BuildOrderResult, error) {
	return s.result, s.err
}

func (s *stubOrderService) GetOrder(context.Context, string) (domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) AdvanceStatus(context.Context, string, domain.OrderEvent) (domain.Order, error) {
	return s.order, s.err
}

type stubLedgerService struct {
	tx      domain.Transaction
	page    app.TransactionPage
	summary app.PeriodSummary
	err     error
}

func (s *stubLedgerService) Record(context.Context, app.RecordInput) (domain.Transaction, error) {
	return s.tx, s.err
}

func (s *stubLedgerService) ListPeriod(context.Context, app.ListPeriodInput) (app.TransactionPage, error) {
	return s.page, s.err
}

func (s *stubLedgerService) Aggregate(context.Context, string) (app.PeriodSummary, error) {
	return s.summary, s.err
}

// stubIssuer accepts any bearer token and reports the configured role.
// publicOK gates the public booking token check.
type stubIssuer struct {
	role      domain.Role
	verifyErr error
	publicOK  bool
	minted    string
	mintErr   error
}

func (s *stubIssuer) VerifyStaffToken(string) (*auth.StaffClaims, error) {
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}
	return &auth.StaffClaims{UserID: "u-1", Email: "staff@perchdesk.test", Role: s.role}, nil
}

func (s *stubIssuer) IssuePublicBookingToken(string, time.Time) (string, error) {
	return s.minted, s.mintErr
}

func (s *stubIssuer) VerifyPublicBookingAccess(string, string) bool {
	return s.publicOK
}
