package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/perchdesk/perchdesk/internal/app"
	"github.com/perchdesk/perchdesk/internal/auth"
	"github.com/perchdesk/perchdesk/internal/domain"
)

// publicTokenBuffer pads public booking token expiry past the booking end so
// customers can still open their link right after the slot.
const publicTokenBuffer = time.Hour

// The interfaces below are the minimal slices of the application services
// each handler group needs; tests substitute stubs.

type AuthService interface {
	Login(ctx context.Context, email, password string) (app.LoginResult, error)
}

type DeskService interface {
	CreateDesk(ctx context.Context, in app.CreateDeskInput) (domain.Desk, error)
	GetDesk(ctx context.Context, id string) (domain.Desk, error)
	ListDesks(ctx context.Context) ([]domain.Desk, error)
	UpdateDesk(ctx context.Context, id string, in app.UpdateDeskInput) (domain.Desk, error)
	DeleteDesk(ctx context.Context, id string) error
}

type BookingService interface {
	CreateBooking(ctx context.Context, in app.CreateBookingInput) (domain.Booking, error)
	GetBooking(ctx context.Context, id string) (domain.Booking, error)
	ListBookings(ctx context.Context, filter app.BookingFilter) ([]domain.Booking, error)
	Transition(ctx context.Context, bookingID string, event domain.BookingEvent) (domain.Booking, error)
}

type InventoryService interface {
	CreateItem(ctx context.Context, in app.CreateItemInput) (domain.InventoryItem, error)
	ListItems(ctx context.Context, in app.ListItemsInput) ([]domain.InventoryItem, error)
}

type OrderService interface {
	BuildOrder(ctx context.Context, in app.BuildOrderInput) (app.BuildOrderResult, error)
	GetOrder(ctx context.Context, id string) (domain.Order, error)
	AdvanceStatus(ctx context.Context, orderID string, event domain.OrderEvent) (domain.Order, error)
}

type LedgerService interface {
	Record(ctx context.Context, in app.RecordInput) (domain.Transaction, error)
	ListPeriod(ctx context.Context, in app.ListPeriodInput) (app.TransactionPage, error)
	Aggregate(ctx context.Context, month string) (app.PeriodSummary, error)
}

// TokenIssuer is the token surface the transport layer uses.
type TokenIssuer interface {
	VerifyStaffToken(token string) (*auth.StaffClaims, error)
	IssuePublicBookingToken(bookingID string, expiresAt time.Time) (string, error)
	VerifyPublicBookingAccess(bookingID, token string) bool
}

// Server bundles the services behind the HTTP surface.
type Server struct {
	auth      AuthService
	desks     DeskService
	bookings  BookingService
	inventory InventoryService
	orders    OrderService
	ledger    LedgerService
	issuer    TokenIssuer
	logger    *slog.Logger
	// dev attaches diagnostic detail to internal errors; never set in
	// production.
	dev bool
}

type Config struct {
	Auth      AuthService
	Desks     DeskService
	Bookings  BookingService
	Inventory InventoryService
	Orders    OrderService
	Ledger    LedgerService
	Issuer    TokenIssuer
	Logger    *slog.Logger
	Dev       bool
}

func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		auth:      cfg.Auth,
		desks:     cfg.Desks,
		bookings:  cfg.Bookings,
		inventory: cfg.Inventory,
		orders:    cfg.Orders,
		ledger:    cfg.Ledger,
		issuer:    cfg.Issuer,
		logger:    logger,
		dev:       cfg.Dev,
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}
