package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/perchdesk/perchdesk/internal/clock"
	"github.com/perchdesk/perchdesk/internal/domain"
)

type OrderRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetBookingForUpdate(ctx context.Context, bookingID string) (domain.Booking, error)
	CreateOrder(ctx context.Context, order domain.Order) error
	GetOrder(ctx context.Context, id string) (domain.Order, error)
	GetOrderForUpdate(ctx context.Context, id string) (domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, deliveredAt *time.Time) error
}

// CartResolver is the slice of the inventory resolver orders need.
type CartResolver interface {
	ResolveCartLine(ctx context.Context, itemID string, quantity int) (domain.OrderLine, time.Duration, error)
}

// StockAdjuster decrements on-hand stock when an order is delivered.
type StockAdjuster interface {
	AdjustStock(ctx context.Context, itemID string, delta int) error
}

type OrderService struct {
	repo     OrderRepository
	resolver CartResolver
	stock    StockAdjuster
	ledger   LedgerRecorder
	clock    clock.Clock
}

func NewOrderService(repo OrderRepository, resolver CartResolver, stock StockAdjuster, ledger LedgerRecorder, clk clock.Clock) *OrderService {
	return &OrderService{
		repo:     repo,
		resolver: resolver,
		stock:    stock,
		ledger:   ledger,
		clock:    clk,
	}
}

type CartLine struct {
	ItemID   string
	Quantity int
}

type BuildOrderInput struct {
	BookingID string
	Lines     []CartLine
	// ClaimedTotal is the total the client computed. The write is rejected
	// unless it matches the recomputed sum of line subtotals within
	// domain.TotalEpsilon.
	ClaimedTotal float64
}

// BuildOrderResult carries the persisted order plus any combo-imposed
// booking duration discovered while resolving the cart.
type BuildOrderResult struct {
	Order         domain.Order
	FixedDuration time.Duration
}

func (s *OrderService) BuildOrder(ctx context.Context, in BuildOrderInput) (BuildOrderResult, error) {
	if in.BookingID == "" {
		return BuildOrderResult{}, domain.Invalid("bookingId", "required")
	}
	if len(in.Lines) == 0 {
		return BuildOrderResult{}, domain.ErrEmptyOrder
	}

	var result BuildOrderResult

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.GetBookingForUpdate(txCtx, in.BookingID)
		if err != nil {
			return err
		}
		if booking.Status.Terminal() {
			return domain.ErrBookingTerminal
		}

		lines := make([]domain.OrderLine, 0, len(in.Lines))
		var fixed time.Duration
		for _, cartLine := range in.Lines {
			line, d, err := s.resolver.ResolveCartLine(txCtx, cartLine.ItemID, cartLine.Quantity)
			if err != nil {
				return err
			}
			lines = append(lines, line)
			if d > fixed {
				fixed = d
			}
		}

		total := domain.SumLines(lines)
		if !domain.TotalsMatch(total, in.ClaimedTotal) {
			return domain.ErrTotalMismatch
		}

		order := domain.Order{
			ID:        uuid.NewString(),
			BookingID: in.BookingID,
			Lines:     lines,
			Total:     total,
			Status:    domain.OrderStatusPending,
			CreatedAt: s.clock.Now(),
		}
		if err := s.repo.CreateOrder(txCtx, order); err != nil {
			return err
		}

		result = BuildOrderResult{Order: order, FixedDuration: fixed}
		return nil
	})
	if err != nil {
		return BuildOrderResult{}, err
	}
	return result, nil
}

// AdvanceStatus applies a lifecycle event to an order. Delivery stamps
// DeliveredAt, draws down stock for every line and posts the order total to
// the ledger as income.
func (s *OrderService) AdvanceStatus(ctx context.Context, orderID string, event domain.OrderEvent) (domain.Order, error) {
	var result domain.Order

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}

		next, err := domain.NextOrderStatus(order.Status, event)
		if err != nil {
			return err
		}

		var deliveredAt *time.Time
		if next == domain.OrderStatusDelivered {
			now := s.clock.Now()
			deliveredAt = &now
		}
		if err := s.repo.UpdateOrderStatus(txCtx, orderID, next, deliveredAt); err != nil {
			return err
		}

		if next == domain.OrderStatusDelivered {
			for _, line := range order.Lines {
				if err := s.stock.AdjustStock(txCtx, line.ItemID, -line.Quantity); err != nil {
					return err
				}
			}
			if order.Total > 0 {
				if _, err := s.ledger.Record(txCtx, RecordInput{
					Type:        domain.TransactionIncome,
					Amount:      order.Total,
					Source:      "order",
					Description: "order delivered",
					Date:        s.clock.Now(),
					BookingID:   order.BookingID,
					OrderID:     order.ID,
				}); err != nil {
					return err
				}
			}
		}

		order.Status = next
		order.DeliveredAt = deliveredAt
		result = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return result, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return s.repo.GetOrder(ctx, id)
}
