package domain

import (
	"math"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type OrderEvent string

const (
	OrderEventConfirm OrderEvent = "confirm"
	OrderEventPrepare OrderEvent = "prepare"
	OrderEventReady   OrderEvent = "ready"
	OrderEventDeliver OrderEvent = "deliver"
	OrderEventCancel  OrderEvent = "cancel"
)

// TotalEpsilon is the tolerance when comparing a claimed order total against
// the recomputed sum of line subtotals.
const TotalEpsilon = 0.01

// OrderLine is one priced cart entry. Subtotal is UnitPrice × Quantity at
// resolution time; combo lines price at the combo's own price.
type OrderLine struct {
	ItemID    string
	Name      string
	UnitPrice float64
	Quantity  int
	Subtotal  float64
}

// Order binds purchased items to a booking.
type Order struct {
	ID          string
	BookingID   string
	Lines       []OrderLine
	Total       float64
	Status      OrderStatus
	CreatedAt   time.Time
	DeliveredAt *time.Time
}

// SumLines recomputes the order total from its line subtotals.
func SumLines(lines []OrderLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.Subtotal
	}
	return total
}

// TotalsMatch compares two currency amounts within TotalEpsilon.
func TotalsMatch(a, b float64) bool {
	return math.Abs(a-b) < TotalEpsilon
}

// NextOrderStatus applies event to the linear order progression, with cancel
// allowed from any state short of delivered.
func NextOrderStatus(current OrderStatus, event OrderEvent) (OrderStatus, error) {
	if event == OrderEventCancel {
		if current == OrderStatusDelivered || current == OrderStatusCancelled {
			return "", ErrInvalidTransition
		}
		return OrderStatusCancelled, nil
	}
	steps := map[OrderStatus]struct {
		event OrderEvent
		next  OrderStatus
	}{
		OrderStatusPending:   {OrderEventConfirm, OrderStatusConfirmed},
		OrderStatusConfirmed: {OrderEventPrepare, OrderStatusPreparing},
		OrderStatusPreparing: {OrderEventReady, OrderStatusReady},
		OrderStatusReady:     {OrderEventDeliver, OrderStatusDelivered},
	}
	step, ok := steps[current]
	if !ok || step.event != event {
		return "", ErrInvalidTransition
	}
	return step.next, nil
}
