package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCheckedIn BookingStatus = "checked-in"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// BookingEvent drives the booking state machine.
type BookingEvent string

const (
	BookingEventConfirm  BookingEvent = "confirm"
	BookingEventCheckIn  BookingEvent = "check-in"
	BookingEventComplete BookingEvent = "complete"
	BookingEventCancel   BookingEvent = "cancel"
)

// Customer is the contact attached to a booking.
type Customer struct {
	Name  string
	Email string
	Phone string
}

// Booking reserves one desk for a half-open time window [StartTime, EndTime).
type Booking struct {
	ID        string
	DeskID    string
	Customer  Customer
	StartTime time.Time
	EndTime   time.Time
	Status    BookingStatus
	DeskCost  float64
	CreatedAt time.Time
}

// Covers reports whether the booking window contains the instant t.
func (b Booking) Covers(t time.Time) bool {
	return !b.StartTime.After(t) && b.EndTime.After(t)
}

// Overlaps reports whether two half-open intervals intersect. Touching
// endpoints do not count: a booking ending at noon leaves the desk free for
// one starting at noon.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// NextBookingStatus applies event to current and returns the resulting
// status, or ErrInvalidTransition when the state machine forbids it.
func NextBookingStatus(current BookingStatus, event BookingEvent) (BookingStatus, error) {
	if current.Terminal() {
		return "", ErrInvalidTransition
	}
	switch event {
	case BookingEventConfirm:
		if current == BookingStatusPending {
			return BookingStatusConfirmed, nil
		}
	case BookingEventCheckIn:
		if current == BookingStatusPending || current == BookingStatusConfirmed {
			return BookingStatusCheckedIn, nil
		}
	case BookingEventComplete:
		if current == BookingStatusCheckedIn {
			return BookingStatusCompleted, nil
		}
	case BookingEventCancel:
		return BookingStatusCancelled, nil
	}
	return "", ErrInvalidTransition
}
