package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/perchdesk/perchdesk/internal/app"
	"github.com/perchdesk/perchdesk/internal/domain"
)

type bookingResponse struct {
	ID            string    `json:"id"`
	DeskID        string    `json:"desk_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
	DeskCost      float64   `json:"desk_cost"`
	CreatedAt     time.Time `json:"created_at"`
}

func toBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:            b.ID,
		DeskID:        b.DeskID,
		CustomerName:  b.Customer.Name,
		CustomerEmail: b.Customer.Email,
		CustomerPhone: b.Customer.Phone,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Status:        string(b.Status),
		DeskCost:      b.DeskCost,
		CreatedAt:     b.CreatedAt,
	}
}

type createBookingRequest struct {
	DeskID        string `json:"desk_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	StartTime     string `json:"start_time"`
	// EndTime may be omitted when the cart contains a combo that fixes
	// the booking length.
	EndTime    string            `json:"end_time,omitempty"`
	CheckInNow bool              `json:"check_in_now,omitempty"`
	Cart       []cartLineRequest `json:"cart,omitempty"`
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body", "")
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		s.respondError(w, domain.Invalid("startTime", "must be RFC 3339"))
		return
	}
	var end time.Time
	if req.EndTime != "" {
		end, err = time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			s.respondError(w, domain.Invalid("endTime", "must be RFC 3339"))
			return
		}
	}

	in := app.CreateBookingInput{
		DeskID: req.DeskID,
		Customer: domain.Customer{
			Name:  req.CustomerName,
			Email: req.CustomerEmail,
			Phone: req.CustomerPhone,
		},
		Start:      start,
		End:        end,
		CheckInNow: req.CheckInNow,
	}
	for _, l := range req.Cart {
		in.Cart = append(in.Cart, app.CartLine{ItemID: l.ItemID, Quantity: l.Quantity})
	}

	booking, err := s.bookings.CreateBooking(r.Context(), in)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingResponse(booking))
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := s.bookings.GetBooking(r.Context(), chi.URLParam(r, "bookingID"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	filter := app.BookingFilter{
		DeskID: r.URL.Query().Get("desk_id"),
		Status: domain.BookingStatus(r.URL.Query().Get("status")),
	}
	bookings, err := s.bookings.ListBookings(r.Context(), filter)
	if err != nil {
		s.respondError(w, err)
		return
	}
	resp := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, toBookingResponse(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

type transitionRequest struct {
	Event string `json:"event"`
}

func (s *Server) handleTransitionBooking(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body", "")
		return
	}

	booking, err := s.bookings.Transition(r.Context(), chi.URLParam(r, "bookingID"), domain.BookingEvent(req.Event))
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

type shareBookingResponse struct {
	BookingID string    `json:"booking_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// handleShareBooking mints a public link token scoped to one booking, expiring
// a fixed buffer after the booking ends.
func (s *Server) handleShareBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingID")
	booking, err := s.bookings.GetBooking(r.Context(), bookingID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	expiresAt := booking.EndTime.Add(publicTokenBuffer)
	token, err := s.issuer.IssuePublicBookingToken(booking.ID, expiresAt)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shareBookingResponse{
		BookingID: booking.ID,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
