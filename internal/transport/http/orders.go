package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/perchdesk/perchdesk/internal/app"
	"github.com/perchdesk/perchdesk/internal/domain"
)

type orderLineResponse struct {
	ItemID    string  `json:"item_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

type orderResponse struct {
	ID          string              `json:"id"`
	BookingID   string              `json:"booking_id"`
	Lines       []orderLineResponse `json:"lines"`
	Total       float64             `json:"total"`
	Status      string              `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	DeliveredAt *time.Time          `json:"delivered_at,omitempty"`
}

func toOrderResponse(o domain.Order) orderResponse {
	resp := orderResponse{
		ID:          o.ID,
		BookingID:   o.BookingID,
		Lines:       make([]orderLineResponse, 0, len(o.Lines)),
		Total:       o.Total,
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt,
		DeliveredAt: o.DeliveredAt,
	}
	for _, l := range o.Lines {
		resp.Lines = append(resp.Lines, orderLineResponse{
			ItemID:    l.ItemID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal,
		})
	}
	return resp
}

type cartLineRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type createOrderRequest struct {
	BookingID string            `json:"booking_id"`
	Lines     []cartLineRequest `json:"lines"`
	Total     float64           `json:"total"`
}

// createOrderResponse reports the longest combo-imposed duration found in
// the cart alongside the order. Durations bind the reservation window when
// the cart is submitted with the booking itself.
type createOrderResponse struct {
	orderResponse
	FixedDurationMinutes int `json:"fixed_duration_minutes,omitempty"`
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body", "")
		return
	}

	in := app.BuildOrderInput{
		BookingID:    req.BookingID,
		ClaimedTotal: req.Total,
	}
	for _, l := range req.Lines {
		in.Lines = append(in.Lines, app.CartLine{ItemID: l.ItemID, Quantity: l.Quantity})
	}

	result, err := s.orders.BuildOrder(r.Context(), in)
	if err != nil {
		s.respondError(w, err)
		return
	}

	resp := createOrderResponse{orderResponse: toOrderResponse(result.Order)}
	if result.FixedDuration > 0 {
		resp.FixedDurationMinutes = int(result.FixedDuration / time.Minute)
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.orders.GetOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (s *Server) handleAdvanceOrder(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body", "")
		return
	}

	order, err := s.orders.AdvanceStatus(r.Context(), chi.URLParam(r, "orderID"), domain.OrderEvent(req.Event))
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}
