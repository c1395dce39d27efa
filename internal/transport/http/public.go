package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handlePublicBooking serves the customer-facing booking view. Access is
// granted by a booking-scoped token in the query string; any verification
// failure reads as not found so the endpoint leaks nothing about which
// booking ids exist.
func (s *Server) handlePublicBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingID")
	token := r.URL.Query().Get("token")

	if !s.issuer.VerifyPublicBookingAccess(bookingID, token) {
		writeError(w, http.StatusNotFound, codeNotFound, "not found", "")
		return
	}

	booking, err := s.bookings.GetBooking(r.Context(), bookingID)
	if err != nil {
		writeError(w, http.StatusNotFound, codeNotFound, "not found", "")
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}
