package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/perchdesk/perchdesk/internal/domain"
)

// Routes assembles the full HTTP surface. Privileged routes sit behind staff
// token auth with per-route role allow-lists.
func (s *Server) Routes(corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(RequestLogger(s.logger))
	r.Use(CORS(corsOrigins))

	r.Get("/health", HealthHandler)
	r.Post("/auth/login", s.handleLogin)
	r.Get("/public/bookings/{bookingID}", s.handlePublicBooking)

	r.Group(func(pr chi.Router) {
		pr.Use(s.StaffAuth)

		pr.Group(func(sr chi.Router) {
			sr.Use(RequireRole(domain.RoleAdmin, domain.RoleStaff))

			sr.Get("/desks", s.handleListDesks)
			sr.Post("/desks", s.handleCreateDesk)
			sr.Get("/desks/{deskID}", s.handleGetDesk)
			sr.Patch("/desks/{deskID}", s.handleUpdateDesk)

			sr.Get("/bookings", s.handleListBookings)
			sr.Post("/bookings", s.handleCreateBooking)
			sr.Get("/bookings/{bookingID}", s.handleGetBooking)
			sr.Post("/bookings/{bookingID}/transition", s.handleTransitionBooking)
			sr.Get("/bookings/{bookingID}/share", s.handleShareBooking)

			sr.Get("/inventory", s.handleListItems)
			sr.Post("/inventory", s.handleCreateItem)

			sr.Post("/orders", s.handleCreateOrder)
			sr.Get("/orders/{orderID}", s.handleGetOrder)
			sr.Post("/orders/{orderID}/advance", s.handleAdvanceOrder)

			sr.Get("/transactions", s.handleListTransactions)
			sr.Get("/transactions/summary", s.handleAggregateTransactions)
			sr.Post("/transactions", s.handleCreateTransaction)
		})

		pr.Group(func(ar chi.Router) {
			ar.Use(RequireRole(domain.RoleAdmin))
			ar.Delete("/desks/{deskID}", s.handleDeleteDesk)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "not found", "")
	})
	return r
}

// HealthHandler reports basic liveness for the service.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
