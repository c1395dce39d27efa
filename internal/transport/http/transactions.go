package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/perchdesk/perchdesk/internal/app"
	"github.com/perchdesk/perchdesk/internal/domain"
)

type transactionBookingRef struct {
	ID           string `json:"id"`
	DeskID       string `json:"desk_id"`
	CustomerName string `json:"customer_name"`
}

type transactionOrderRef struct {
	ID     string  `json:"id"`
	Total  float64 `json:"total"`
	Status string  `json:"status"`
}

type transactionResponse struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Amount      float64                `json:"amount"`
	Source      string                 `json:"source"`
	Description string                 `json:"description,omitempty"`
	Date        time.Time              `json:"date"`
	BookingID   string                 `json:"booking_id,omitempty"`
	OrderID     string                 `json:"order_id,omitempty"`
	Booking     *transactionBookingRef `json:"booking,omitempty"`
	Order       *transactionOrderRef   `json:"order,omitempty"`
	CreatedBy   string                 `json:"created_by,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

func toTransactionResponse(t domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Type:        string(t.Type),
		Amount:      t.Amount,
		Source:      t.Source,
		Description: t.Description,
		Date:        t.Date,
		BookingID:   t.BookingID,
		OrderID:     t.OrderID,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
	}
}

type transactionPageResponse struct {
	Transactions []transactionResponse `json:"transactions"`
	Total        int                   `json:"total"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := s.ledger.ListPeriod(r.Context(), app.ListPeriodInput{
		Month:  q.Get("month"),
		Type:   q.Get("type"),
		Source: q.Get("source"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}

	resp := transactionPageResponse{
		Transactions: make([]transactionResponse, 0, len(result.Transactions)),
		Total:        result.Total,
		Page:         result.Page,
		Limit:        result.Limit,
	}
	bookingRefs := map[string]*transactionBookingRef{}
	orderRefs := map[string]*transactionOrderRef{}
	for _, t := range result.Transactions {
		tr := toTransactionResponse(t)
		// Expansion is informational: a reference that no longer
		// resolves leaves the bare id in place.
		if t.BookingID != "" {
			ref, seen := bookingRefs[t.BookingID]
			if !seen {
				if b, err := s.bookings.GetBooking(r.Context(), t.BookingID); err == nil {
					ref = &transactionBookingRef{ID: b.ID, DeskID: b.DeskID, CustomerName: b.Customer.Name}
				}
				bookingRefs[t.BookingID] = ref
			}
			tr.Booking = ref
		}
		if t.OrderID != "" {
			ref, seen := orderRefs[t.OrderID]
			if !seen {
				if o, err := s.orders.GetOrder(r.Context(), t.OrderID); err == nil {
					ref = &transactionOrderRef{ID: o.ID, Total: o.Total, Status: string(o.Status)}
				}
				orderRefs[t.OrderID] = ref
			}
			tr.Order = ref
		}
		resp.Transactions = append(resp.Transactions, tr)
	}
	writeJSON(w, http.StatusOK, resp)
}

type dailySubtotalResponse struct {
	Day    string  `json:"day"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

type sourceBreakdownResponse struct {
	Source string                  `json:"source"`
	Amount float64                 `json:"amount"`
	Count  int                     `json:"count"`
	Daily  []dailySubtotalResponse `json:"daily"`
}

type typeAggregateResponse struct {
	Total   float64                   `json:"total"`
	Count   int                       `json:"count"`
	Sources []sourceBreakdownResponse `json:"sources"`
}

type summaryResponse struct {
	TotalIncome      float64               `json:"total_income"`
	TotalExpenses    float64               `json:"total_expenses"`
	NetIncome        float64               `json:"net_income"`
	TransactionCount int                   `json:"transaction_count"`
	Income           typeAggregateResponse `json:"income"`
	Expenses         typeAggregateResponse `json:"expenses"`
}

func toTypeAggregateResponse(a app.TypeAggregate) typeAggregateResponse {
	resp := typeAggregateResponse{
		Total:   a.Total,
		Count:   a.Count,
		Sources: make([]sourceBreakdownResponse, 0, len(a.Sources)),
	}
	for _, src := range a.Sources {
		sr := sourceBreakdownResponse{
			Source: src.Source,
			Amount: src.Amount,
			Count:  src.Count,
			Daily:  make([]dailySubtotalResponse, 0, len(src.Daily)),
		}
		for _, d := range src.Daily {
			sr.Daily = append(sr.Daily, dailySubtotalResponse{Day: d.Day, Amount: d.Amount, Count: d.Count})
		}
		resp.Sources = append(resp.Sources, sr)
	}
	return resp
}

func (s *Server) handleAggregateTransactions(w http.ResponseWriter, r *http.Request) {
	summary, err := s.ledger.Aggregate(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		TotalIncome:      summary.TotalIncome,
		TotalExpenses:    summary.TotalExpenses,
		NetIncome:        summary.NetIncome,
		TransactionCount: summary.TransactionCount,
		Income:           toTypeAggregateResponse(summary.Income),
		Expenses:         toTypeAggregateResponse(summary.Expenses),
	})
}

type createTransactionRequest struct {
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Source      string  `json:"source"`
	Description string  `json:"description,omitempty"`
	Date        string  `json:"date,omitempty"`
	BookingID   string  `json:"booking_id,omitempty"`
	OrderID     string  `json:"order_id,omitempty"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body", "")
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			s.respondError(w, domain.Invalid("date", "must be RFC 3339"))
			return
		}
		date = parsed
	}

	createdBy := ""
	if claims := ClaimsFromContext(r.Context()); claims != nil {
		createdBy = claims.UserID
	}

	tx, err := s.ledger.Record(r.Context(), app.RecordInput{
		Type:        domain.TransactionType(req.Type),
		Amount:      req.Amount,
		Source:      req.Source,
		Description: req.Description,
		Date:        date,
		BookingID:   req.BookingID,
		OrderID:     req.OrderID,
		CreatedBy:   createdBy,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}
