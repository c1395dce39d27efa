package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/perchdesk/perchdesk/internal/app"
	"github.com/perchdesk/perchdesk/internal/domain"
)

type deskResponse struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Status      string    `json:"status"`
	HourlyRate  float64   `json:"hourly_rate"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func toDeskResponse(d domain.Desk) deskResponse {
	return deskResponse{
		ID:          d.ID,
		Label:       d.Label,
		Status:      string(d.Status),
		HourlyRate:  d.HourlyRate,
		Location:    d.Location,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
	}
}

type createDeskRequest struct {
	Label       string  `json:"label"`
	HourlyRate  float64 `json:"hourly_rate"`
	Location    string  `json:"location,omitempty"`
	Description string  `json:"description,omitempty"`
}

func (s *Server) handleCreateDesk(w http.ResponseWriter, r *http.Request) {
	var req createDeskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body", "")
		return
	}

	desk, err := s.desks.CreateDesk(r.Context(), app.CreateDeskInput{
		Label:       req.Label,
		HourlyRate:  req.HourlyRate,
		Location:    req.Location,
		Description: req.Description,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDeskResponse(desk))
}

func (s *Server) handleGetDesk(w http.ResponseWriter, r *http.Request) {
	desk, err := s.desks.GetDesk(r.Context(), chi.URLParam(r, "deskID"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDeskResponse(desk))
}

func (s *Server) handleListDesks(w http.ResponseWriter, r *http.Request) {
	desks, err := s.desks.ListDesks(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	resp := make([]deskResponse, 0, len(desks))
	for _, d := range desks {
		resp = append(resp, toDeskResponse(d))
	}
	writeJSON(w, http.StatusOK, resp)
}

type updateDeskRequest struct {
	Label       *string  `json:"label,omitempty"`
	Status      *string  `json:"status,omitempty"`
	HourlyRate  *float64 `json:"hourly_rate,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Description *string  `json:"description,omitempty"`
}

func (s *Server) handleUpdateDesk(w http.ResponseWriter, r *http.Request) {
	var req updateDeskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body", "")
		return
	}

	patch := app.UpdateDeskInput{
		Label:       req.Label,
		HourlyRate:  req.HourlyRate,
		Location:    req.Location,
		Description: req.Description,
	}
	if req.Status != nil {
		status := domain.DeskStatus(*req.Status)
		patch.Status = &status
	}

	desk, err := s.desks.UpdateDesk(r.Context(), chi.URLParam(r, "deskID"), patch)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDeskResponse(desk))
}

func (s *Server) handleDeleteDesk(w http.ResponseWriter, r *http.Request) {
	if err := s.desks.DeleteDesk(r.Context(), chi.URLParam(r, "deskID")); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
