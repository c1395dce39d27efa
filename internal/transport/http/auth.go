package http

import "net/http"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	} `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body", "")
		return
	}

	result, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(w, err)
		return
	}

	var resp loginResponse
	resp.Token = result.Token
	resp.User.ID = result.User.ID
	resp.User.Email = result.User.Email
	resp.User.Name = result.User.Name
	resp.User.Role = string(result.User.Role)
	writeJSON(w, http.StatusOK, resp)
}
