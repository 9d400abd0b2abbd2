package web

import (
	"net/http"
)

// handleRegister creates an account. The route is admin-only.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
		IsAdmin  bool   `json:"is_admin"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	account, err := s.service.RegisterUser(r.Context(), in.Username, in.Password, in.IsAdmin)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

// handleMe returns the account behind the bearer token.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	account, err := s.service.CurrentAccount(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}
