// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"
)

// loginResponse is the body returned by a successful login.
type loginResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

// handleLogin verifies credentials and returns identity info plus a bearer
// token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	identity, token, err := s.coordinator.Gate().Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		ID:    identity.ID,
		Name:  identity.Name,
		Email: identity.Email,
		Role:  string(identity.Role),
		Token: token,
	})
}
