// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/multitechword/taskhub"
)

// handleListEmployees returns all Worker identities.
func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	employees, err := s.coordinator.ListEmployees(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, employees)
}

// handleStats returns dashboard entity counts.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	stats, err := s.coordinator.GetStats(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleCreateEmployee registers a new identity.
func (s *Server) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var in struct {
		Name     string       `json:"name"`
		Email    string       `json:"email"`
		Password string       `json:"password"`
		Role     taskhub.Role `json:"role"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	identity, err := s.coordinator.CreateEmployee(r.Context(), caller, in.Name, in.Email, in.Password, in.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, identity)
}

// handleDeleteEmployee removes an identity and cascades its tasks and
// messages.
func (s *Server) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.coordinator.DeleteEmployee(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "employee deleted"})
}
