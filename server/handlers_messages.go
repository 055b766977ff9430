// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleSendMessage creates a message to another identity.
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var in struct {
		Receiver string `json:"receiver"`
		Subject  string `json:"subject"`
		Content  string `json:"content"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	view, err := s.coordinator.SendMessage(r.Context(), caller, in.Receiver, in.Subject, in.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// handleInbox returns the caller's sent and received messages.
func (s *Server) handleInbox(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	views, err := s.coordinator.Inbox(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// handleMarkRead flips a message's read flag.
func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := s.coordinator.MarkMessageRead(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleDeleteMessage removes a message.
func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.coordinator.DeleteMessage(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "message deleted"})
}
