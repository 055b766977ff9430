// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/multitechword/taskhub/files"
)

// Server exposes the coordinator over REST plus WebSocket and SSE realtime
// channels.
type Server struct {
	coordinator *Coordinator
	storage     *files.Storage
	logger      *zap.Logger
}

// New creates a server around an assembled coordinator.
func New(coordinator *Coordinator, storage *files.Storage, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		coordinator: coordinator,
		storage:     storage,
		logger:      logger,
	}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverPanics)
	r.Use(s.logRequests)

	r.Get("/", s.handleRoot)
	r.Post("/api/auth/login", s.handleLogin)

	// Uploaded task files, served statically.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(s.storage.Dir()))))

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Route("/api/admin", func(r chi.Router) {
			r.Get("/employees", s.handleListEmployees)
			r.Post("/employees", s.handleCreateEmployee)
			r.Delete("/employees/{id}", s.handleDeleteEmployee)
			r.Get("/stats", s.handleStats)
		})

		r.Route("/api/tasks", func(r chi.Router) {
			r.Post("/", s.handleCreateTask)
			r.Get("/", s.handleListTasks)
			r.Patch("/{id}/status", s.handleSetTaskStatus)
			r.Post("/{id}/complete", s.handleCompleteTask)
			r.Delete("/{id}", s.handleDeleteTask)
		})

		r.Route("/api/messages", func(r chi.Router) {
			r.Post("/", s.handleSendMessage)
			r.Get("/", s.handleInbox)
			r.Patch("/{id}/read", s.handleMarkRead)
			r.Delete("/{id}", s.handleDeleteMessage)
		})

		r.Get("/api/events/ws", s.handleWebSocket)
		r.Get("/api/events/sse", s.handleSSE)
	})

	return r
}

// handleRoot is the liveness endpoint.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "taskhub API running"})
}
