// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/multitechword/taskhub"
)

// handleCreateTask creates a task from a multipart form carrying title,
// description, assignedTo, and up to MaxTaskFiles attachments.
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	refs, err := s.saveUploads(r)
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := s.coordinator.CreateTask(r.Context(), caller, CreateTaskInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		AssignedTo:  r.FormValue("assignedTo"),
		Files:       refs,
	})
	if err != nil {
		s.storage.Release(refs)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// handleListTasks returns the caller's task list, scoped by role.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	views, err := s.coordinator.ListTasks(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// handleSetTaskStatus applies a direct status change.
func (s *Server) handleSetTaskStatus(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var in struct {
		Status taskhub.TaskState `json:"status"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	view, err := s.coordinator.SetTaskStatus(r.Context(), caller, chi.URLParam(r, "id"), in.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleCompleteTask uploads completion files and forces the task into the
// completed state.
func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	refs, err := s.saveUploads(r)
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := s.coordinator.CompleteTask(r.Context(), caller, chi.URLParam(r, "id"), refs)
	if err != nil {
		s.storage.Release(refs)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleDeleteTask removes a task and releases its files.
func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.coordinator.DeleteTask(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "task deleted"})
}

// saveUploads stores the multipart "files" field and returns the refs.
// Requests without a multipart body yield no refs.
func (s *Server) saveUploads(r *http.Request) ([]taskhub.FileRef, error) {
	if err := r.ParseMultipartForm(taskhub.MaxFileSize); err != nil {
		if err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, taskhub.NewValidationError("files", "invalid multipart form")
	}
	if r.MultipartForm == nil {
		return nil, nil
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) > taskhub.MaxTaskFiles {
		return nil, taskhub.NewValidationError("files", "too many files")
	}

	var refs []taskhub.FileRef
	for _, header := range headers {
		ref, err := s.saveUpload(header)
		if err != nil {
			s.storage.Release(refs)
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (s *Server) saveUpload(header *multipart.FileHeader) (taskhub.FileRef, error) {
	if header.Size > taskhub.MaxFileSize {
		return taskhub.FileRef{}, taskhub.NewValidationError("files", "file too large")
	}

	f, err := header.Open()
	if err != nil {
		return taskhub.FileRef{}, taskhub.NewValidationError("files", "unreadable upload")
	}
	defer f.Close()

	return s.storage.Save(header.Filename, f)
}
