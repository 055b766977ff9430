// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"

	"github.com/go-json-experiment/json"

	"github.com/multitechword/taskhub"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.MarshalWrite(w, v)
}

// writeError maps an error to its taxonomy status code and writes the
// standard error body.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, taskhub.HTTPStatus(err), map[string]string{
		"message": err.Error(),
	})
}

// decodeJSON reads a JSON request body into out.
func decodeJSON(r *http.Request, out any) error {
	if err := json.UnmarshalRead(r.Body, out); err != nil {
		return taskhub.NewValidationError("body", "invalid JSON")
	}
	return nil
}
