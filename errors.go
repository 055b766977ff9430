// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

package taskhub

import (
	"errors"
	"fmt"
	"net/http"
)

// AuthenticationError indicates a missing, malformed, or unresolvable
// credential.
type AuthenticationError struct {
	Reason string
}

// Error returns the error message.
func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

// AuthorizationError indicates a role or ownership mismatch for an otherwise
// authenticated caller.
type AuthorizationError struct {
	Reason string
}

// Error returns the error message.
func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("not authorized: %s", e.Reason)
}

// NotFoundError indicates a referenced entity does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

// Error returns the error message.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ValidationError indicates malformed input, including references that do not
// resolve to an existing entity.
type ValidationError struct {
	Field  string
	Reason string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StorageError indicates a failure in the underlying persistence layer,
// including partial cascade-delete failures.
type StorageError struct {
	Op  string
	Err error
}

// Error returns the error message.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewAuthenticationError creates a new AuthenticationError.
func NewAuthenticationError(reason string) *AuthenticationError {
	return &AuthenticationError{Reason: reason}
}

// NewAuthorizationError creates a new AuthorizationError.
func NewAuthorizationError(reason string) *AuthorizationError {
	return &AuthorizationError{Reason: reason}
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NewStorageError creates a new StorageError.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// HTTPStatus maps an error to the HTTP status code of its taxonomy class.
// Unclassified errors map to 500.
func HTTPStatus(err error) int {
	var (
		authn    *AuthenticationError
		authz    *AuthorizationError
		notFound *NotFoundError
		invalid  *ValidationError
	)
	switch {
	case errors.As(err, &authn):
		return http.StatusUnauthorized
	case errors.As(err, &authz):
		return http.StatusForbidden
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
