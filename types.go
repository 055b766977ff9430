// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

package taskhub

import (
	"fmt"
	"strings"
	"time"
)

// Role is the authorization role held by an identity. The role is fixed for
// the lifetime of a session; every capability check reduces to a comparison
// against one of the two values below.
type Role string

// Valid roles.
const (
	RoleAdministrator Role = "Administrator"
	RoleWorker        Role = "Worker"
)

// Validate ensures the role is one of the known values.
func (r Role) Validate() error {
	switch r {
	case RoleAdministrator, RoleWorker:
		return nil
	default:
		return fmt.Errorf("unknown role: %q", r)
	}
}

// Identity represents an authenticated actor in the system.
// The password hash is owned by the identity-authentication layer and is
// never serialized into API responses.
type Identity struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Validate ensures the identity is well formed.
func (i *Identity) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("identity ID cannot be empty")
	}
	if i.Name == "" {
		return fmt.Errorf("identity name cannot be empty")
	}
	if i.Email == "" {
		return fmt.Errorf("identity email cannot be empty")
	}
	return i.Role.Validate()
}

// IsAdministrator reports whether the identity holds the Administrator role.
func (i *Identity) IsAdministrator() bool {
	return i.Role == RoleAdministrator
}

// Ref returns the public reference form of the identity, used when entity
// payloads expand identity IDs into name/email/role.
func (i *Identity) Ref() IdentityRef {
	return IdentityRef{
		ID:    i.ID,
		Name:  i.Name,
		Email: i.Email,
		Role:  i.Role,
	}
}

// IdentityRef is the resolved, public view of an identity embedded in task
// and message event payloads.
type IdentityRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// NormalizeEmail lowercases and trims an email address the way the identity
// store expects it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FileRef is an opaque handle to externally stored file content. The core
// never interprets the path beyond passing it to the file storage layer.
type FileRef struct {
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	UploadDate time.Time `json:"uploadDate"`
}
