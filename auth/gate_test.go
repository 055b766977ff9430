// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/multitechword/taskhub"
)

// memResolver is an in-memory IdentityResolver for tests.
type memResolver struct {
	byID    map[string]*taskhub.Identity
	byEmail map[string]*taskhub.Identity
}

func newMemResolver(identities ...*taskhub.Identity) *memResolver {
	r := &memResolver{
		byID:    make(map[string]*taskhub.Identity),
		byEmail: make(map[string]*taskhub.Identity),
	}
	for _, identity := range identities {
		r.byID[identity.ID] = identity
		r.byEmail[identity.Email] = identity
	}
	return r
}

func (r *memResolver) GetByID(ctx context.Context, id string) (*taskhub.Identity, error) {
	identity, ok := r.byID[id]
	if !ok {
		return nil, taskhub.NewNotFoundError("identity", id)
	}
	return identity, nil
}

func (r *memResolver) GetByEmail(ctx context.Context, email string) (*taskhub.Identity, error) {
	identity, ok := r.byEmail[email]
	if !ok {
		return nil, taskhub.NewNotFoundError("identity", email)
	}
	return identity, nil
}

func newTestIdentity(t *testing.T, password string) *taskhub.Identity {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	return &taskhub.Identity{
		ID:           "worker-1",
		Name:         "Alice",
		Email:        "alice@example.com",
		Role:         taskhub.RoleWorker,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
}

func TestGate_LoginAuthenticateRoundTrip(t *testing.T) {
	t.Parallel()

	identity := newTestIdentity(t, "secret123")
	gate := NewGate(newMemResolver(identity), []byte("test-secret"))

	loggedIn, token, err := gate.Login(context.Background(), "Alice@Example.com", "secret123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if loggedIn.ID != identity.ID {
		t.Errorf("Login returned identity %s, want %s", loggedIn.ID, identity.ID)
	}
	if token == "" {
		t.Fatal("Login returned empty token")
	}

	resolved, err := gate.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if resolved.ID != identity.ID {
		t.Errorf("Authenticate resolved %s, want %s", resolved.ID, identity.ID)
	}
}

func TestGate_LoginFailures(t *testing.T) {
	t.Parallel()

	identity := newTestIdentity(t, "secret123")
	gate := NewGate(newMemResolver(identity), []byte("test-secret"))

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "alice@example.com", "wrong"},
		{"unknown email", "bob@example.com", "secret123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := gate.Login(context.Background(), tt.email, tt.password)
			var authn *taskhub.AuthenticationError
			if !errors.As(err, &authn) {
				t.Fatalf("Login error = %v, want AuthenticationError", err)
			}
			// Both failure modes report the same reason.
			if authn.Reason != "invalid credentials" {
				t.Errorf("reason = %q, want %q", authn.Reason, "invalid credentials")
			}
		})
	}
}

func TestGate_AuthenticateRejects(t *testing.T) {
	t.Parallel()

	identity := newTestIdentity(t, "secret123")
	gate := NewGate(newMemResolver(identity), []byte("test-secret"))

	_, goodToken, err := gate.Login(context.Background(), identity.Email, "secret123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	otherGate := NewGate(newMemResolver(identity), []byte("other-secret"))

	tests := []struct {
		name  string
		gate  *Gate
		token string
	}{
		{"empty token", gate, ""},
		{"garbage token", gate, "not-a-jwt"},
		{"wrong signing key", otherGate, goodToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.gate.Authenticate(context.Background(), tt.token)
			var authn *taskhub.AuthenticationError
			if !errors.As(err, &authn) {
				t.Errorf("Authenticate error = %v, want AuthenticationError", err)
			}
		})
	}
}

func TestGate_AuthenticateExpiredToken(t *testing.T) {
	t.Parallel()

	identity := newTestIdentity(t, "secret123")
	secret := []byte("test-secret")
	gate := NewGate(newMemResolver(identity), secret)

	// Mint a token that expired an hour ago, signed with the gate's secret.
	now := time.Now()
	token, err := jwt.NewBuilder().
		Subject(identity.ID).
		IssuedAt(now.Add(-2 * time.Hour)).
		Expiration(now.Add(-time.Hour)).
		Build()
	if err != nil {
		t.Fatalf("Failed to build token: %v", err)
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), secret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	_, err = gate.Authenticate(context.Background(), string(signed))
	var authn *taskhub.AuthenticationError
	if !errors.As(err, &authn) {
		t.Errorf("Authenticate error = %v, want AuthenticationError for expired token", err)
	}
}

func TestGate_AuthenticateDeletedIdentity(t *testing.T) {
	t.Parallel()

	identity := newTestIdentity(t, "secret123")
	resolver := newMemResolver(identity)
	gate := NewGate(resolver, []byte("test-secret"))

	_, token, err := gate.Login(context.Background(), identity.Email, "secret123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// A token outliving its identity no longer authenticates.
	delete(resolver.byID, identity.ID)

	_, err = gate.Authenticate(context.Background(), token)
	var authn *taskhub.AuthenticationError
	if !errors.As(err, &authn) {
		t.Errorf("Authenticate error = %v, want AuthenticationError for deleted identity", err)
	}
}

func TestGate_RequireRole(t *testing.T) {
	t.Parallel()

	gate := NewGate(newMemResolver(), []byte("test-secret"))

	admin := &taskhub.Identity{ID: "admin-1", Role: taskhub.RoleAdministrator}
	worker := &taskhub.Identity{ID: "worker-1", Role: taskhub.RoleWorker}

	if err := gate.RequireRole(admin, taskhub.RoleAdministrator); err != nil {
		t.Errorf("RequireRole(admin, Administrator) = %v, want nil", err)
	}

	err := gate.RequireRole(worker, taskhub.RoleAdministrator)
	var authz *taskhub.AuthorizationError
	if !errors.As(err, &authz) {
		t.Errorf("RequireRole(worker, Administrator) = %v, want AuthorizationError", err)
	}

	if err := gate.RequireRole(nil, taskhub.RoleWorker); !errors.As(err, &authz) {
		t.Errorf("RequireRole(nil) = %v, want AuthorizationError", err)
	}
}
