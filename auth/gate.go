// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

// Package auth implements the identity gate: it resolves bearer credentials
// to identities and enforces role checks. Credentials are HS256-signed JWTs
// whose subject is the identity ID; password verification is delegated to
// bcrypt.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"golang.org/x/crypto/bcrypt"

	"github.com/multitechword/taskhub"
)

// DefaultTokenTTL is how long a minted credential stays valid.
const DefaultTokenTTL = 30 * 24 * time.Hour

// IdentityResolver looks up identities for credential resolution. It is the
// read-side of the identity store.
type IdentityResolver interface {
	// GetByID returns the identity with the given ID.
	GetByID(ctx context.Context, id string) (*taskhub.Identity, error)

	// GetByEmail returns the identity with the given (normalized) email.
	GetByEmail(ctx context.Context, email string) (*taskhub.Identity, error)
}

// Gate authenticates callers and enforces role requirements. All mutating
// operations consult the gate before touching a store.
type Gate struct {
	resolver IdentityResolver
	secret   []byte
	tokenTTL time.Duration
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithTokenTTL overrides the credential lifetime.
func WithTokenTTL(ttl time.Duration) GateOption {
	return func(g *Gate) {
		if ttl > 0 {
			g.tokenTTL = ttl
		}
	}
}

// NewGate creates a gate that signs and verifies credentials with the given
// secret and resolves subjects through the given resolver.
func NewGate(resolver IdentityResolver, secret []byte, opts ...GateOption) *Gate {
	g := &Gate{
		resolver: resolver,
		secret:   secret,
		tokenTTL: DefaultTokenTTL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Login verifies an email/password pair and mints a bearer credential for the
// matching identity. Unknown emails and wrong passwords both fail with the
// same AuthenticationError so the response does not leak which part was wrong.
func (g *Gate) Login(ctx context.Context, email, password string) (*taskhub.Identity, string, error) {
	identity, err := g.resolver.GetByEmail(ctx, taskhub.NormalizeEmail(email))
	if err != nil {
		var notFound *taskhub.NotFoundError
		if errors.As(err, &notFound) {
			return nil, "", taskhub.NewAuthenticationError("invalid credentials")
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)) != nil {
		return nil, "", taskhub.NewAuthenticationError("invalid credentials")
	}

	token, err := g.mintToken(identity)
	if err != nil {
		return nil, "", err
	}
	return identity, token, nil
}

// Authenticate resolves a raw bearer credential to an identity. It fails with
// AuthenticationError when the credential is missing, malformed, expired, or
// does not resolve to a known identity.
func (g *Gate) Authenticate(ctx context.Context, rawToken string) (*taskhub.Identity, error) {
	if rawToken == "" {
		return nil, taskhub.NewAuthenticationError("missing credential")
	}

	token, err := jwt.Parse([]byte(rawToken),
		jwt.WithKey(jwa.HS256(), g.secret),
		jwt.WithValidate(true),
	)
	if err != nil {
		return nil, taskhub.NewAuthenticationError("invalid credential")
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, taskhub.NewAuthenticationError("credential has no subject")
	}

	identity, err := g.resolver.GetByID(ctx, subject)
	if err != nil {
		var notFound *taskhub.NotFoundError
		if errors.As(err, &notFound) {
			return nil, taskhub.NewAuthenticationError("unknown identity")
		}
		return nil, err
	}
	return identity, nil
}

// RequireRole returns an AuthorizationError unless the identity holds the
// given role.
func (g *Gate) RequireRole(identity *taskhub.Identity, role taskhub.Role) error {
	if identity == nil {
		return taskhub.NewAuthorizationError("no identity")
	}
	if identity.Role != role {
		return taskhub.NewAuthorizationError("requires role " + string(role))
	}
	return nil
}

// mintToken signs a credential whose subject is the identity ID.
func (g *Gate) mintToken(identity *taskhub.Identity) (string, error) {
	now := time.Now()
	token, err := jwt.NewBuilder().
		Subject(identity.ID).
		IssuedAt(now).
		Expiration(now.Add(g.tokenTTL)).
		Claim("role", string(identity.Role)).
		Build()
	if err != nil {
		return "", err
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), g.secret))
	if err != nil {
		return "", err
	}
	return string(signed), nil
}

// HashPassword hashes a plaintext password for storage. Cost matches the
// original deployment's bcrypt configuration.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
