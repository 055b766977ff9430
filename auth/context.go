// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"

	"github.com/multitechword/taskhub"
)

type ctxKey string

const identityContextKey ctxKey = "taskhub.auth.identity"

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, identity *taskhub.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFrom returns the authenticated identity stored in the context, if
// any.
func IdentityFrom(ctx context.Context) (*taskhub.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*taskhub.Identity)
	return identity, ok && identity != nil
}
