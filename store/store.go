// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

// Package store provides GORM-backed persistence for identities, tasks, and
// messages. Each entity has its own store type; all mutations are
// single-record read-modify-write operations with no cross-entity
// transactions.
package store

import (
	"context"

	"github.com/multitechword/taskhub"
)

// IdentityStore owns Identity entities.
type IdentityStore interface {
	// Create persists a new identity. A duplicate email fails with
	// ValidationError.
	Create(ctx context.Context, identity *taskhub.Identity) error

	// GetByID returns the identity with the given ID.
	GetByID(ctx context.Context, id string) (*taskhub.Identity, error)

	// GetByEmail returns the identity with the given normalized email.
	GetByEmail(ctx context.Context, email string) (*taskhub.Identity, error)

	// ListWorkers returns all Worker identities, newest first.
	ListWorkers(ctx context.Context) ([]*taskhub.Identity, error)

	// Delete removes the identity record.
	Delete(ctx context.Context, id string) error

	// CountWorkers returns the number of Worker identities.
	CountWorkers(ctx context.Context) (int64, error)
}

// TaskStore owns Task entities and their persisted state.
type TaskStore interface {
	// Create persists a new task.
	Create(ctx context.Context, task *taskhub.Task) error

	// Get returns the task with the given ID.
	Get(ctx context.Context, id string) (*taskhub.Task, error)

	// Update rewrites the whole task record in one atomic save.
	Update(ctx context.Context, task *taskhub.Task) error

	// Delete removes the task record.
	Delete(ctx context.Context, id string) error

	// ListAll returns every task, newest first by assignment time.
	ListAll(ctx context.Context) ([]*taskhub.Task, error)

	// ListAssignedTo returns the tasks assigned to one identity, newest first.
	ListAssignedTo(ctx context.Context, identityID string) ([]*taskhub.Task, error)

	// DeleteByAssignee removes every task assigned to the identity and
	// returns the removed tasks so their file references can be released.
	DeleteByAssignee(ctx context.Context, identityID string) ([]*taskhub.Task, error)

	// Count returns the total number of tasks.
	Count(ctx context.Context) (int64, error)

	// CountByStatus returns the number of tasks in the given state.
	CountByStatus(ctx context.Context, status taskhub.TaskState) (int64, error)
}

// MessageStore owns Message entities.
type MessageStore interface {
	// Create persists a new message.
	Create(ctx context.Context, message *taskhub.Message) error

	// Get returns the message with the given ID.
	Get(ctx context.Context, id string) (*taskhub.Message, error)

	// Update rewrites the whole message record in one atomic save.
	Update(ctx context.Context, message *taskhub.Message) error

	// Delete removes the message record.
	Delete(ctx context.Context, id string) error

	// Inbox returns the messages the identity sent or received, newest first.
	Inbox(ctx context.Context, identityID string) ([]*taskhub.Message, error)

	// DeleteByParticipant removes every message the identity sent or received.
	DeleteByParticipant(ctx context.Context, identityID string) error

	// Count returns the total number of messages.
	Count(ctx context.Context) (int64, error)
}
