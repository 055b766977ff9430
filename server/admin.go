// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/multitechword/taskhub"
	"github.com/multitechword/taskhub/auth"
)

// Stats summarizes the system for the administrator dashboard.
type Stats struct {
	TotalEmployees int64 `json:"totalEmployees"`
	TotalTasks     int64 `json:"totalTasks"`
	CompletedTasks int64 `json:"completedTasks"`
	PendingTasks   int64 `json:"pendingTasks"`
	TotalMessages  int64 `json:"totalMessages"`
}

// ListEmployees returns all Worker identities, newest first. Administrator
// only.
func (c *Coordinator) ListEmployees(ctx context.Context, caller *taskhub.Identity) ([]*taskhub.Identity, error) {
	if err := c.gate.RequireRole(caller, taskhub.RoleAdministrator); err != nil {
		return nil, err
	}
	return c.identities.ListWorkers(ctx)
}

// GetStats returns entity counts for the administrator dashboard.
func (c *Coordinator) GetStats(ctx context.Context, caller *taskhub.Identity) (*Stats, error) {
	if err := c.gate.RequireRole(caller, taskhub.RoleAdministrator); err != nil {
		return nil, err
	}

	stats := &Stats{}
	var err error
	if stats.TotalEmployees, err = c.identities.CountWorkers(ctx); err != nil {
		return nil, err
	}
	if stats.TotalTasks, err = c.tasks.Count(ctx); err != nil {
		return nil, err
	}
	if stats.CompletedTasks, err = c.tasks.CountByStatus(ctx, taskhub.TaskStateCompleted); err != nil {
		return nil, err
	}
	if stats.PendingTasks, err = c.tasks.CountByStatus(ctx, taskhub.TaskStatePending); err != nil {
		return nil, err
	}
	if stats.TotalMessages, err = c.messages.Count(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}

// CreateEmployee registers a new identity. Administrator only. The role
// defaults to Worker when unset; a duplicate email fails with
// ValidationError.
func (c *Coordinator) CreateEmployee(ctx context.Context, caller *taskhub.Identity, name, email, password string, role taskhub.Role) (*taskhub.Identity, error) {
	if err := c.gate.RequireRole(caller, taskhub.RoleAdministrator); err != nil {
		return nil, err
	}
	if role == "" {
		role = taskhub.RoleWorker
	}
	if err := role.Validate(); err != nil {
		return nil, taskhub.NewValidationError("role", err.Error())
	}
	if len(password) < 6 {
		return nil, taskhub.NewValidationError("password", "must be at least 6 characters")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	identity := &taskhub.Identity{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        taskhub.NormalizeEmail(email),
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    c.now(),
	}
	if err := c.identities.Create(ctx, identity); err != nil {
		return nil, err
	}

	c.logger.Info("identity created",
		zap.String("identity", identity.ID),
		zap.String("role", string(identity.Role)),
	)
	return identity, nil
}

// DeleteEmployee removes an identity together with its tasks and messages.
// Administrator only; refuses to delete another Administrator. The cascade
// runs as separate, non-transactional steps: tasks first, then messages. A
// failure partway through leaves partial state and surfaces a StorageError
// without rolling back the completed steps.
func (c *Coordinator) DeleteEmployee(ctx context.Context, caller *taskhub.Identity, identityID string) error {
	if err := c.gate.RequireRole(caller, taskhub.RoleAdministrator); err != nil {
		return err
	}

	target, err := c.identities.GetByID(ctx, identityID)
	if err != nil {
		return err
	}
	if target.IsAdministrator() {
		return taskhub.NewAuthorizationError("cannot delete an administrator")
	}

	removed, err := c.tasks.DeleteByAssignee(ctx, identityID)
	if err != nil {
		c.logger.Error("cascade delete failed removing tasks",
			zap.String("identity", identityID),
			zap.Error(err),
		)
		return err
	}
	for _, task := range removed {
		c.storage.Release(task.AllFiles())
	}

	if err := c.messages.DeleteByParticipant(ctx, identityID); err != nil {
		c.logger.Error("cascade delete failed removing messages, tasks already removed",
			zap.String("identity", identityID),
			zap.Error(err),
		)
		return err
	}

	return c.identities.Delete(ctx, identityID)
}
