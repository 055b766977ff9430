// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/multitechword/taskhub"
)

// DatabaseIdentityStore is a GORM-backed implementation of IdentityStore.
type DatabaseIdentityStore struct {
	db *gorm.DB
}

var _ IdentityStore = (*DatabaseIdentityStore)(nil)

// NewDatabaseIdentityStore creates a new DatabaseIdentityStore.
func NewDatabaseIdentityStore(db *gorm.DB) *DatabaseIdentityStore {
	return &DatabaseIdentityStore{db: db}
}

// Create persists a new identity. A duplicate email fails with
// ValidationError.
func (s *DatabaseIdentityStore) Create(ctx context.Context, identity *taskhub.Identity) error {
	if err := identity.Validate(); err != nil {
		return taskhub.NewValidationError("identity", err.Error())
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&identityModel{}).
		Where("email = ?", identity.Email).Count(&count).Error; err != nil {
		return taskhub.NewStorageError("identity create", err)
	}
	if count > 0 {
		return taskhub.NewValidationError("email", "already registered")
	}

	if err := s.db.WithContext(ctx).Create(newIdentityModel(identity)).Error; err != nil {
		return taskhub.NewStorageError("identity create", err)
	}
	return nil
}

// GetByID returns the identity with the given ID.
func (s *DatabaseIdentityStore) GetByID(ctx context.Context, id string) (*taskhub.Identity, error) {
	var model identityModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, taskhub.NewNotFoundError("identity", id)
		}
		return nil, taskhub.NewStorageError("identity get", err)
	}
	return model.toIdentity(), nil
}

// GetByEmail returns the identity with the given normalized email.
func (s *DatabaseIdentityStore) GetByEmail(ctx context.Context, email string) (*taskhub.Identity, error) {
	var model identityModel
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, taskhub.NewNotFoundError("identity", email)
		}
		return nil, taskhub.NewStorageError("identity get", err)
	}
	return model.toIdentity(), nil
}

// ListWorkers returns all Worker identities, newest first.
func (s *DatabaseIdentityStore) ListWorkers(ctx context.Context) ([]*taskhub.Identity, error) {
	var models []identityModel
	if err := s.db.WithContext(ctx).
		Where("role = ?", string(taskhub.RoleWorker)).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, taskhub.NewStorageError("identity list", err)
	}

	identities := make([]*taskhub.Identity, len(models))
	for i := range models {
		identities[i] = models[i].toIdentity()
	}
	return identities, nil
}

// Delete removes the identity record.
func (s *DatabaseIdentityStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&identityModel{})
	if result.Error != nil {
		return taskhub.NewStorageError("identity delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return taskhub.NewNotFoundError("identity", id)
	}
	return nil
}

// CountWorkers returns the number of Worker identities.
func (s *DatabaseIdentityStore) CountWorkers(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&identityModel{}).
		Where("role = ?", string(taskhub.RoleWorker)).
		Count(&count).Error; err != nil {
		return 0, taskhub.NewStorageError("identity count", err)
	}
	return count, nil
}
