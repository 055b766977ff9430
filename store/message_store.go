// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/multitechword/taskhub"
)

// DatabaseMessageStore is a GORM-backed implementation of MessageStore.
type DatabaseMessageStore struct {
	db *gorm.DB
}

var _ MessageStore = (*DatabaseMessageStore)(nil)

// NewDatabaseMessageStore creates a new DatabaseMessageStore.
func NewDatabaseMessageStore(db *gorm.DB) *DatabaseMessageStore {
	return &DatabaseMessageStore{db: db}
}

// Create persists a new message.
func (s *DatabaseMessageStore) Create(ctx context.Context, message *taskhub.Message) error {
	if err := message.Validate(); err != nil {
		return taskhub.NewValidationError("message", err.Error())
	}
	if err := s.db.WithContext(ctx).Create(newMessageModel(message)).Error; err != nil {
		return taskhub.NewStorageError("message create", err)
	}
	return nil
}

// Get returns the message with the given ID.
func (s *DatabaseMessageStore) Get(ctx context.Context, id string) (*taskhub.Message, error) {
	var model messageModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, taskhub.NewNotFoundError("message", id)
		}
		return nil, taskhub.NewStorageError("message get", err)
	}
	return model.toMessage(), nil
}

// Update rewrites the whole message record in one atomic save.
func (s *DatabaseMessageStore) Update(ctx context.Context, message *taskhub.Message) error {
	if err := message.Validate(); err != nil {
		return taskhub.NewValidationError("message", err.Error())
	}
	if err := s.db.WithContext(ctx).Save(newMessageModel(message)).Error; err != nil {
		return taskhub.NewStorageError("message update", err)
	}
	return nil
}

// Delete removes the message record.
func (s *DatabaseMessageStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&messageModel{})
	if result.Error != nil {
		return taskhub.NewStorageError("message delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return taskhub.NewNotFoundError("message", id)
	}
	return nil
}

// Inbox returns the messages the identity sent or received, newest first.
func (s *DatabaseMessageStore) Inbox(ctx context.Context, identityID string) ([]*taskhub.Message, error) {
	var models []messageModel
	if err := s.db.WithContext(ctx).
		Where("sender = ? OR receiver = ?", identityID, identityID).
		Order("sent_date DESC").
		Find(&models).Error; err != nil {
		return nil, taskhub.NewStorageError("message inbox", err)
	}

	messages := make([]*taskhub.Message, len(models))
	for i := range models {
		messages[i] = models[i].toMessage()
	}
	return messages, nil
}

// DeleteByParticipant removes every message the identity sent or received.
func (s *DatabaseMessageStore) DeleteByParticipant(ctx context.Context, identityID string) error {
	if err := s.db.WithContext(ctx).
		Where("sender = ? OR receiver = ?", identityID, identityID).
		Delete(&messageModel{}).Error; err != nil {
		return taskhub.NewStorageError("message cascade delete", err)
	}
	return nil
}

// Count returns the total number of messages.
func (s *DatabaseMessageStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&messageModel{}).Count(&count).Error; err != nil {
		return 0, taskhub.NewStorageError("message count", err)
	}
	return count, nil
}
