// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/multitechword/taskhub"
)

// DatabaseTaskStore is a GORM-backed implementation of TaskStore.
type DatabaseTaskStore struct {
	db *gorm.DB
}

var _ TaskStore = (*DatabaseTaskStore)(nil)

// NewDatabaseTaskStore creates a new DatabaseTaskStore.
func NewDatabaseTaskStore(db *gorm.DB) *DatabaseTaskStore {
	return &DatabaseTaskStore{db: db}
}

// Create persists a new task.
func (s *DatabaseTaskStore) Create(ctx context.Context, task *taskhub.Task) error {
	if err := task.Validate(); err != nil {
		return taskhub.NewValidationError("task", err.Error())
	}
	if err := s.db.WithContext(ctx).Create(newTaskModel(task)).Error; err != nil {
		return taskhub.NewStorageError("task create", err)
	}
	return nil
}

// Get returns the task with the given ID.
func (s *DatabaseTaskStore) Get(ctx context.Context, id string) (*taskhub.Task, error) {
	var model taskModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, taskhub.NewNotFoundError("task", id)
		}
		return nil, taskhub.NewStorageError("task get", err)
	}
	return model.toTask(), nil
}

// Update rewrites the whole task record in one atomic save. Concurrent
// updates of the same record resolve last-write-wins.
func (s *DatabaseTaskStore) Update(ctx context.Context, task *taskhub.Task) error {
	if err := task.Validate(); err != nil {
		return taskhub.NewValidationError("task", err.Error())
	}
	if err := s.db.WithContext(ctx).Save(newTaskModel(task)).Error; err != nil {
		return taskhub.NewStorageError("task update", err)
	}
	return nil
}

// Delete removes the task record.
func (s *DatabaseTaskStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&taskModel{})
	if result.Error != nil {
		return taskhub.NewStorageError("task delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return taskhub.NewNotFoundError("task", id)
	}
	return nil
}

// ListAll returns every task, newest first by assignment time.
func (s *DatabaseTaskStore) ListAll(ctx context.Context) ([]*taskhub.Task, error) {
	var models []taskModel
	if err := s.db.WithContext(ctx).
		Order("assigned_date DESC").
		Find(&models).Error; err != nil {
		return nil, taskhub.NewStorageError("task list", err)
	}
	return toTasks(models), nil
}

// ListAssignedTo returns the tasks assigned to one identity, newest first.
func (s *DatabaseTaskStore) ListAssignedTo(ctx context.Context, identityID string) ([]*taskhub.Task, error) {
	var models []taskModel
	if err := s.db.WithContext(ctx).
		Where("assigned_to = ?", identityID).
		Order("assigned_date DESC").
		Find(&models).Error; err != nil {
		return nil, taskhub.NewStorageError("task list", err)
	}
	return toTasks(models), nil
}

// DeleteByAssignee removes every task assigned to the identity and returns
// the removed tasks so their file references can be released.
func (s *DatabaseTaskStore) DeleteByAssignee(ctx context.Context, identityID string) ([]*taskhub.Task, error) {
	var models []taskModel
	if err := s.db.WithContext(ctx).
		Where("assigned_to = ?", identityID).
		Find(&models).Error; err != nil {
		return nil, taskhub.NewStorageError("task cascade delete", err)
	}

	if err := s.db.WithContext(ctx).
		Where("assigned_to = ?", identityID).
		Delete(&taskModel{}).Error; err != nil {
		return nil, taskhub.NewStorageError("task cascade delete", err)
	}

	return toTasks(models), nil
}

// Count returns the total number of tasks.
func (s *DatabaseTaskStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&taskModel{}).Count(&count).Error; err != nil {
		return 0, taskhub.NewStorageError("task count", err)
	}
	return count, nil
}

// CountByStatus returns the number of tasks in the given state.
func (s *DatabaseTaskStore) CountByStatus(ctx context.Context, status taskhub.TaskState) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&taskModel{}).
		Where("status = ?", string(status)).
		Count(&count).Error; err != nil {
		return 0, taskhub.NewStorageError("task count", err)
	}
	return count, nil
}

func toTasks(models []taskModel) []*taskhub.Task {
	tasks := make([]*taskhub.Task, len(models))
	for i := range models {
		tasks[i] = models[i].toTask()
	}
	return tasks
}
