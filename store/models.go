// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/multitechword/taskhub"
)

// FileRefsJSON stores an ordered sequence of file references as a single JSON
// column, so an append is persisted with one atomic record save.
type FileRefsJSON []taskhub.FileRef

// Value implements the driver.Valuer interface for database storage.
func (f FileRefsJSON) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal([]taskhub.FileRef(f))
}

// Scan implements the sql.Scanner interface for database retrieval.
func (f *FileRefsJSON) Scan(value any) error {
	if value == nil {
		*f = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into FileRefsJSON", value)
	}

	var refs []taskhub.FileRef
	if err := json.Unmarshal(bytes, &refs); err != nil {
		return fmt.Errorf("cannot unmarshal FileRefsJSON: %w", err)
	}

	*f = refs
	return nil
}

// identityModel is the database representation of an Identity.
type identityModel struct {
	ID           string `gorm:"primaryKey"`
	Name         string
	Email        string `gorm:"uniqueIndex"`
	Role         string `gorm:"index"`
	PasswordHash string
	CreatedAt    time.Time `gorm:"index"`
}

// TableName returns the table name for identityModel.
func (identityModel) TableName() string { return "identities" }

func newIdentityModel(identity *taskhub.Identity) *identityModel {
	return &identityModel{
		ID:           identity.ID,
		Name:         identity.Name,
		Email:        identity.Email,
		Role:         string(identity.Role),
		PasswordHash: identity.PasswordHash,
		CreatedAt:    identity.CreatedAt,
	}
}

func (m *identityModel) toIdentity() *taskhub.Identity {
	return &taskhub.Identity{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		Role:         taskhub.Role(m.Role),
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

// taskModel is the database representation of a Task.
type taskModel struct {
	ID              string `gorm:"primaryKey"`
	Title           string
	Description     string
	AssignedTo      string `gorm:"index"`
	AssignedBy      string `gorm:"index"`
	Status          string `gorm:"index"`
	Files           FileRefsJSON `gorm:"type:text"`
	CompletionFiles FileRefsJSON `gorm:"type:text"`
	AssignedDate    time.Time `gorm:"index"`
	CompletedAt     *time.Time
}

// TableName returns the table name for taskModel.
func (taskModel) TableName() string { return "tasks" }

func newTaskModel(task *taskhub.Task) *taskModel {
	return &taskModel{
		ID:              task.ID,
		Title:           task.Title,
		Description:     task.Description,
		AssignedTo:      task.AssignedTo,
		AssignedBy:      task.AssignedBy,
		Status:          string(task.Status),
		Files:           FileRefsJSON(task.Files),
		CompletionFiles: FileRefsJSON(task.CompletionFiles),
		AssignedDate:    task.AssignedDate,
		CompletedAt:     task.CompletedAt,
	}
}

func (m *taskModel) toTask() *taskhub.Task {
	return &taskhub.Task{
		ID:              m.ID,
		Title:           m.Title,
		Description:     m.Description,
		AssignedTo:      m.AssignedTo,
		AssignedBy:      m.AssignedBy,
		Status:          taskhub.TaskState(m.Status),
		Files:           []taskhub.FileRef(m.Files),
		CompletionFiles: []taskhub.FileRef(m.CompletionFiles),
		AssignedDate:    m.AssignedDate,
		CompletedAt:     m.CompletedAt,
	}
}

// messageModel is the database representation of a Message.
type messageModel struct {
	ID       string `gorm:"primaryKey"`
	Sender   string `gorm:"index"`
	Receiver string `gorm:"index"`
	Subject  string
	Content  string
	Read     bool
	SentDate time.Time `gorm:"index"`
}

// TableName returns the table name for messageModel.
func (messageModel) TableName() string { return "messages" }

func newMessageModel(message *taskhub.Message) *messageModel {
	return &messageModel{
		ID:       message.ID,
		Sender:   message.Sender,
		Receiver: message.Receiver,
		Subject:  message.Subject,
		Content:  message.Content,
		Read:     message.Read,
		SentDate: message.SentDate,
	}
}

func (m *messageModel) toMessage() *taskhub.Message {
	return &taskhub.Message{
		ID:       m.ID,
		Sender:   m.Sender,
		Receiver: m.Receiver,
		Subject:  m.Subject,
		Content:  m.Content,
		Read:     m.Read,
		SentDate: m.SentDate,
	}
}
