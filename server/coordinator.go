// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

// Package server glues the identity gate, the entity stores, and the
// notification hub together behind a REST and realtime surface. Every
// mutating operation runs the same sequence: gate check, store mutation,
// event publish to the affected identity.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/multitechword/taskhub"
	"github.com/multitechword/taskhub/auth"
	"github.com/multitechword/taskhub/files"
	"github.com/multitechword/taskhub/hub"
	"github.com/multitechword/taskhub/store"
)

// Coordinator applies authorization, mutates stores, and publishes events.
type Coordinator struct {
	gate       *auth.Gate
	identities store.IdentityStore
	tasks      store.TaskStore
	messages   store.MessageStore
	hub        *hub.Hub
	storage    *files.Storage
	logger     *zap.Logger

	// strict rejects backward task status moves. Off by default; the
	// permissive status contract is deliberate.
	strict bool

	now func() time.Time
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithStrictTransitions enables forward-only task status validation.
func WithStrictTransitions(strict bool) CoordinatorOption {
	return func(c *Coordinator) {
		c.strict = strict
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCoordinator wires the coordinator's collaborators together. The hub is
// an explicit dependency passed by reference; there is no shared global
// notification state.
func NewCoordinator(
	gate *auth.Gate,
	identities store.IdentityStore,
	tasks store.TaskStore,
	messages store.MessageStore,
	h *hub.Hub,
	storage *files.Storage,
	logger *zap.Logger,
	opts ...CoordinatorOption,
) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Coordinator{
		gate:       gate,
		identities: identities,
		tasks:      tasks,
		messages:   messages,
		hub:        h,
		storage:    storage,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Gate returns the identity gate, used by the HTTP middleware.
func (c *Coordinator) Gate() *auth.Gate {
	return c.gate
}

// Hub returns the notification hub, used by the realtime endpoints.
func (c *Coordinator) Hub() *hub.Hub {
	return c.hub
}

// CreateTaskInput carries the fields of a task creation request.
type CreateTaskInput struct {
	Title       string
	Description string
	AssignedTo  string
	Files       []taskhub.FileRef
}

// CreateTask creates a pending task assigned to an existing identity.
// Administrator only. Publishes newTask to the assignee.
func (c *Coordinator) CreateTask(ctx context.Context, caller *taskhub.Identity, in CreateTaskInput) (*taskhub.TaskView, error) {
	if err := c.gate.RequireRole(caller, taskhub.RoleAdministrator); err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, taskhub.NewValidationError("title", "cannot be empty")
	}

	assignee, err := c.identities.GetByID(ctx, in.AssignedTo)
	if err != nil {
		var notFound *taskhub.NotFoundError
		if errors.As(err, &notFound) {
			return nil, taskhub.NewValidationError("assignedTo", "no such identity")
		}
		return nil, err
	}

	task := &taskhub.Task{
		ID:           uuid.NewString(),
		Title:        in.Title,
		Description:  in.Description,
		AssignedTo:   assignee.ID,
		AssignedBy:   caller.ID,
		Status:       taskhub.TaskStatePending,
		Files:        in.Files,
		AssignedDate: c.now(),
	}
	if err := c.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	view := taskhub.NewTaskView(task, assignee.Ref(), caller.Ref())
	c.hub.Publish(assignee.ID, taskhub.EventNewTask, view)
	c.logger.Info("task created",
		zap.String("task", task.ID),
		zap.String("assignedTo", assignee.ID),
	)
	return &view, nil
}

// SetTaskStatus moves a task to any of the known states, in any order unless
// strict transitions are enabled. Allowed for an Administrator or the task's
// assignee. Publishes taskUpdated to the assigner.
func (c *Coordinator) SetTaskStatus(ctx context.Context, caller *taskhub.Identity, taskID string, status taskhub.TaskState) (*taskhub.TaskView, error) {
	task, err := c.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdministrator() && task.AssignedTo != caller.ID {
		return nil, taskhub.NewAuthorizationError("only an administrator or the assignee may update a task")
	}
	if err := status.Validate(); err != nil {
		return nil, taskhub.NewValidationError("status", err.Error())
	}
	if c.strict && !task.CanTransition(status) {
		return nil, taskhub.NewValidationError("status", "backward transition not allowed")
	}

	if err := task.SetStatus(status, c.now()); err != nil {
		return nil, taskhub.NewValidationError("status", err.Error())
	}
	if err := c.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	view := c.resolveTask(ctx, task)
	c.hub.Publish(task.AssignedBy, taskhub.EventTaskUpdated, view)
	return &view, nil
}

// CompleteTask appends completion files, forces the task into the completed
// state regardless of its prior state, and stamps the completion time.
// Assignee only. Publishes taskCompleted to the assigner.
func (c *Coordinator) CompleteTask(ctx context.Context, caller *taskhub.Identity, taskID string, completionFiles []taskhub.FileRef) (*taskhub.TaskView, error) {
	task, err := c.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.AssignedTo != caller.ID {
		return nil, taskhub.NewAuthorizationError("only the assignee may complete a task")
	}

	task.Complete(completionFiles, c.now())
	if err := c.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	view := c.resolveTask(ctx, task)
	c.hub.Publish(task.AssignedBy, taskhub.EventTaskCompleted, view)
	c.logger.Info("task completed",
		zap.String("task", task.ID),
		zap.String("by", caller.ID),
	)
	return &view, nil
}

// DeleteTask removes a task and releases its file references. Administrator
// only. File release is best-effort: a failure is logged, never fatal.
func (c *Coordinator) DeleteTask(ctx context.Context, caller *taskhub.Identity, taskID string) error {
	if err := c.gate.RequireRole(caller, taskhub.RoleAdministrator); err != nil {
		return err
	}

	task, err := c.tasks.Get(ctx, taskID)
	if err != nil {
		return err
	}

	c.storage.Release(task.AllFiles())
	return c.tasks.Delete(ctx, taskID)
}

// ListTasks returns all tasks for an Administrator and only the caller's own
// tasks for a Worker, newest first.
func (c *Coordinator) ListTasks(ctx context.Context, caller *taskhub.Identity) ([]taskhub.TaskView, error) {
	var (
		tasks []*taskhub.Task
		err   error
	)
	if caller.IsAdministrator() {
		tasks, err = c.tasks.ListAll(ctx)
	} else {
		tasks, err = c.tasks.ListAssignedTo(ctx, caller.ID)
	}
	if err != nil {
		return nil, err
	}

	views := make([]taskhub.TaskView, len(tasks))
	for i, task := range tasks {
		views[i] = c.resolveTask(ctx, task)
	}
	return views, nil
}

// SendMessage creates an unread message and publishes newMessage to the
// receiver. Any authenticated identity may send; the receiver must resolve.
func (c *Coordinator) SendMessage(ctx context.Context, caller *taskhub.Identity, receiverID, subject, content string) (*taskhub.MessageView, error) {
	receiver, err := c.identities.GetByID(ctx, receiverID)
	if err != nil {
		var notFound *taskhub.NotFoundError
		if errors.As(err, &notFound) {
			return nil, taskhub.NewValidationError("receiver", "no such identity")
		}
		return nil, err
	}

	message := &taskhub.Message{
		ID:       uuid.NewString(),
		Sender:   caller.ID,
		Receiver: receiver.ID,
		Subject:  subject,
		Content:  content,
		Read:     false,
		SentDate: c.now(),
	}
	if err := c.messages.Create(ctx, message); err != nil {
		return nil, err
	}

	view := taskhub.NewMessageView(message, caller.Ref(), receiver.Ref())
	c.hub.Publish(receiver.ID, taskhub.EventNewMessage, view)
	return &view, nil
}

// MarkMessageRead flips the read flag. Receiver only.
func (c *Coordinator) MarkMessageRead(ctx context.Context, caller *taskhub.Identity, messageID string) (*taskhub.MessageView, error) {
	message, err := c.messages.Get(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.Receiver != caller.ID {
		return nil, taskhub.NewAuthorizationError("only the receiver may mark a message read")
	}

	message.Read = true
	if err := c.messages.Update(ctx, message); err != nil {
		return nil, err
	}

	view := c.resolveMessage(ctx, message)
	return &view, nil
}

// DeleteMessage removes a message. Sender or receiver only.
func (c *Coordinator) DeleteMessage(ctx context.Context, caller *taskhub.Identity, messageID string) error {
	message, err := c.messages.Get(ctx, messageID)
	if err != nil {
		return err
	}
	if !message.Involves(caller.ID) {
		return taskhub.NewAuthorizationError("only the sender or receiver may delete a message")
	}
	return c.messages.Delete(ctx, messageID)
}

// Inbox returns the messages the caller sent or received, newest first.
func (c *Coordinator) Inbox(ctx context.Context, caller *taskhub.Identity) ([]taskhub.MessageView, error) {
	messages, err := c.messages.Inbox(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	views := make([]taskhub.MessageView, len(messages))
	for i, message := range messages {
		views[i] = c.resolveMessage(ctx, message)
	}
	return views, nil
}

// resolveTask expands a task's identity references. A reference to a deleted
// identity degrades to a bare ID instead of failing the whole response.
func (c *Coordinator) resolveTask(ctx context.Context, task *taskhub.Task) taskhub.TaskView {
	return taskhub.NewTaskView(task, c.resolveRef(ctx, task.AssignedTo), c.resolveRef(ctx, task.AssignedBy))
}

// resolveMessage expands a message's identity references.
func (c *Coordinator) resolveMessage(ctx context.Context, message *taskhub.Message) taskhub.MessageView {
	return taskhub.NewMessageView(message, c.resolveRef(ctx, message.Sender), c.resolveRef(ctx, message.Receiver))
}

func (c *Coordinator) resolveRef(ctx context.Context, identityID string) taskhub.IdentityRef {
	identity, err := c.identities.GetByID(ctx, identityID)
	if err != nil {
		return taskhub.IdentityRef{ID: identityID}
	}
	return identity.Ref()
}
