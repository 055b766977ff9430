// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

package taskhub

import (
	"fmt"
	"time"
)

// TaskState represents the lifecycle state of a task.
type TaskState string

// Valid task states.
const (
	TaskStatePending    TaskState = "pending"
	TaskStateInProgress TaskState = "in-progress"
	TaskStateCompleted  TaskState = "completed"
)

// Validate ensures the state is one of the known values.
func (s TaskState) Validate() error {
	switch s {
	case TaskStatePending, TaskStateInProgress, TaskStateCompleted:
		return nil
	default:
		return fmt.Errorf("unknown task state: %q", s)
	}
}

// rank orders states for the optional strict-transition check.
func (s TaskState) rank() int {
	switch s {
	case TaskStatePending:
		return 0
	case TaskStateInProgress:
		return 1
	case TaskStateCompleted:
		return 2
	default:
		return -1
	}
}

// Task is a unit of work assigned by an administrator to a worker.
type Task struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	AssignedTo      string    `json:"assignedTo"`
	AssignedBy      string    `json:"assignedBy"`
	Status          TaskState `json:"status"`
	Files           []FileRef `json:"files"`
	CompletionFiles []FileRef `json:"completionFiles"`
	AssignedDate    time.Time `json:"assignedDate"`
	CompletedAt     *time.Time `json:"completedAt,omitzero"`
}

// Validate ensures the task is well formed and that the completion timestamp
// matches its status: CompletedAt is set if and only if the task is completed.
func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}
	if t.Title == "" {
		return fmt.Errorf("task title cannot be empty")
	}
	if t.AssignedTo == "" {
		return fmt.Errorf("task assignee cannot be empty")
	}
	if t.AssignedBy == "" {
		return fmt.Errorf("task assigner cannot be empty")
	}
	if err := t.Status.Validate(); err != nil {
		return err
	}
	if t.Status == TaskStateCompleted && t.CompletedAt == nil {
		return fmt.Errorf("completed task %s has no completion timestamp", t.ID)
	}
	if t.Status != TaskStateCompleted && t.CompletedAt != nil {
		return fmt.Errorf("task %s has completion timestamp in state %s", t.ID, t.Status)
	}
	return nil
}

// SetStatus moves the task to the given state, keeping the CompletedAt
// invariant: entering completed stamps the timestamp, leaving it clears it.
// Transition order is deliberately unrestricted; callers wanting ordering
// guarantees check CanTransition first.
func (t *Task) SetStatus(status TaskState, now time.Time) error {
	if err := status.Validate(); err != nil {
		return err
	}
	t.Status = status
	if status == TaskStateCompleted {
		stamped := now
		t.CompletedAt = &stamped
	} else {
		t.CompletedAt = nil
	}
	return nil
}

// CanTransition reports whether moving to the given state is a forward move.
// Only consulted when strict transition checking is enabled.
func (t *Task) CanTransition(status TaskState) bool {
	if status.Validate() != nil {
		return false
	}
	return status.rank() >= t.Status.rank()
}

// Complete forces the task into the completed state, appending the given
// completion files and stamping the completion time regardless of the prior
// state.
func (t *Task) Complete(files []FileRef, now time.Time) {
	t.CompletionFiles = append(t.CompletionFiles, files...)
	t.Status = TaskStateCompleted
	stamped := now
	t.CompletedAt = &stamped
}

// AllFiles returns every file reference held by the task, attachment and
// completion files alike. Used when a deleted task releases its storage.
func (t *Task) AllFiles() []FileRef {
	refs := make([]FileRef, 0, len(t.Files)+len(t.CompletionFiles))
	refs = append(refs, t.Files...)
	refs = append(refs, t.CompletionFiles...)
	return refs
}

// TaskView is a task with its identity references expanded. It is the payload
// shape delivered on the notification channel and returned by the REST API.
type TaskView struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	AssignedTo      IdentityRef `json:"assignedTo"`
	AssignedBy      IdentityRef `json:"assignedBy"`
	Status          TaskState   `json:"status"`
	Files           []FileRef   `json:"files"`
	CompletionFiles []FileRef   `json:"completionFiles"`
	AssignedDate    time.Time   `json:"assignedDate"`
	CompletedAt     *time.Time  `json:"completedAt,omitzero"`
}

// NewTaskView resolves a task against the identities it references.
func NewTaskView(t *Task, assignee, assigner IdentityRef) TaskView {
	return TaskView{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		AssignedTo:      assignee,
		AssignedBy:      assigner,
		Status:          t.Status,
		Files:           t.Files,
		CompletionFiles: t.CompletionFiles,
		AssignedDate:    t.AssignedDate,
		CompletedAt:     t.CompletedAt,
	}
}
