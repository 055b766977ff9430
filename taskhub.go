// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

// Package taskhub provides the domain types for the taskhub coordination
// service: identities with Administrator/Worker roles, tasks assigned by
// administrators to workers, direct messages between identities, and the
// event kinds delivered over identity-scoped notification channels.
package taskhub

// EventKind identifies a real-time event delivered to a subscribed identity.
type EventKind string

// Event kinds published by the coordinator.
const (
	// EventNewTask is sent to a task's assignee when the task is created.
	EventNewTask EventKind = "newTask"

	// EventTaskUpdated is sent to a task's assigner when its status changes.
	EventTaskUpdated EventKind = "taskUpdated"

	// EventTaskCompleted is sent to a task's assigner when the assignee
	// completes the task.
	EventTaskCompleted EventKind = "taskCompleted"

	// EventNewMessage is sent to a message's receiver when it is created.
	EventNewMessage EventKind = "newMessage"
)

// MaxTaskFiles is the maximum number of files accepted per task operation.
const MaxTaskFiles = 5

// MaxFileSize is the maximum size in bytes of a single uploaded file.
const MaxFileSize = 10 << 20
