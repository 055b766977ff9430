// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/multitechword/taskhub"
)

// openTestDB opens a fresh on-disk database under the test's temp dir so
// parallel tests never share state.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	return db
}

func newStoredIdentity(role taskhub.Role, email string) *taskhub.Identity {
	return &taskhub.Identity{
		ID:        uuid.NewString(),
		Name:      "Test " + email,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
}

func newStoredTask(assignedTo, assignedBy string, assignedAt time.Time) *taskhub.Task {
	return &taskhub.Task{
		ID:           uuid.NewString(),
		Title:        "Test task",
		AssignedTo:   assignedTo,
		AssignedBy:   assignedBy,
		Status:       taskhub.TaskStatePending,
		AssignedDate: assignedAt,
	}
}

func TestIdentityStore_CreateAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	identities := NewDatabaseIdentityStore(openTestDB(t))

	identity := newStoredIdentity(taskhub.RoleWorker, "alice@example.com")
	identity.PasswordHash = "$2a$10$fakehash"
	if err := identities.Create(ctx, identity); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	byID, err := identities.GetByID(ctx, identity.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if byID.Email != identity.Email || byID.PasswordHash != identity.PasswordHash {
		t.Errorf("GetByID returned %+v, want %+v", byID, identity)
	}

	byEmail, err := identities.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if byEmail.ID != identity.ID {
		t.Errorf("GetByEmail returned ID %s, want %s", byEmail.ID, identity.ID)
	}
}

func TestIdentityStore_DuplicateEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	identities := NewDatabaseIdentityStore(openTestDB(t))

	if err := identities.Create(ctx, newStoredIdentity(taskhub.RoleWorker, "dup@example.com")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err := identities.Create(ctx, newStoredIdentity(taskhub.RoleWorker, "dup@example.com"))
	var invalid *taskhub.ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("duplicate Create error = %v, want ValidationError", err)
	}
	if invalid.Field != "email" {
		t.Errorf("validation field = %q, want %q", invalid.Field, "email")
	}
}

func TestIdentityStore_GetMissing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	identities := NewDatabaseIdentityStore(openTestDB(t))

	var notFound *taskhub.NotFoundError
	if _, err := identities.GetByID(ctx, "nope"); !errors.As(err, &notFound) {
		t.Errorf("GetByID error = %v, want NotFoundError", err)
	}
	if _, err := identities.GetByEmail(ctx, "nope@example.com"); !errors.As(err, &notFound) {
		t.Errorf("GetByEmail error = %v, want NotFoundError", err)
	}
	if err := identities.Delete(ctx, "nope"); !errors.As(err, &notFound) {
		t.Errorf("Delete error = %v, want NotFoundError", err)
	}
}

func TestIdentityStore_ListAndCountWorkers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	identities := NewDatabaseIdentityStore(openTestDB(t))

	admin := newStoredIdentity(taskhub.RoleAdministrator, "admin@example.com")
	workerA := newStoredIdentity(taskhub.RoleWorker, "a@example.com")
	workerB := newStoredIdentity(taskhub.RoleWorker, "b@example.com")
	workerB.CreatedAt = workerA.CreatedAt.Add(time.Hour)

	for _, identity := range []*taskhub.Identity{admin, workerA, workerB} {
		if err := identities.Create(ctx, identity); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	workers, err := identities.ListWorkers(ctx)
	if err != nil {
		t.Fatalf("ListWorkers failed: %v", err)
	}
	if len(workers) != 2 {
		t.Fatalf("ListWorkers returned %d identities, want 2", len(workers))
	}
	// Newest first, administrators excluded.
	if workers[0].ID != workerB.ID || workers[1].ID != workerA.ID {
		t.Errorf("ListWorkers order = [%s %s], want [%s %s]",
			workers[0].ID, workers[1].ID, workerB.ID, workerA.ID)
	}

	count, err := identities.CountWorkers(ctx)
	if err != nil {
		t.Fatalf("CountWorkers failed: %v", err)
	}
	if count != 2 {
		t.Errorf("CountWorkers = %d, want 2", count)
	}
}

func TestTaskStore_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tasks := NewDatabaseTaskStore(openTestDB(t))

	task := newStoredTask("worker-1", "admin-1", time.Now().UTC())
	task.Files = []taskhub.FileRef{{Filename: "spec.doc", Path: "/uploads/x_spec.doc", UploadDate: time.Now().UTC()}}
	if err := tasks.Create(ctx, task); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := tasks.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != task.Title || got.AssignedTo != task.AssignedTo {
		t.Errorf("Get returned %+v, want %+v", got, task)
	}
	if len(got.Files) != 1 || got.Files[0].Filename != "spec.doc" {
		t.Errorf("file refs did not survive the round trip: %+v", got.Files)
	}

	// Update persists status and completion timestamp.
	if err := got.SetStatus(taskhub.TaskStateCompleted, time.Now().UTC()); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if err := tasks.Update(ctx, got); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	updated, err := tasks.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("Get after update failed: %v", err)
	}
	if updated.Status != taskhub.TaskStateCompleted {
		t.Errorf("status = %s, want %s", updated.Status, taskhub.TaskStateCompleted)
	}
	if updated.CompletedAt == nil {
		t.Error("CompletedAt not persisted")
	}

	if err := tasks.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	var notFound *taskhub.NotFoundError
	if _, err := tasks.Get(ctx, task.ID); !errors.As(err, &notFound) {
		t.Errorf("Get after delete error = %v, want NotFoundError", err)
	}
}

func TestTaskStore_ListScoping(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tasks := NewDatabaseTaskStore(openTestDB(t))

	base := time.Now().UTC()
	older := newStoredTask("worker-1", "admin-1", base)
	newer := newStoredTask("worker-1", "admin-1", base.Add(time.Hour))
	other := newStoredTask("worker-2", "admin-1", base.Add(2*time.Hour))

	for _, task := range []*taskhub.Task{older, newer, other} {
		if err := tasks.Create(ctx, task); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	all, err := tasks.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListAll returned %d tasks, want 3", len(all))
	}
	if all[0].ID != other.ID {
		t.Errorf("ListAll[0] = %s, want newest %s", all[0].ID, other.ID)
	}

	mine, err := tasks.ListAssignedTo(ctx, "worker-1")
	if err != nil {
		t.Fatalf("ListAssignedTo failed: %v", err)
	}
	wantIDs := []string{newer.ID, older.ID}
	gotIDs := make([]string, len(mine))
	for i, task := range mine {
		gotIDs[i] = task.ID
	}
	if diff := cmp.Diff(wantIDs, gotIDs); diff != "" {
		t.Errorf("ListAssignedTo mismatch (-want +got):\n%s", diff)
	}
}

func TestTaskStore_DeleteByAssignee(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tasks := NewDatabaseTaskStore(openTestDB(t))

	now := time.Now().UTC()
	mine := newStoredTask("worker-1", "admin-1", now)
	mine.Files = []taskhub.FileRef{{Filename: "a.txt", Path: "/uploads/a.txt"}}
	keep := newStoredTask("worker-2", "admin-1", now)

	for _, task := range []*taskhub.Task{mine, keep} {
		if err := tasks.Create(ctx, task); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	removed, err := tasks.DeleteByAssignee(ctx, "worker-1")
	if err != nil {
		t.Fatalf("DeleteByAssignee failed: %v", err)
	}
	if len(removed) != 1 || removed[0].ID != mine.ID {
		t.Fatalf("DeleteByAssignee removed %d tasks, want exactly worker-1's", len(removed))
	}
	// Removed tasks carry their file refs for release.
	if len(removed[0].Files) != 1 {
		t.Errorf("removed task lost its file refs: %+v", removed[0].Files)
	}

	if _, err := tasks.Get(ctx, keep.ID); err != nil {
		t.Errorf("unrelated task was deleted: %v", err)
	}
}

func TestTaskStore_Counts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tasks := NewDatabaseTaskStore(openTestDB(t))

	now := time.Now().UTC()
	completed := newStoredTask("worker-1", "admin-1", now)
	if err := completed.SetStatus(taskhub.TaskStateCompleted, now); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	pending := newStoredTask("worker-1", "admin-1", now)

	for _, task := range []*taskhub.Task{completed, pending} {
		if err := tasks.Create(ctx, task); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	total, err := tasks.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if total != 2 {
		t.Errorf("Count = %d, want 2", total)
	}

	done, err := tasks.CountByStatus(ctx, taskhub.TaskStateCompleted)
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}
	if done != 1 {
		t.Errorf("CountByStatus(completed) = %d, want 1", done)
	}
}

func TestMessageStore_InboxAndDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	messages := NewDatabaseMessageStore(openTestDB(t))

	base := time.Now().UTC()
	sent := &taskhub.Message{ID: uuid.NewString(), Sender: "worker-1", Receiver: "admin-1", Subject: "question", SentDate: base}
	received := &taskhub.Message{ID: uuid.NewString(), Sender: "admin-1", Receiver: "worker-1", Subject: "answer", SentDate: base.Add(time.Minute)}
	unrelated := &taskhub.Message{ID: uuid.NewString(), Sender: "admin-1", Receiver: "worker-2", Subject: "other", SentDate: base}

	for _, msg := range []*taskhub.Message{sent, received, unrelated} {
		if err := messages.Create(ctx, msg); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	// The inbox holds both directions, newest first.
	inbox, err := messages.Inbox(ctx, "worker-1")
	if err != nil {
		t.Fatalf("Inbox failed: %v", err)
	}
	if len(inbox) != 2 {
		t.Fatalf("Inbox returned %d messages, want 2", len(inbox))
	}
	if inbox[0].ID != received.ID || inbox[1].ID != sent.ID {
		t.Errorf("Inbox order = [%s %s], want [%s %s]",
			inbox[0].ID, inbox[1].ID, received.ID, sent.ID)
	}

	// Marking read persists.
	received.Read = true
	if err := messages.Update(ctx, received); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err := messages.Get(ctx, received.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.Read {
		t.Error("read flag not persisted")
	}

	if err := messages.DeleteByParticipant(ctx, "worker-1"); err != nil {
		t.Fatalf("DeleteByParticipant failed: %v", err)
	}
	count, err := messages.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Count after cascade = %d, want 1 (unrelated message kept)", count)
	}
}
