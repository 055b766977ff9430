// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

package hub

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/multitechword/taskhub"
)

func receiveEvent(t *testing.T, conn *Conn) Event {
	t.Helper()
	select {
	case event, ok := <-conn.Events():
		if !ok {
			t.Fatal("event channel closed")
		}
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestPublish_NoSubscriber(t *testing.T) {
	t.Parallel()

	h := New()

	// No registered connection: publish must be a silent no-op.
	h.Publish("worker-1", taskhub.EventNewTask, "payload")

	if got := h.Size(); got != 0 {
		t.Errorf("Size() = %d, want 0", got)
	}
}

func TestPublish_SingleConnection(t *testing.T) {
	t.Parallel()

	h := New()
	conn := h.Subscribe("worker-1")
	if got := conn.IdentityID(); got != "worker-1" {
		t.Errorf("IdentityID() = %q, want %q", got, "worker-1")
	}

	h.Publish("worker-1", taskhub.EventNewTask, "payload")

	event := receiveEvent(t, conn)
	if event.Kind != taskhub.EventNewTask {
		t.Errorf("event kind = %s, want %s", event.Kind, taskhub.EventNewTask)
	}
	if diff := cmp.Diff("payload", event.Payload); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}

	// Exactly one copy.
	select {
	case extra := <-conn.Events():
		t.Errorf("unexpected extra event: %+v", extra)
	default:
	}
}

func TestPublish_MultipleConnectionsSameIdentity(t *testing.T) {
	t.Parallel()

	h := New()
	first := h.Subscribe("worker-1")
	second := h.Subscribe("worker-1")

	h.Publish("worker-1", taskhub.EventNewMessage, "hello")

	for _, conn := range []*Conn{first, second} {
		event := receiveEvent(t, conn)
		if event.Kind != taskhub.EventNewMessage {
			t.Errorf("event kind = %s, want %s", event.Kind, taskhub.EventNewMessage)
		}
	}
}

func TestPublish_OtherIdentityNotDelivered(t *testing.T) {
	t.Parallel()

	h := New()
	conn := h.Subscribe("worker-1")

	h.Publish("worker-2", taskhub.EventNewTask, "payload")

	select {
	case event := <-conn.Events():
		t.Errorf("worker-1 received worker-2's event: %+v", event)
	default:
	}
}

func TestUnsubscribe(t *testing.T) {
	t.Parallel()

	h := New()
	conn := h.Subscribe("worker-1")

	h.Unsubscribe(conn)

	if got := h.Connections("worker-1"); got != 0 {
		t.Errorf("Connections() = %d, want 0", got)
	}

	// Channel is closed after unsubscribe.
	if _, ok := <-conn.Events(); ok {
		t.Error("event channel still open after unsubscribe")
	}

	// Unsubscribing twice is safe.
	h.Unsubscribe(conn)

	// Publishing after unsubscribe delivers nothing and does not panic.
	h.Publish("worker-1", taskhub.EventNewTask, "payload")
}

func TestPublish_FullBufferDropsEvent(t *testing.T) {
	t.Parallel()

	h := New(WithBufferSize(1))
	conn := h.Subscribe("worker-1")

	h.Publish("worker-1", taskhub.EventNewTask, "first")
	h.Publish("worker-1", taskhub.EventNewTask, "second") // dropped, buffer full

	event := receiveEvent(t, conn)
	if diff := cmp.Diff("first", event.Payload); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}

	select {
	case extra := <-conn.Events():
		t.Errorf("expected second event to be dropped, got %+v", extra)
	default:
	}
}

func TestHub_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	h := New()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				conn := h.Subscribe("worker-1")
				h.Publish("worker-1", taskhub.EventTaskUpdated, j)
				h.Unsubscribe(conn)
			}
		}()
	}
	wg.Wait()

	if got := h.Connections("worker-1"); got != 0 {
		t.Errorf("Connections() = %d after teardown, want 0", got)
	}
}
