package sse

import (
	"testing"

	"travel_crm_backend/platform/logger"

	"github.com/google/uuid"
)

func TestPublishReachesOnlyRecipient(t *testing.T) {
	s := New(logger.Discard())
	alice := &client{userID: uuid.New(), events: make(chan Event, 1)}
	bob := &client{userID: uuid.New(), events: make(chan Event, 1)}
	s.addClient(alice)
	s.addClient(bob)

	s.Publish(alice.userID, Event{Type: EventNotification, Message: "hi"})

	select {
	case ev := <-alice.events:
		if ev.Message != "hi" {
			t.Fatalf("unexpected event %+v", ev)
		}
	default:
		t.Fatal("expected alice to receive the event")
	}
	if len(bob.events) != 0 {
		t.Fatal("expected bob to receive nothing")
	}
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	s := New(logger.Discard())
	c := &client{userID: uuid.New(), events: make(chan Event, 1)}
	s.addClient(c)

	s.Publish(c.userID, Event{Type: EventNotification})
	s.Publish(c.userID, Event{Type: EventNotification})

	if len(c.events) != 1 {
		t.Fatalf("expected one buffered event, got %d", len(c.events))
	}
}

func TestRemoveAfterCloseDoesNotPanic(t *testing.T) {
	s := New(logger.Discard())
	c := &client{userID: uuid.New(), events: make(chan Event, 1)}
	s.addClient(c)

	s.Close()
	s.removeClient(c)

	if s.addClient(&client{userID: uuid.New(), events: make(chan Event)}) {
		t.Fatal("expected closed service to refuse new clients")
	}
	if s.Connected(c.userID) != 0 {
		t.Fatal("expected no connected clients after close")
	}
}
