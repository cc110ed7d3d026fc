package services

import (
	"testing"
	"time"
)

func TestSSEHub_SubscribeUnsubscribe(t *testing.T) {
	hub := NewSSEHub()

	hub.Subscribe("client1", testUser)
	hub.Subscribe("client2", testUser)
	if hub.ClientCount() != 2 {
		t.Fatalf("expected 2 clients, got %d", hub.ClientCount())
	}

	hub.Unsubscribe("client1")
	if hub.ClientCount() != 1 {
		t.Errorf("expected 1 client after unsubscribe, got %d", hub.ClientCount())
	}

	hub.Unsubscribe("nonexistent")
	if hub.ClientCount() != 1 {
		t.Errorf("unsubscribing nonexistent should not affect count, got %d", hub.ClientCount())
	}
}

func TestSSEHub_PublishOnlyToOwner(t *testing.T) {
	hub := NewSSEHub()

	mine := hub.Subscribe("mine", testUser)
	theirs := hub.Subscribe("theirs", otherUser)

	hub.Publish(InsightEvent{Type: EventInsightsExtracted, UserID: testUser, MessageID: 7})

	select {
	case got := <-mine:
		if got.MessageID != 7 || got.Type != EventInsightsExtracted {
			t.Errorf("unexpected event %+v", got)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timed out waiting for event")
	}

	select {
	case got := <-theirs:
		t.Errorf("other user received %+v", got)
	default:
	}
}

func TestSSEHub_NonBlockingPublish(t *testing.T) {
	hub := NewSSEHub()
	hub.Subscribe("slow_client", testUser)

	for i := 0; i < 200; i++ {
		hub.Publish(InsightEvent{UserID: testUser, MessageID: uint(i)})
	}
}

func TestSSEHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := NewSSEHub()
	ch := hub.Subscribe("c", testUser)
	hub.Unsubscribe("c")

	if _, ok := <-ch; ok {
		t.Error("channel should be closed")
	}
}

func TestGetSSEHub_Singleton(t *testing.T) {
	if GetSSEHub() != GetSSEHub() {
		t.Error("GetSSEHub should return the same instance")
	}
}
