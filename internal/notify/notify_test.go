package notify

import (
	"testing"
	"time"
)

func TestSubscribeReceivesPublished(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe(4)
	defer cancel()

	b.Publish(Event{Store: StorePlans, Key: "2026-w08"})

	select {
	case e := <-ch:
		if e.Store != StorePlans || e.Key != "2026-w08" {
			t.Errorf("Unexpected event: %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for event")
	}
}

func TestPublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	b := NewBroadcaster()
	_, cancel := b.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		// Second publish lands on a full buffer and must be dropped
		b.Publish(Event{Store: StoreRecipes, Key: "a"})
		b.Publish(Event{Store: StoreRecipes, Key: "b"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
}

func TestCancelClosesChannel(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe(1)
	cancel()

	if _, ok := <-ch; ok {
		t.Error("Expected closed channel after cancel")
	}

	// Publishing after cancel must not panic
	b.Publish(Event{Store: StorePlans, Key: "2026-w09"})

	// Double cancel is a no-op
	cancel()
}
