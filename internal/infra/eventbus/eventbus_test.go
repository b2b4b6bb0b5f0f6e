package eventbus

import (
	"testing"
	"time"
)

func TestEventBus_PublishAndSubscribe(t *testing.T) {
	bus := New()
	ch := bus.Subscribe(TopicEntryCreated)

	bus.Publish(TopicEntryCreated, "entry-1")

	select {
	case evt := <-ch:
		if evt.Topic != TopicEntryCreated {
			t.Errorf("expected topic %q, got %q", TopicEntryCreated, evt.Topic)
		}
		if evt.Payload != "entry-1" {
			t.Errorf("expected payload 'entry-1', got %v", evt.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout: expected event to be received within 100ms")
	}
}

func TestEventBus_MultipleSubscribers_AllReceive(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe(TopicEntryUpdated)
	ch2 := bus.Subscribe(TopicEntryUpdated)

	bus.Publish(TopicEntryUpdated, 42)

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case evt := <-ch:
			if evt.Payload != 42 {
				t.Errorf("subscriber %d: expected payload 42, got %v", i, evt.Payload)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("subscriber %d: timeout waiting for event", i)
		}
	}
}

func TestEventBus_DifferentTopics_NoInterference(t *testing.T) {
	bus := New()
	chCreated := bus.Subscribe(TopicEntryCreated)
	chDeleted := bus.Subscribe(TopicEntryDeleted)

	bus.Publish(TopicEntryCreated, "entry-9")

	select {
	case evt := <-chCreated:
		if evt.Payload != "entry-9" {
			t.Errorf("entry.created: unexpected payload %v", evt.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("entry.created: timeout waiting for event")
	}

	// entry.deleted should have received nothing
	select {
	case evt := <-chDeleted:
		t.Errorf("entry.deleted: received unexpected event: %v", evt)
	default:
		// correct — no event
	}
}

func TestEventBus_NonBlockingPublish_FullBuffer(t *testing.T) {
	bus := New()
	// Subscribe but never consume — buffer will fill up
	_ = bus.Subscribe("overflow.topic")

	// Publish more events than the buffer size — must not block
	done := make(chan struct{})
	go func() {
		for i := 0; i <= defaultBufferSize+10; i++ {
			bus.Publish("overflow.topic", i)
		}
		close(done)
	}()

	select {
	case <-done:
		// correct — publish never blocked
	case <-time.After(500 * time.Millisecond):
		t.Error("Publish blocked when buffer was full (should be non-blocking)")
	}
}
