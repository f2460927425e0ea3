package events

import (
	"testing"
	"time"
)

func TestPublishDelivers(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	want := BatteryChangedEvent{
		VoltageMicrovolts: 12000000,
		CapacityPercent:   85,
		Status:            "Charging",
		Ts:                1700000000,
	}
	h.Publish(BatteryChanged, want)

	select {
	case ev := <-ch:
		if ev.Name != BatteryChanged {
			t.Errorf("event name = %q, want %q", ev.Name, BatteryChanged)
		}
		got, err := DecodeAs[BatteryChangedEvent](ev)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if got != want {
			t.Errorf("payload = %+v, want %+v", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	done := make(chan struct{})
	go func() {
		// Nobody reads ch, so this overflows its buffer. Publish must
		// drop instead of blocking.
		for i := 0; i < subscriberBuffer+5; i++ {
			h.Publish(BatteryChanged, BatteryChangedEvent{CapacityPercent: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	if got := len(ch); got != subscriberBuffer {
		t.Errorf("buffered events = %d, want %d", got, subscriberBuffer)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	h.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("channel still open after unsubscribe")
	}

	// A second unsubscribe of the same channel must not panic.
	h.Unsubscribe(ch)
}

func TestClose(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	h.Close()

	if _, ok := <-ch; ok {
		t.Error("channel still open after hub close")
	}

	// Late subscribers get a closed channel back right away.
	late := h.Subscribe()
	if _, ok := <-late; ok {
		t.Error("channel from closed hub is open")
	}

	// Publishing into a closed hub is a no-op, not a panic.
	h.Publish(BatteryChanged, BatteryChangedEvent{})
}
