package announce

import (
	"context"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/pterodyne/linux-userspace-battery/pkg/events"
)

type fakeToken struct{}

func (fakeToken) Wait() bool                     { return true }
func (fakeToken) WaitTimeout(time.Duration) bool { return true }
func (fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (fakeToken) Error() error { return nil }

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	seen chan struct{}
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{seen: make(chan struct{}, 16)}
}

func (f *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.mu.Lock()
	f.msgs = append(f.msgs, published{
		topic:    topic,
		qos:      qos,
		retained: retained,
		payload:  payload.([]byte),
	})
	f.mu.Unlock()
	f.seen <- struct{}{}
	return fakeToken{}
}

func (f *fakePublisher) all() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]published, len(f.msgs))
	copy(out, f.msgs)
	return out
}

func TestRunForwardsChangeEvents(t *testing.T) {
	hub := events.NewHub()
	pub := newFakePublisher()
	a := &Announcer{pub: pub, stateTopic: "vbatt/state", hub: hub}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(done)
	}()

	// Give Run a moment to subscribe before publishing.
	time.Sleep(50 * time.Millisecond)

	hub.Publish(events.BatteryChanged, events.BatteryChangedEvent{
		VoltageMicrovolts: 11400000,
		CapacityPercent:   42,
		Status:            "Discharging",
		Ts:                1700000000,
	})

	select {
	case <-pub.seen:
	case <-time.After(2 * time.Second):
		t.Fatal("change event was not published")
	}

	msgs := pub.all()
	if len(msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(msgs))
	}
	msg := msgs[0]
	if msg.topic != "vbatt/state" {
		t.Errorf("topic = %q, want vbatt/state", msg.topic)
	}
	if !msg.retained {
		t.Error("state message not retained")
	}
	if msg.qos != 1 {
		t.Errorf("qos = %d, want 1", msg.qos)
	}

	got, err := events.DecodeAs[events.BatteryChangedEvent](events.Event{Data: msg.payload})
	if err != nil {
		t.Fatalf("payload is not a change event: %v", err)
	}
	if got.CapacityPercent != 42 || got.Status != "Discharging" {
		t.Errorf("payload = %+v", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on context cancel")
	}
}

func TestRunIgnoresOtherEvents(t *testing.T) {
	hub := events.NewHub()
	pub := newFakePublisher()
	a := &Announcer{pub: pub, stateTopic: "vbatt/state", hub: hub}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	time.Sleep(50 * time.Millisecond)
	hub.Publish("something.else", map[string]int{"x": 1})

	select {
	case <-pub.seen:
		t.Fatal("unrelated event was published")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestRunStopsWhenHubCloses(t *testing.T) {
	hub := events.NewHub()
	a := &Announcer{pub: newFakePublisher(), stateTopic: "vbatt/state", hub: hub}

	done := make(chan struct{})
	go func() {
		a.Run(context.Background())
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	hub.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop when the hub closed")
	}
}
