package battery

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// countingNotifier records how many times it was notified.
type countingNotifier struct {
	mu sync.Mutex
	n  int
}

func (c *countingNotifier) Notify() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *countingNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func TestNewDefaults(t *testing.T) {
	b := New(nil)

	snap := b.Snapshot()
	if snap.VoltageMicrovolts != 0 {
		t.Errorf("initial voltage = %d, want 0", snap.VoltageMicrovolts)
	}
	if snap.CapacityPercent != CapacityUnset {
		t.Errorf("initial capacity = %d, want %d", snap.CapacityPercent, CapacityUnset)
	}
	if snap.Status != Unknown {
		t.Errorf("initial status = %v, want %v", snap.Status, Unknown)
	}
}

func TestSetVoltage(t *testing.T) {
	tests := []struct {
		raw     string
		want    uint64
		wantErr error
	}{
		{"12000000", 12000000, nil},
		{"12000000\n", 12000000, nil},
		{"0", 0, nil},
		{"0x10", 16, nil},
		{"010", 8, nil},
		{"0b101", 5, nil},
		{"18446744073709551615", math.MaxUint64, nil},
		// Overflow, negatives and garbage are all parse failures for an
		// unsigned field.
		{"18446744073709551616", 0, ErrParse},
		{"-5", 0, ErrParse},
		{"banana", 0, ErrParse},
		{"12 000", 0, ErrParse},
		{"", 0, ErrParse},
		{"\n", 0, ErrParse},
	}

	for _, tt := range tests {
		b := New(nil)
		err := b.SetVoltage(tt.raw)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SetVoltage(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("SetVoltage(%q) failed: %v", tt.raw, err)
			continue
		}
		if got := b.Snapshot().VoltageMicrovolts; got != tt.want {
			t.Errorf("SetVoltage(%q) stored %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestSetCapacity(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr error
	}{
		{"0", 0, nil},
		{"100", 100, nil},
		{"85\n", 85, nil},
		{"0x50", 80, nil},
		{"101", 0, ErrOutOfRange},
		{"-1", 0, ErrOutOfRange},
		{"-100", 0, ErrOutOfRange},
		// Values that overflow the int parse are still range errors, not
		// parse errors.
		{"99999999999999999999999999", 0, ErrOutOfRange},
		{"banana", 0, ErrParse},
		{"85%", 0, ErrParse},
		{"", 0, ErrParse},
	}

	for _, tt := range tests {
		b := New(nil)
		err := b.SetCapacity(tt.raw)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SetCapacity(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
			}
			// A rejected write must leave the sentinel in place.
			if got := b.Snapshot().CapacityPercent; got != CapacityUnset {
				t.Errorf("SetCapacity(%q) stored %d after error", tt.raw, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("SetCapacity(%q) failed: %v", tt.raw, err)
			continue
		}
		if got := b.Snapshot().CapacityPercent; got != tt.want {
			t.Errorf("SetCapacity(%q) stored %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestFailedWriteLeavesStateUntouched(t *testing.T) {
	notifier := &countingNotifier{}
	b := New(notifier)

	if err := b.SetVoltage("11800000"); err != nil {
		t.Fatalf("SetVoltage failed: %v", err)
	}
	if err := b.SetCapacity("42"); err != nil {
		t.Fatalf("SetCapacity failed: %v", err)
	}
	before := b.Snapshot()
	notified := notifier.count()

	if err := b.SetVoltage("garbage"); err == nil {
		t.Fatal("SetVoltage accepted garbage")
	}
	if err := b.SetCapacity("101"); err == nil {
		t.Fatal("SetCapacity accepted 101")
	}

	if after := b.Snapshot(); after != before {
		t.Errorf("state changed across failed writes: %+v -> %+v", before, after)
	}
	if notifier.count() != notified {
		t.Errorf("failed writes notified: %d -> %d", notified, notifier.count())
	}
}

func TestNotifyOnlyOnChange(t *testing.T) {
	notifier := &countingNotifier{}
	b := New(notifier)

	if err := b.SetVoltage("42"); err != nil {
		t.Fatalf("SetVoltage failed: %v", err)
	}
	if got := notifier.count(); got != 1 {
		t.Fatalf("notifications after first write = %d, want 1", got)
	}

	// Same value again, even spelled differently, is not a change.
	if err := b.SetVoltage("42\n"); err != nil {
		t.Fatalf("SetVoltage failed: %v", err)
	}
	if err := b.SetVoltage("0x2a"); err != nil {
		t.Fatalf("SetVoltage failed: %v", err)
	}
	if got := notifier.count(); got != 1 {
		t.Errorf("notifications after identical writes = %d, want 1", got)
	}

	if err := b.SetVoltage("43"); err != nil {
		t.Fatalf("SetVoltage failed: %v", err)
	}
	if got := notifier.count(); got != 2 {
		t.Errorf("notifications after change = %d, want 2", got)
	}
}

func TestSetStatusNeverFails(t *testing.T) {
	notifier := &countingNotifier{}
	b := New(notifier)

	// Unknown to Unknown is not a change.
	b.SetStatus("banana")
	if got := notifier.count(); got != 0 {
		t.Fatalf("notifications after no-op garbage = %d, want 0", got)
	}

	b.SetStatus("Charging")
	if got := b.Snapshot().Status; got != Charging {
		t.Fatalf("status = %v, want %v", got, Charging)
	}
	if got := notifier.count(); got != 1 {
		t.Fatalf("notifications = %d, want 1", got)
	}

	// Garbage now falls back to Unknown, which is an observable change.
	b.SetStatus("wibble")
	if got := b.Snapshot().Status; got != Unknown {
		t.Fatalf("status = %v, want %v", got, Unknown)
	}
	if got := notifier.count(); got != 2 {
		t.Fatalf("notifications = %d, want 2", got)
	}
}

func TestReadProperty(t *testing.T) {
	b := New(nil)
	if err := b.SetVoltage("18446744073709551615"); err != nil {
		t.Fatalf("SetVoltage failed: %v", err)
	}
	if err := b.SetCapacity("7"); err != nil {
		t.Fatalf("SetCapacity failed: %v", err)
	}
	b.SetStatus("Full")

	v, err := b.ReadProperty(PropVoltageNow)
	if err != nil {
		t.Fatalf("ReadProperty(voltage_now) failed: %v", err)
	}
	// The full 64-bit value must survive the read.
	if v != uint64(math.MaxUint64) {
		t.Errorf("voltage_now = %v, want %d", v, uint64(math.MaxUint64))
	}

	c, err := b.ReadProperty(PropCapacity)
	if err != nil {
		t.Fatalf("ReadProperty(capacity) failed: %v", err)
	}
	if c != 7 {
		t.Errorf("capacity = %v, want 7", c)
	}

	st, err := b.ReadProperty(PropStatus)
	if err != nil {
		t.Fatalf("ReadProperty(status) failed: %v", err)
	}
	if st != Full {
		t.Errorf("status = %v, want %v", st, Full)
	}

	if _, err := b.ReadProperty(Property("banana")); !errors.Is(err, ErrUnsupportedProperty) {
		t.Errorf("ReadProperty(banana) error = %v, want %v", err, ErrUnsupportedProperty)
	}
}

func TestNotifierMayReadBack(t *testing.T) {
	// The notifier runs outside the lock, so reading the battery from
	// inside it must not deadlock.
	done := make(chan Snapshot, 1)
	var b *State
	b = New(NotifierFunc(func() {
		done <- b.Snapshot()
	}))

	go func() {
		_ = b.SetVoltage("5000000")
	}()

	select {
	case snap := <-done:
		if snap.VoltageMicrovolts != 5000000 {
			t.Errorf("notifier saw voltage %d, want 5000000", snap.VoltageMicrovolts)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notifier did not run, writer likely deadlocked")
	}
}

func TestPanickingNotifierDoesNotAbortWrite(t *testing.T) {
	b := New(NotifierFunc(func() {
		panic("observer exploded")
	}))

	if err := b.SetVoltage("7"); err != nil {
		t.Fatalf("SetVoltage failed: %v", err)
	}
	if got := b.Snapshot().VoltageMicrovolts; got != 7 {
		t.Errorf("voltage = %d, want 7", got)
	}

	// The battery stays usable afterwards.
	if err := b.SetCapacity("50"); err != nil {
		t.Fatalf("SetCapacity failed: %v", err)
	}
	if got := b.Snapshot().CapacityPercent; got != 50 {
		t.Errorf("capacity = %d, want 50", got)
	}
}

func TestConcurrentWriters(t *testing.T) {
	const writers = 32

	b := New(&countingNotifier{})
	wrote := make(map[uint64]bool, writers)
	for i := 0; i < writers; i++ {
		wrote[uint64(1000000+i)] = true
	}

	var wg sync.WaitGroup
	start := make(chan struct{})
	for v := range wrote {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			<-start
			if err := b.SetVoltage(strconv.FormatUint(v, 10)); err != nil {
				t.Errorf("SetVoltage(%d) failed: %v", v, err)
			}
		}(v)
	}

	// Readers run concurrently and must only ever observe a written value
	// or the initial zero.
	stop := make(chan struct{})
	var readers sync.WaitGroup
	for i := 0; i < 4; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := b.Snapshot()
				if snap.VoltageMicrovolts != 0 && !wrote[snap.VoltageMicrovolts] {
					t.Errorf("snapshot saw voltage %d that nobody wrote", snap.VoltageMicrovolts)
					return
				}
			}
		}()
	}

	close(start)
	wg.Wait()
	close(stop)
	readers.Wait()

	final := b.Snapshot().VoltageMicrovolts
	if !wrote[final] {
		t.Errorf("final voltage %d is not one of the written values", final)
	}
}

func TestErrorMessagesCarryInput(t *testing.T) {
	b := New(nil)

	err := b.SetCapacity("banana\n")
	if err == nil {
		t.Fatal("SetCapacity accepted garbage")
	}
	want := fmt.Sprintf("capacity %q", "banana\n")
	if got := err.Error(); !strings.Contains(got, want) {
		t.Errorf("error %q does not mention %q", got, want)
	}
}
