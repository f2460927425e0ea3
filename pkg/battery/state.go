// Package battery holds the state of one virtual battery: voltage,
// capacity and charging status behind a single lock, with validated
// text setters shaped after the kernel power-supply attribute surface.
package battery

import (
	"errors"
	"strconv"
	"sync"

	pkgerrors "github.com/pkg/errors"
)

// Notifier is told that an observable battery value changed. It is always
// invoked after the write committed and outside the state lock, so an
// implementation may freely read the battery back.
type Notifier interface {
	Notify()
}

// NotifierFunc adapts a plain function to the Notifier interface.
type NotifierFunc func()

// Notify calls f.
func (f NotifierFunc) Notify() { f() }

// Snapshot is a copy of every observable battery field, taken under the
// lock so the combination existed at one instant.
type Snapshot struct {
	VoltageMicrovolts uint64 `json:"voltageMicrovolts"`
	CapacityPercent   int    `json:"capacityPercent"`
	Status            Status `json:"status"`
}

// Property selects one readable battery property. The values are the
// attribute names the power-supply class uses in sysfs.
type Property string

const (
	// PropVoltageNow selects the voltage in microvolts.
	PropVoltageNow Property = "voltage_now"
	// PropCapacity selects the capacity in percent.
	PropCapacity Property = "capacity"
	// PropStatus selects the charging status.
	PropStatus Property = "status"
)

// CapacityUnset is reported as the capacity until the first valid write.
// Writers can never set it back: SetCapacity only accepts 0 to 100.
const CapacityUnset = -1

// State is one virtual battery. All access goes through its methods; the
// zero value is not usable, use New.
type State struct {
	mu       sync.Mutex
	voltage  uint64 // microvolts
	capacity int    // percent, or CapacityUnset
	status   Status

	notifier Notifier
}

// New returns a battery reporting voltage 0, capacity CapacityUnset and
// status Unknown. notifier may be nil; when set, it fires after every
// effective write, i.e. one that actually changed a stored value.
func New(notifier Notifier) *State {
	return &State{
		capacity: CapacityUnset,
		notifier: notifier,
	}
}

// SetVoltage parses raw as an unsigned 64-bit microvolt count and stores
// it. The numeric base is auto-detected: plain decimal, 0x hex, octal with
// a leading 0 and 0b binary are all accepted, as is one trailing newline.
// Any value that fits in 64 bits is in range.
func (s *State) SetVoltage(raw string) error {
	v, err := strconv.ParseUint(trimNewline(raw), 0, 64)
	if err != nil {
		return pkgerrors.Wrapf(ErrParse, "voltage %q", raw)
	}

	s.mu.Lock()
	changed := s.voltage != v
	s.voltage = v
	s.mu.Unlock()

	if changed {
		s.notifyChanged()
	}
	return nil
}

// SetCapacity parses raw as a percentage, base auto-detected like
// SetVoltage. Values outside 0 to 100 are rejected with ErrOutOfRange,
// which keeps the CapacityUnset sentinel out of reach of writers.
func (s *State) SetCapacity(raw string) error {
	v, err := strconv.ParseInt(trimNewline(raw), 0, 0)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return pkgerrors.Wrapf(ErrOutOfRange, "capacity %q", raw)
		}
		return pkgerrors.Wrapf(ErrParse, "capacity %q", raw)
	}
	if v < 0 || v > 100 {
		return pkgerrors.Wrapf(ErrOutOfRange, "capacity %d", v)
	}

	s.mu.Lock()
	changed := s.capacity != int(v)
	s.capacity = int(v)
	s.mu.Unlock()

	if changed {
		s.notifyChanged()
	}
	return nil
}

// SetStatus stores the status parsed from raw. Unrecognized text maps to
// Unknown instead of failing, so the write always succeeds.
func (s *State) SetStatus(raw string) {
	st := ParseStatus(raw)

	s.mu.Lock()
	changed := s.status != st
	s.status = st
	s.mu.Unlock()

	if changed {
		s.notifyChanged()
	}
}

// Snapshot returns a consistent copy of all three fields.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		VoltageMicrovolts: s.voltage,
		CapacityPercent:   s.capacity,
		Status:            s.status,
	}
}

// ReadProperty returns the current value of one property: uint64 for
// PropVoltageNow, int for PropCapacity, Status for PropStatus. Any other
// selector fails with ErrUnsupportedProperty.
//
// Voltage keeps its full 64-bit precision here. The kernel power-supply
// interface narrows the value to a signed int on read; that truncation is
// deliberately not reproduced.
func (s *State) ReadProperty(p Property) (any, error) {
	snap := s.Snapshot()
	switch p {
	case PropVoltageNow:
		return snap.VoltageMicrovolts, nil
	case PropCapacity:
		return snap.CapacityPercent, nil
	case PropStatus:
		return snap.Status, nil
	default:
		return nil, pkgerrors.Wrapf(ErrUnsupportedProperty, "%q", string(p))
	}
}

// notifyChanged runs the notifier outside the lock. A misbehaving notifier
// must not be able to undo or abort a write that already committed, so a
// panic stops here.
func (s *State) notifyChanged() {
	if s.notifier == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	s.notifier.Notify()
}
