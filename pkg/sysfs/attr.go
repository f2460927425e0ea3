// Package sysfs models the attribute surface of a kernel power-supply
// battery: writable set_* attributes that parse text payloads, readable
// property attributes rendered as sysfs text, and errno-flavored results.
// It can also materialize the attributes as real files so shell users
// drive the battery with echo and cat.
package sysfs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"syscall"

	pkgerrors "github.com/pkg/errors"

	"github.com/pterodyne/linux-userspace-battery/pkg/battery"
	"github.com/pterodyne/linux-userspace-battery/pkg/metrics"
)

// Attribute names, matching what a power-supply battery exposes in sysfs.
const (
	AttrSetVoltage  = "set_voltage_uv"
	AttrSetCapacity = "set_capacity"
	AttrSetStatus   = "set_status"

	AttrVoltageNow = "voltage_now"
	AttrCapacity   = "capacity"
	AttrStatus     = "status"
	AttrUevent     = "uevent"
)

// ErrUnknownAttribute is returned for attribute names this supply does not
// expose.
var ErrUnknownAttribute = errors.New("unknown attribute")

// Attrs exposes one battery through named store/show attributes. The
// battery is attached after construction and detached at teardown; calls
// in between fail with battery.ErrNotInitialized (ENODEV), never a nil
// dereference.
type Attrs struct {
	name string

	mu   sync.RWMutex
	batt *battery.State
}

// NewAttrs returns an attribute set for a supply reporting itself under
// the given name. No battery is attached yet.
func NewAttrs(name string) *Attrs {
	return &Attrs{name: name}
}

// Name returns the power-supply name used in the uevent rendering.
func (a *Attrs) Name() string { return a.name }

// Attach connects the battery every subsequent Store and Show operates on.
func (a *Attrs) Attach(b *battery.State) {
	a.mu.Lock()
	a.batt = b
	a.mu.Unlock()
}

// Detach disconnects the battery, returning the attribute set to the
// not-initialized state.
func (a *Attrs) Detach() {
	a.Attach(nil)
}

func (a *Attrs) battery() *battery.State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.batt
}

// Snapshot returns the attached battery's snapshot, or ErrNotInitialized
// when nothing is attached.
func (a *Attrs) Snapshot() (battery.Snapshot, error) {
	b := a.battery()
	if b == nil {
		return battery.Snapshot{}, battery.ErrNotInitialized
	}
	return b.Snapshot(), nil
}

// Store applies one write-attribute payload. On success it returns
// len(payload), trailing newline included, the way a sysfs store handler
// reports the bytes it consumed. On failure it returns 0 and an error that
// Errno maps to ENODEV or EINVAL. Note that set_status cannot fail on
// content: unrecognized words are stored as Unknown.
func (a *Attrs) Store(attr string, payload []byte) (int, error) {
	b := a.battery()
	if b == nil {
		metrics.WriteErrorsTotal.WithLabelValues(attr).Inc()
		return 0, pkgerrors.Wrapf(battery.ErrNotInitialized, "store %s", attr)
	}

	raw := string(payload)
	var err error
	switch attr {
	case AttrSetVoltage:
		err = b.SetVoltage(raw)
	case AttrSetCapacity:
		err = b.SetCapacity(raw)
	case AttrSetStatus:
		b.SetStatus(raw)
	default:
		err = pkgerrors.Wrapf(ErrUnknownAttribute, "store %s", attr)
	}
	if err != nil {
		metrics.WriteErrorsTotal.WithLabelValues(attr).Inc()
		return 0, err
	}

	metrics.WritesTotal.WithLabelValues(attr).Inc()
	return len(payload), nil
}

// Show renders one readable attribute as sysfs text: bare decimal for
// voltage_now and capacity, the status word for status, and the
// POWER_SUPPLY_* environment block for uevent. The text carries no
// trailing newline; file renderers add their own.
func (a *Attrs) Show(attr string) (string, error) {
	snap, err := a.Snapshot()
	if err != nil {
		return "", pkgerrors.Wrapf(err, "show %s", attr)
	}

	switch attr {
	case AttrVoltageNow:
		return strconv.FormatUint(snap.VoltageMicrovolts, 10), nil
	case AttrCapacity:
		return strconv.Itoa(snap.CapacityPercent), nil
	case AttrStatus:
		return snap.Status.String(), nil
	case AttrUevent:
		return uevent(a.name, snap), nil
	default:
		return "", pkgerrors.Wrapf(ErrUnknownAttribute, "show %s", attr)
	}
}

// uevent renders the environment block the kernel would attach to a change
// event for this supply, one KEY=value pair per line.
func uevent(name string, snap battery.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "POWER_SUPPLY_NAME=%s\n", name)
	fmt.Fprintf(&sb, "POWER_SUPPLY_VOLTAGE_NOW=%d\n", snap.VoltageMicrovolts)
	fmt.Fprintf(&sb, "POWER_SUPPLY_CAPACITY=%d\n", snap.CapacityPercent)
	fmt.Fprintf(&sb, "POWER_SUPPLY_STATUS=%s", snap.Status)
	return sb.String()
}

// IsWriteAttr reports whether name is one of the writable set_* attributes.
func IsWriteAttr(name string) bool {
	switch name {
	case AttrSetVoltage, AttrSetCapacity, AttrSetStatus:
		return true
	}
	return false
}

// Errno maps an attribute error to the errno a kernel driver would hand
// back: 0 for nil, ENODEV when no battery is attached, EINVAL for
// everything else. Callers that need the raw write(2) convention report
// -int(Errno(err)).
func Errno(err error) syscall.Errno {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, battery.ErrNotInitialized):
		return syscall.ENODEV
	default:
		return syscall.EINVAL
	}
}
