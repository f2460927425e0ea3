package battery

import (
	"encoding/json"
	"strings"
)

// Status is the charging state of a power supply. The values follow the
// kernel power-supply enum, so Unknown is the zero value.
type Status int

const (
	// Unknown is the initial status and the fallback for unrecognized
	// input.
	Unknown Status = iota
	// Charging means the battery is gaining charge.
	Charging
	// Discharging means the battery is draining.
	Discharging
	// NotCharging means the battery is idle, neither charging nor
	// draining.
	NotCharging
	// Full means the battery is fully charged.
	Full
)

// statusWords holds the canonical sysfs spellings, indexed by Status.
var statusWords = [...]string{
	"Unknown",
	"Charging",
	"Discharging",
	"Not charging",
	"Full",
}

// String renders the status the way the power-supply class spells it in
// sysfs, e.g. "Not charging".
func (s Status) String() string {
	if s < Unknown || s > Full {
		return statusWords[Unknown]
	}
	return statusWords[s]
}

// MarshalJSON encodes the status as its sysfs word.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status word. Unrecognized words become Unknown,
// same as ParseStatus.
func (s *Status) UnmarshalJSON(b []byte) error {
	var word string
	if err := json.Unmarshal(b, &word); err != nil {
		return err
	}
	*s = ParseStatus(word)
	return nil
}

// ParseStatus translates raw status text into a Status. At most one
// trailing newline is trimmed, then the remainder is matched
// case-insensitively against the known words. Everything else, including
// the empty string, maps to Unknown; parsing never fails.
func ParseStatus(raw string) Status {
	text := trimNewline(raw)
	for s := Charging; s <= Full; s++ {
		if strings.EqualFold(text, statusWords[s]) {
			return s
		}
	}
	return Unknown
}

// trimNewline removes at most one trailing newline. echo(1) appends one,
// and the kernel kstrto parsers this battery mimics allow exactly that.
func trimNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s[:len(s)-1]
	}
	return s
}
