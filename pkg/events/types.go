package events

import "encoding/json"

// Event name constants
const (
	// BatteryChanged fires after every effective write, i.e. whenever an
	// observable battery value actually changed.
	BatteryChanged = "battery.changed"
)

// Event is a generic SSE event from daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// BatteryChangedEvent is the typed payload for battery.changed.
type BatteryChangedEvent struct {
	VoltageMicrovolts uint64 `json:"voltageMicrovolts"`
	CapacityPercent   int    `json:"capacityPercent"`
	Status            string `json:"status"`
	Ts                int64  `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// It ignores the event name and simply unmarshals Data into T. If Data is empty,
// it returns the zero value of T with a nil error.
//
// Example:
//
//	payload, err := events.DecodeAs[events.BatteryChangedEvent](ev)
//	if err != nil { /* handle */ }
//	fmt.Println(payload.Status, payload.CapacityPercent)
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
