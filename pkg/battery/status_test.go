package battery

import (
	"encoding/json"
	"testing"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want Status
	}{
		{"Charging", Charging},
		{"charging", Charging},
		{"CHARGING", Charging},
		{"Charging\n", Charging},
		{"Discharging", Discharging},
		{"discharging\n", Discharging},
		{"Full", Full},
		{"full", Full},
		{"Not charging", NotCharging},
		{"NOT CHARGING", NotCharging},
		{"not Charging\n", NotCharging},
		// Only one trailing newline is allowed.
		{"Charging\n\n", Unknown},
		// No other whitespace trimming happens.
		{" Charging", Unknown},
		{"Charging ", Unknown},
		{"Charging\t", Unknown},
		// Prefixes and garbage fall back to Unknown.
		{"Charg", Unknown},
		{"Chargingg", Unknown},
		{"banana", Unknown},
		{"Unknown", Unknown},
		{"", Unknown},
		{"\n", Unknown},
	}

	for _, tt := range tests {
		if got := ParseStatus(tt.raw); got != tt.want {
			t.Errorf("ParseStatus(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{Unknown, "Unknown"},
		{Charging, "Charging"},
		{Discharging, "Discharging"},
		{NotCharging, "Not charging"},
		{Full, "Full"},
		{Status(99), "Unknown"},
		{Status(-1), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", int(tt.status), got, tt.want)
		}
	}
}

func TestStatusJSON(t *testing.T) {
	b, err := json.Marshal(NotCharging)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(b) != `"Not charging"` {
		t.Errorf("marshal = %s, want %q", b, "Not charging")
	}

	var s Status
	if err := json.Unmarshal([]byte(`"Discharging"`), &s); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if s != Discharging {
		t.Errorf("unmarshal = %v, want %v", s, Discharging)
	}

	// Unrecognized words decode to Unknown rather than failing.
	s = Full
	if err := json.Unmarshal([]byte(`"banana"`), &s); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if s != Unknown {
		t.Errorf("unmarshal = %v, want %v", s, Unknown)
	}
}
