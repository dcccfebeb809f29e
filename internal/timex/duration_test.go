package timex

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDuration_Days(t *testing.T) {
	d, err := ParseDuration("7d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 7*24*time.Hour {
		t.Fatalf("expected 168h, got %v", d)
	}
}

func TestParseDuration_Standard(t *testing.T) {
	d, err := ParseDuration("15m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 15*time.Minute {
		t.Fatalf("expected 15m, got %v", d)
	}
}

func TestParseDuration_Invalid(t *testing.T) {
	if _, err := ParseDuration("sevend"); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Duration
		err  bool
	}{
		{"string", `"15m"`, 15 * time.Minute, false},
		{"days", `"2d"`, 48 * time.Hour, false},
		{"number", `1000000000`, time.Second, false},
		{"garbage", `true`, 0, true},
		{"badstring", `"later"`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.in), &d)
			if tt.err {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Duration != tt.want {
				t.Fatalf("got %v, want %v", d.Duration, tt.want)
			}
		})
	}
}
