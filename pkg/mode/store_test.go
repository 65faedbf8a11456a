package mode

import (
	"context"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"hitl", HITL, false},
		{"autopilot", Autopilot, false},
		{"off", Off, false},
		{"", "", true},
		{"HITL", "", true},
		{"manual", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore(HITL)
	ctx := context.Background()

	if got := s.Get(ctx); got != HITL {
		t.Errorf("initial mode = %q, want hitl", got)
	}

	if err := s.Set(ctx, Off); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := s.Get(ctx); got != Off {
		t.Errorf("mode after Set = %q, want off", got)
	}
}
