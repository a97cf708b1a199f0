package models

import "testing"

func TestValidTransition(t *testing.T) {
	cases := []struct {
		action string
		from   string
		valid  bool
	}{
		{ActionCall, StatusWaiting, true},
		{ActionCall, StatusCalling, false},
		{ActionCall, StatusFinished, false},
		{ActionCall, StatusSkipped, false},
		{ActionRecall, StatusCalling, true},
		{ActionRecall, StatusWaiting, false},
		{ActionFinish, StatusCalling, true},
		{ActionFinish, StatusWaiting, false},
		{ActionSkip, StatusWaiting, true},
		{ActionSkip, StatusCalling, false},
		{"unknown", StatusWaiting, false},
	}

	for _, tt := range cases {
		if got := ValidTransition(tt.action, tt.from); got != tt.valid {
			t.Fatalf("ValidTransition(%q, %q)=%v, want %v", tt.action, tt.from, got, tt.valid)
		}
	}
}

func TestFormatCode(t *testing.T) {
	cases := []struct {
		prefix   string
		sequence int
		want     string
	}{
		{"A", 5, "A-005"},
		{"B", 42, "B-042"},
		{"C", 123, "C-123"},
		{"A", 1000, "A-1000"},
	}

	for _, tt := range cases {
		if got := FormatCode(tt.prefix, tt.sequence); got != tt.want {
			t.Fatalf("FormatCode(%q, %d)=%q, want %q", tt.prefix, tt.sequence, got, tt.want)
		}
	}
}
