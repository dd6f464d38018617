package progress

import "testing"

func TestBar(t *testing.T) {
	tests := []struct {
		name    string
		current int
		target  int
		want    string
	}{
		{"partial", 5, 8, "██████░░░░ 62%"},
		{"complete", 8, 8, "██████████ 100%"},
		{"over target caps at 100", 12, 8, "██████████ 100%"},
		{"zero progress", 0, 8, "░░░░░░░░░░ 0%"},
		{"zero target", 3, 0, "░░░░░░░░░░ 0%"},
		{"negative current", -1, 8, "░░░░░░░░░░ 0%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bar(tt.current, tt.target); got != tt.want {
				t.Errorf("Bar(%d, %d) = %q, want %q", tt.current, tt.target, got, tt.want)
			}
		})
	}
}

func TestBarN_InvalidLength(t *testing.T) {
	if got := BarN(5, 10, 0); got != "█████░░░░░ 50%" {
		t.Errorf("BarN with zero length = %q", got)
	}
}

func TestFormatIncrement(t *testing.T) {
	if got := FormatIncrement(4.15); got != "+ $4.15" {
		t.Errorf("FormatIncrement(4.15) = %q", got)
	}
	if got := FormatIncrement(1250.5); got != "+ $1,250.50" {
		t.Errorf("FormatIncrement(1250.5) = %q", got)
	}
}

func TestFormatTotal(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0, "$0.00"},
		{37.5, "$37.50"},
		{1037.5, "$1,037.50"},
		{1234567.89, "$1,234,567.89"},
		{-12.5, "-$12.50"},
	}
	for _, tt := range tests {
		if got := FormatTotal(tt.value); got != tt.want {
			t.Errorf("FormatTotal(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestRemaining(t *testing.T) {
	if got := Remaining(3, 8); got != 5 {
		t.Errorf("Remaining(3, 8) = %d, want 5", got)
	}
	if got := Remaining(8, 8); got != 0 {
		t.Errorf("Remaining(8, 8) = %d, want 0", got)
	}
	if got := Remaining(10, 8); got != 0 {
		t.Errorf("Remaining(10, 8) = %d, want 0", got)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(4, 8); got != 50 {
		t.Errorf("Percent(4, 8) = %d, want 50", got)
	}
	if got := Percent(12, 8); got != 100 {
		t.Errorf("Percent(12, 8) = %d, want 100", got)
	}
	if got := Percent(1, 0); got != 0 {
		t.Errorf("Percent(1, 0) = %d, want 0", got)
	}
}
