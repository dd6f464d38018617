package store

import (
	"testing"
	"time"
)

func TestDateOf(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	tests := []struct {
		name string
		in   time.Time
		loc  *time.Location
		want time.Time
	}{
		{
			name: "utc noon",
			in:   time.Date(2025, time.March, 10, 12, 30, 0, 0, time.UTC),
			loc:  time.UTC,
			want: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "late utc evening is next day in jakarta",
			in:   time.Date(2025, time.March, 10, 22, 0, 0, 0, time.UTC),
			loc:  jakarta,
			want: time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "jakarta morning stays same day",
			in:   time.Date(2025, time.March, 10, 8, 0, 0, 0, jakarta),
			loc:  jakarta,
			want: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "jakarta early morning is previous utc day",
			in:   time.Date(2025, time.March, 10, 1, 0, 0, 0, jakarta),
			loc:  time.UTC,
			want: time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DateOf(tt.in, tt.loc)
			if !got.Equal(tt.want) {
				t.Errorf("DateOf(%v, %v) = %v, want %v", tt.in, tt.loc, got, tt.want)
			}
			if got.Location() != time.UTC {
				t.Errorf("normalized date should be in UTC, got %v", got.Location())
			}
		})
	}
}

func TestDateOf_Idempotent(t *testing.T) {
	day := DateOf(time.Now(), time.UTC)
	if !DateOf(day, time.UTC).Equal(day) {
		t.Error("DateOf of a normalized date should be a no-op")
	}
}
