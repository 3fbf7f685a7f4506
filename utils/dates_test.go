package utils

import (
	"testing"
	"time"
)

func TestDaysBetween(t *testing.T) {
	base := time.Date(2025, 6, 15, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"same day ignores clock time", base, base.Add(-20 * time.Hour), 0},
		{"one day apart", base, base.AddDate(0, 0, 1), 1},
		{"hundred days apart", base.AddDate(0, 0, -100), base, 100},
		{"negative when end precedes start", base, base.AddDate(0, 0, -3), -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.start, tt.end); got != tt.want {
				t.Errorf("DaysBetween() = %d, want %d", got, tt.want)
			}
		})
	}
}
