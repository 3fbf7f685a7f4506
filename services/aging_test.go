package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mafiaidolaa/medicalrep-sub002/models"
)

func TestOverdueDays(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		due  time.Time
		want int
	}{
		{"due today", now, 0},
		{"due tomorrow", now.AddDate(0, 0, 1), 0},
		{"due far in the future", now.AddDate(1, 0, 0), 0},
		{"one day overdue", now.AddDate(0, 0, -1), 1},
		{"hundred days overdue", now.AddDate(0, 0, -100), 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OverdueDays(now, tt.due))
		})
	}
}

func TestBucketForBoundaries(t *testing.T) {
	tests := []struct {
		days int
		want AgingBucket
	}{
		{0, BucketCurrent},
		{1, Bucket1To30},
		{30, Bucket1To30},
		{31, Bucket31To60},
		{60, Bucket31To60},
		{61, Bucket61To90},
		{90, Bucket61To90},
		{91, BucketOver90},
		{365, BucketOver90},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketFor(tt.days), "days=%d", tt.days)
	}
}

func TestEscalatedPriorityIsMonotonic(t *testing.T) {
	tests := []struct {
		name    string
		days    int
		current models.Priority
		want    models.Priority
	}{
		{"below threshold stays normal", 59, models.PriorityNormal, models.PriorityNormal},
		{"sixty days raises to high", 60, models.PriorityNormal, models.PriorityHigh},
		{"ninety days raises to high", 90, models.PriorityNormal, models.PriorityHigh},
		{"over ninety raises to urgent", 91, models.PriorityNormal, models.PriorityUrgent},
		{"high stays high in its band", 75, models.PriorityHigh, models.PriorityHigh},
		{"high raises to urgent", 120, models.PriorityHigh, models.PriorityUrgent},
		{"urgent never drops in high band", 70, models.PriorityUrgent, models.PriorityUrgent},
		{"urgent never drops below threshold", 10, models.PriorityUrgent, models.PriorityUrgent},
		{"high never drops below threshold", 10, models.PriorityHigh, models.PriorityHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscalatedPriority(tt.days, tt.current))
		})
	}
}
