package services

import (
	"time"

	"github.com/mafiaidolaa/medicalrep-sub002/models"
	"github.com/mafiaidolaa/medicalrep-sub002/utils"
)

// AgingBucket classifies open debt by time since due date.
type AgingBucket string

const (
	BucketCurrent AgingBucket = "current"
	Bucket1To30   AgingBucket = "1-30"
	Bucket31To60  AgingBucket = "31-60"
	Bucket61To90  AgingBucket = "61-90"
	BucketOver90  AgingBucket = "90+"
)

// AgingBuckets lists the buckets in reporting order.
var AgingBuckets = []AgingBucket{BucketCurrent, Bucket1To30, Bucket31To60, Bucket61To90, BucketOver90}

// OverdueDays returns whole days elapsed past the due date, never negative.
// Derived at query time; never stored.
func OverdueDays(now, dueDate time.Time) int {
	days := utils.DaysBetween(dueDate, now)
	if days < 0 {
		return 0
	}
	return days
}

// BucketFor places an overdue-day count into its aging bucket. First match
// wins.
func BucketFor(overdueDays int) AgingBucket {
	switch {
	case overdueDays <= 0:
		return BucketCurrent
	case overdueDays <= 30:
		return Bucket1To30
	case overdueDays <= 60:
		return Bucket31To60
	case overdueDays <= 90:
		return Bucket61To90
	default:
		return BucketOver90
	}
}

// EscalatedPriority returns the collection priority a receivable should hold
// after overdueDays, given its current priority. Escalation is monotonic:
// the result is never lower than current.
func EscalatedPriority(overdueDays int, current models.Priority) models.Priority {
	var target models.Priority
	switch {
	case overdueDays > 90:
		target = models.PriorityUrgent
	case overdueDays >= 60:
		target = models.PriorityHigh
	default:
		return current
	}
	if current.AtLeast(target) {
		return current
	}
	return target
}
