package services

import (
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Clock supplies the current time. Services take it injected so tests can
// pin "today" when exercising due dates and aging.
type Clock func() time.Time

// amountEpsilon absorbs float rounding on decimal(12,2) money columns.
const amountEpsilon = 1e-6

func amountZero(x float64) bool {
	return math.Abs(x) < amountEpsilon
}

// supportsRowLocks reports whether the dialect understands
// SELECT ... FOR UPDATE. Decided once at service construction, never probed
// per call.
func supportsRowLocks(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

// lockForUpdate takes a row lock for a read-modify-write when the store
// supports it.
func lockForUpdate(tx *gorm.DB, enabled bool) *gorm.DB {
	if enabled {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
