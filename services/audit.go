package services

import (
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mafiaidolaa/medicalrep-sub002/models"
)

// AuditLogger writes fire-and-forget audit records. Records are inserted
// after the ledger transaction commits; failures are logged and swallowed so
// they can never roll back or fail a ledger operation.
type AuditLogger struct {
	db *gorm.DB
}

func NewAuditLogger(db *gorm.DB) *AuditLogger {
	return &AuditLogger{db: db}
}

func (a *AuditLogger) Record(entityType string, entityID uuid.UUID, action string, amount float64, actor string) {
	if a == nil || a.db == nil {
		return
	}
	rec := models.AuditLog{
		ID:         uuid.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Amount:     amount,
		Actor:      actor,
		CreatedAt:  time.Now(),
	}
	if err := a.db.Create(&rec).Error; err != nil {
		log.Printf("audit: failed to record %s on %s %s: %v",
			action, entityType, entityID, err)
	}
}
