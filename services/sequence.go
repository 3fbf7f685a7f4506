package services

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mafiaidolaa/medicalrep-sub002/models"
)

// nextNumber increments the per-prefix counter and formats a document number
// like INV-000042. The counter row is created on first use. Run inside the
// caller's transaction so the UPDATE's row lock serializes concurrent
// allocators; gaps are possible on rollback, repeats are not.
func nextNumber(tx *gorm.DB, prefix string) (string, error) {
	seed := models.NumberSequence{Prefix: prefix}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return "", err
	}

	if err := tx.Model(&models.NumberSequence{}).
		Where("prefix = ?", prefix).
		Update("last_value", gorm.Expr("last_value + 1")).Error; err != nil {
		return "", err
	}

	var seq models.NumberSequence
	if err := tx.Where("prefix = ?", prefix).First(&seq).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%06d", prefix, seq.LastValue), nil
}
