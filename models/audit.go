package models

import (
	"encoding/json"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog is append-only; rows are created alongside privileged mutations
// and never updated or deleted.
type AuditLog struct {
	ID         uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint           `gorm:"index" json:"user_id"` // acting user
	Action     string         `gorm:"not null" json:"action"`
	TargetType string         `gorm:"not null" json:"target_type"`
	TargetID   uint           `json:"target_id"`
	Details    datatypes.JSON `json:"details"`
	CreatedAt  time.Time      `json:"created_at"`
}

// RecordAudit appends an audit row. Pass the transaction handle when the
// audited mutation runs inside one so both commit together.
func RecordAudit(db *gorm.DB, actorID uint, action, targetType string, targetID uint, details any) error {
	var payload datatypes.JSON
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			log.Printf("⚠️ audit details for %s %s/%d not serializable: %v", action, targetType, targetID, err)
		} else {
			payload = datatypes.JSON(raw)
		}
	}
	entry := &AuditLog{
		UserID:     actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    payload,
	}
	return db.Create(entry).Error
}
