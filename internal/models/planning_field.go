package models

import (
	"time"

	"github.com/google/uuid"
)

// PlanningField links a planning record to a booked field. Rows are
// hard-deleted on relation replace so a replaced set leaves no residue.
type PlanningField struct {
	PlanningRecordID uuid.UUID `gorm:"type:uuid;primaryKey" json:"planning_record_id"`
	FieldID          uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"field_id"`
	CreatedAt        time.Time `json:"created_at"`

	Field Field `gorm:"foreignKey:FieldID" json:"field,omitempty"`
}
