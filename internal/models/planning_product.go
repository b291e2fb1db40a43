package models

import (
	"time"

	"github.com/google/uuid"
)

// PlanningProduct links a planning record to a product with the planned
// amount. Same hard-delete replace semantics as PlanningField.
type PlanningProduct struct {
	PlanningRecordID uuid.UUID `gorm:"type:uuid;primaryKey" json:"planning_record_id"`
	ProductID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"product_id"`
	Amount           float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	Unit             string    `gorm:"type:varchar(50);not null" json:"unit"`
	CreatedAt        time.Time `json:"created_at"`

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
