package models

import "github.com/google/uuid"

// Field is a lot of farmland that planning records book.
type Field struct {
	Base
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	AreaHa    float64   `gorm:"type:decimal(10,2)" json:"area_ha"`
	Crop      string    `gorm:"type:varchar(100)" json:"crop"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	Enabled   bool      `gorm:"not null;default:true" json:"enabled"`
}
