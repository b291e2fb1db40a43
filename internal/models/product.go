package models

import "github.com/google/uuid"

// Product is an input (seed, fertilizer, agrochemical) consumed by
// planned activities.
type Product struct {
	Base
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Unit      string    `gorm:"type:varchar(50)" json:"unit"`
	Stock     float64   `gorm:"type:decimal(12,2);default:0" json:"stock"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	Enabled   bool      `gorm:"not null;default:true" json:"enabled"`
}
