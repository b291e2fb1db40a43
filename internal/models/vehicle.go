package models

import "github.com/google/uuid"

type Vehicle struct {
	Base
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Plate     string    `gorm:"type:varchar(50)" json:"plate"`
	Kind      string    `gorm:"type:varchar(100)" json:"kind"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	Enabled   bool      `gorm:"not null;default:true" json:"enabled"`
}
