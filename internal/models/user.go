package models

import "github.com/google/uuid"

// User mirrors the identity provider's subject. Credentials live upstream;
// this table only carries profile data referenced by planning records.
type User struct {
	Base
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	Role      string    `gorm:"type:varchar(50)" json:"role"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	Enabled   bool      `gorm:"not null;default:true" json:"enabled"`

	Company Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}
