package models

// Company is the tenant. Every planning and catalog row is partitioned by
// CompanyID; the value always comes from the request principal.
type Company struct {
	Base
	Name    string `gorm:"type:varchar(255);not null" json:"name"`
	Enabled bool   `gorm:"not null;default:true" json:"enabled"`
}
