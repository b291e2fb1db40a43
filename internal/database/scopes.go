package database

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agroplan/agroplan-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// TenantScope restricts a query to one company. Every read and write on
// tenant-partitioned tables goes through this.
func TenantScope(companyID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ?", companyID)
	}
}

// Enabled filters out soft-deleted rows.
func Enabled(db *gorm.DB) *gorm.DB {
	return db.Where("enabled = ?", true)
}
