package models

import (
	"time"

	"github.com/google/uuid"
)

type PlanningStatus string

const (
	StatusPlanned    PlanningStatus = "planned"
	StatusPending    PlanningStatus = "pending"
	StatusInProgress PlanningStatus = "in_progress"
	StatusCompleted  PlanningStatus = "completed"
	StatusCancelled  PlanningStatus = "cancelled"

	// StatusOverdue is derived at read time and never persisted.
	StatusOverdue PlanningStatus = "overdue"
)

// IsValid reports whether s is a persistable status. Overdue is excluded:
// it only exists as a view-time projection.
func (s PlanningStatus) IsValid() bool {
	switch s {
	case StatusPlanned, StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type ActivityType string

const (
	ActivitySpraying    ActivityType = "spraying"
	ActivityPlanting    ActivityType = "planting"
	ActivityHarvest     ActivityType = "harvest"
	ActivityFertilizing ActivityType = "fertilizing"
	ActivityIrrigation  ActivityType = "irrigation"
	ActivityMaintenance ActivityType = "maintenance"
	ActivityOther       ActivityType = "other"
)

func (a ActivityType) IsValid() bool {
	switch a {
	case ActivitySpraying, ActivityPlanting, ActivityHarvest, ActivityFertilizing,
		ActivityIrrigation, ActivityMaintenance, ActivityOther:
		return true
	}
	return false
}

// PlanningRecord is one scheduled activity booking one or more fields and
// optionally a vehicle for the [StartAt, EndAt] range.
type PlanningRecord struct {
	Base
	Title         string         `gorm:"type:varchar(255);not null" json:"title"`
	Description   string         `gorm:"type:text" json:"description"`
	ActivityType  ActivityType   `gorm:"type:varchar(30);not null" json:"activity_type"`
	StartAt       time.Time      `gorm:"not null;index" json:"start_at"`
	EndAt         time.Time      `gorm:"not null;index" json:"end_at"`
	Status        PlanningStatus `gorm:"type:varchar(20);not null;default:'planned'" json:"status"`
	ResponsibleID uuid.UUID      `gorm:"type:uuid;not null" json:"responsible_id"`
	VehicleID     *uuid.UUID     `gorm:"type:uuid;index" json:"vehicle_id"`
	Enabled       bool           `gorm:"not null;default:true;index" json:"enabled"`
	CompanyID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	CreatedByID   *uuid.UUID     `gorm:"type:uuid" json:"created_by_id"`

	// Relations
	Responsible User              `gorm:"foreignKey:ResponsibleID" json:"responsible,omitempty"`
	Vehicle     *Vehicle          `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Fields      []PlanningField   `gorm:"foreignKey:PlanningRecordID" json:"fields,omitempty"`
	Products    []PlanningProduct `gorm:"foreignKey:PlanningRecordID" json:"products,omitempty"`
}

// EffectiveStatus projects the externally visible status: a live record
// whose end time has passed reads as overdue. The persisted value is
// never changed by this.
func (p *PlanningRecord) EffectiveStatus(now time.Time) PlanningStatus {
	if p.Status != StatusCompleted && p.Status != StatusCancelled && now.After(p.EndAt) {
		return StatusOverdue
	}
	return p.Status
}
