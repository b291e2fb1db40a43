package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agroplan/agroplan-api/internal/models"
)

// ProductLine is one product association carried by a planning record.
type ProductLine struct {
	ProductID uuid.UUID
	Amount    float64
	Unit      string
}

// ConflictCheck describes a proposed booking to validate against the live
// records of a tenant. ExcludeID is zero on create and the record's own id
// on update so it does not collide with itself.
type ConflictCheck struct {
	StartAt   time.Time
	EndAt     time.Time
	FieldIDs  []uuid.UUID
	VehicleID *uuid.UUID
	ExcludeID uuid.UUID
}

// ConflictError reports a field or vehicle double-booking. It carries the
// colliding ids so the API can tell the caller what to adjust.
type ConflictError struct {
	Resource  string // "field" or "vehicle"
	FieldIDs  []uuid.UUID
	VehicleID *uuid.UUID
}

func (e *ConflictError) Error() string {
	if e.Resource == "vehicle" && e.VehicleID != nil {
		return fmt.Sprintf("vehicle %s is already booked in the requested range", *e.VehicleID)
	}
	return fmt.Sprintf("%d field(s) already booked in the requested range", len(e.FieldIDs))
}

// UniqueIDs removes duplicate values from a slice of uuids.
func UniqueIDs(values []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(values))
	result := make([]uuid.UUID, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}

// PlanningFilter holds filtering options for listing planning records.
type PlanningFilter struct {
	CompanyID       uuid.UUID
	From            *time.Time
	To              *time.Time
	ActivityType    *models.ActivityType
	Status          *models.PlanningStatus
	OverdueOnly     bool
	Now             time.Time // reference time for OverdueOnly
	ResponsibleID   *uuid.UUID
	FieldID         *uuid.UUID
	Search          string
	IncludeDisabled bool
	IncludeCanceled bool
	DisabledOnly    bool
	Page            int
	PageSize        int
}

// PlanningRepository defines the data access contract for planning records.
// Create and Update run the conflict check and the write inside a single
// transaction; a conflicting concurrent writer cannot slip between them.
type PlanningRepository interface {
	// Create inserts the record plus its field and product associations
	// atomically, rejecting with *ConflictError on overlap.
	Create(rec *models.PlanningRecord, check ConflictCheck, fieldIDs []uuid.UUID, products []ProductLine) error

	// Update saves the mutated record and, when supplied, fully replaces
	// the field/product association sets. check is nil when neither the
	// range nor the booked resources changed.
	Update(rec *models.PlanningRecord, check *ConflictCheck, fieldIDs *[]uuid.UUID, products *[]ProductLine) error

	// FindByID finds a record within a tenant, with optional preloading.
	FindByID(companyID, id uuid.UUID, preload ...string) (*models.PlanningRecord, error)

	// List retrieves records with filtering and pagination.
	List(filter PlanningFilter) ([]models.PlanningRecord, int64, error)

	// Cancel soft-deletes: enabled=false, status forced to cancelled
	// unless already completed.
	Cancel(companyID, id uuid.UUID) error

	// Restore re-enables a soft-deleted record without touching status.
	Restore(companyID, id uuid.UUID) error
}
