package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/agroplan/agroplan-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// FieldSummaryDTO represents a booked field in planning responses
type FieldSummaryDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Crop string    `json:"crop,omitempty"`
}

// VehicleSummaryDTO represents the assigned vehicle in planning responses
type VehicleSummaryDTO struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Plate string    `json:"plate,omitempty"`
}

// ProductLineDTO represents one planned product consumption
type ProductLineDTO struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name,omitempty"`
	Amount    float64   `json:"amount"`
	Unit      string    `json:"unit"`
}

// PlanningDTO represents a planning record in API responses. Status is
// the persisted value; StatusEffective is the derived projection (overdue
// when the end time has passed on a live record).
type PlanningDTO struct {
	ID              uuid.UUID             `json:"id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	ActivityType    models.ActivityType   `json:"activity_type"`
	StartAt         time.Time             `json:"start_at"`
	EndAt           time.Time             `json:"end_at"`
	Status          models.PlanningStatus `json:"status"`
	StatusEffective models.PlanningStatus `json:"status_effective"`
	ResponsibleID   uuid.UUID             `json:"responsible_id"`
	Responsible     *UserDTO              `json:"responsible,omitempty"`
	VehicleID       *uuid.UUID            `json:"vehicle_id"`
	Vehicle         *VehicleSummaryDTO    `json:"vehicle,omitempty"`
	Enabled         bool                  `json:"enabled"`
	Fields          []FieldSummaryDTO     `json:"fields"`
	Products        []ProductLineDTO      `json:"products,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// ToPlanningDTO converts a PlanningRecord to PlanningDTO, deriving the
// effective status against now.
func ToPlanningDTO(rec models.PlanningRecord, now time.Time) PlanningDTO {
	d := PlanningDTO{
		ID:              rec.ID,
		Title:           rec.Title,
		Description:     rec.Description,
		ActivityType:    rec.ActivityType,
		StartAt:         rec.StartAt,
		EndAt:           rec.EndAt,
		Status:          rec.Status,
		StatusEffective: rec.EffectiveStatus(now),
		ResponsibleID:   rec.ResponsibleID,
		VehicleID:       rec.VehicleID,
		Enabled:         rec.Enabled,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}

	// Include responsible if preloaded
	if rec.Responsible.ID != uuid.Nil {
		d.Responsible = &UserDTO{
			ID:    rec.Responsible.ID,
			Name:  rec.Responsible.Name,
			Email: rec.Responsible.Email,
		}
	}

	// Include vehicle if preloaded
	if rec.Vehicle != nil && rec.Vehicle.ID != uuid.Nil {
		d.Vehicle = &VehicleSummaryDTO{
			ID:    rec.Vehicle.ID,
			Name:  rec.Vehicle.Name,
			Plate: rec.Vehicle.Plate,
		}
	}

	d.Fields = make([]FieldSummaryDTO, len(rec.Fields))
	for i, pf := range rec.Fields {
		d.Fields[i] = FieldSummaryDTO{
			ID:   pf.FieldID,
			Name: pf.Field.Name,
			Crop: pf.Field.Crop,
		}
	}

	if len(rec.Products) > 0 {
		d.Products = make([]ProductLineDTO, len(rec.Products))
		for i, pp := range rec.Products {
			d.Products[i] = ProductLineDTO{
				ProductID: pp.ProductID,
				Name:      pp.Product.Name,
				Amount:    pp.Amount,
				Unit:      pp.Unit,
			}
		}
	}

	return d
}

// ToPlanningDTOList converts a slice of records, deriving effective
// status for each against the same now.
func ToPlanningDTOList(records []models.PlanningRecord, now time.Time) []PlanningDTO {
	items := make([]PlanningDTO, len(records))
	for i, rec := range records {
		items[i] = ToPlanningDTO(rec, now)
	}
	return items
}
