package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agroplan/agroplan-api/internal/clock"
	"github.com/agroplan/agroplan-api/internal/models"
	"github.com/agroplan/agroplan-api/internal/repository"
)

var (
	ErrPlanningNotFound    = errors.New("planning record not found")
	ErrTitleRequired       = errors.New("title is required")
	ErrStartAfterEnd       = errors.New("start time must not be after end time")
	ErrNoFields            = errors.New("at least one field is required")
	ErrInvalidActivityType = errors.New("invalid activity type")
	ErrInvalidStatus       = errors.New("invalid status")
)

const planningPreloads = "Responsible,Vehicle,Fields.Field,Products.Product"

// PlanningService handles planning business logic: validation, the
// conflict-checked writes, the soft-delete lifecycle and the derived
// overdue projection.
type PlanningService struct {
	repo     repository.PlanningRepository
	notifier Notifier
	clk      clock.Clock
}

// NewPlanningService creates a new PlanningService. notifier may be nil.
func NewPlanningService(repo repository.PlanningRepository, notifier Notifier, clk clock.Clock) *PlanningService {
	if clk == nil {
		clk = clock.System()
	}
	return &PlanningService{
		repo:     repo,
		notifier: notifier,
		clk:      clk,
	}
}

// Now exposes the service clock so read surfaces derive status against
// the same reference time.
func (s *PlanningService) Now() time.Time {
	return s.clk.Now()
}

// CreatePlanningInput represents input for creating a planning record
type CreatePlanningInput struct {
	Title         string
	Description   string
	ActivityType  models.ActivityType
	StartAt       time.Time
	EndAt         time.Time
	Status        models.PlanningStatus
	ResponsibleID uuid.UUID
	VehicleID     *uuid.UUID
	FieldIDs      []uuid.UUID
	Products      []repository.ProductLine
	CompanyID     uuid.UUID
	CreatedByID   *uuid.UUID
}

// UpdatePlanningInput represents a partial update. Nil pointers leave the
// column untouched; FieldIDs/Products non-nil fully replace the sets.
type UpdatePlanningInput struct {
	Title         *string
	Description   *string
	ActivityType  *models.ActivityType
	StartAt       *time.Time
	EndAt         *time.Time
	Status        *models.PlanningStatus
	ResponsibleID *uuid.UUID
	VehicleID     *uuid.UUID
	ClearVehicle  bool
	FieldIDs      *[]uuid.UUID
	Products      *[]repository.ProductLine
}

// ListPlanningInput represents filters for listing planning records
type ListPlanningInput struct {
	CompanyID       uuid.UUID
	From            *time.Time
	To              *time.Time
	ActivityType    *models.ActivityType
	Status          *models.PlanningStatus
	ResponsibleID   *uuid.UUID
	FieldID         *uuid.UUID
	Search          string
	IncludeDisabled bool
	IncludeCanceled bool
	DisabledOnly    bool
	Page            int
	PageSize        int
}

// Create validates the proposal and persists it together with its field
// and product associations. The overlap check and the insert share one
// transaction inside the repository.
func (s *PlanningService) Create(input CreatePlanningInput) (*models.PlanningRecord, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if input.StartAt.After(input.EndAt) {
		return nil, ErrStartAfterEnd
	}
	if len(input.FieldIDs) == 0 {
		return nil, ErrNoFields
	}
	if !input.ActivityType.IsValid() {
		return nil, ErrInvalidActivityType
	}
	if input.Status == "" {
		input.Status = models.StatusPlanned
	}
	if !input.Status.IsValid() {
		return nil, ErrInvalidStatus
	}

	fieldIDs := repository.UniqueIDs(input.FieldIDs)

	rec := &models.PlanningRecord{
		Title:         input.Title,
		Description:   input.Description,
		ActivityType:  input.ActivityType,
		StartAt:       input.StartAt,
		EndAt:         input.EndAt,
		Status:        input.Status,
		ResponsibleID: input.ResponsibleID,
		VehicleID:     input.VehicleID,
		Enabled:       true,
		CompanyID:     input.CompanyID,
		CreatedByID:   input.CreatedByID,
	}

	check := repository.ConflictCheck{
		StartAt:   input.StartAt,
		EndAt:     input.EndAt,
		FieldIDs:  fieldIDs,
		VehicleID: input.VehicleID,
	}

	if err := s.repo.Create(rec, check, fieldIDs, input.Products); err != nil {
		var conflict *repository.ConflictError
		if errors.As(err, &conflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create planning record: %w", err)
	}

	s.notifyAssigned(rec)

	return s.repo.FindByID(rec.CompanyID, rec.ID, preloads()...)
}

// Update applies a partial update. Conflicts are re-checked only when the
// time range, the field set or the vehicle changed.
func (s *PlanningService) Update(companyID, id uuid.UUID, input UpdatePlanningInput) (*models.PlanningRecord, error) {
	rec, err := s.repo.FindByID(companyID, id, "Fields")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanningNotFound
		}
		return nil, fmt.Errorf("failed to find planning record: %w", err)
	}

	oldStatus := rec.Status
	rangeChanged := false
	vehicleChanged := false

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleRequired
		}
		rec.Title = *input.Title
	}
	if input.Description != nil {
		rec.Description = *input.Description
	}
	if input.ActivityType != nil {
		if !input.ActivityType.IsValid() {
			return nil, ErrInvalidActivityType
		}
		rec.ActivityType = *input.ActivityType
	}
	if input.StartAt != nil {
		rec.StartAt = *input.StartAt
		rangeChanged = true
	}
	if input.EndAt != nil {
		rec.EndAt = *input.EndAt
		rangeChanged = true
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, ErrInvalidStatus
		}
		rec.Status = *input.Status
	}
	if input.ResponsibleID != nil {
		rec.ResponsibleID = *input.ResponsibleID
	}
	if input.ClearVehicle {
		rec.VehicleID = nil
		vehicleChanged = true
	} else if input.VehicleID != nil {
		rec.VehicleID = input.VehicleID
		vehicleChanged = true
	}

	if rec.StartAt.After(rec.EndAt) {
		return nil, ErrStartAfterEnd
	}

	var fieldIDs *[]uuid.UUID
	effectiveFields := currentFieldIDs(rec)
	if input.FieldIDs != nil {
		ids := repository.UniqueIDs(*input.FieldIDs)
		if len(ids) == 0 {
			return nil, ErrNoFields
		}
		fieldIDs = &ids
		effectiveFields = ids
	}

	var check *repository.ConflictCheck
	if rangeChanged || vehicleChanged || fieldIDs != nil {
		check = &repository.ConflictCheck{
			StartAt:   rec.StartAt,
			EndAt:     rec.EndAt,
			FieldIDs:  effectiveFields,
			VehicleID: rec.VehicleID,
			ExcludeID: rec.ID,
		}
	}

	// Fields were only loaded to compute the effective set; the writer
	// replaces join rows explicitly.
	rec.Fields = nil

	if err := s.repo.Update(rec, check, fieldIDs, input.Products); err != nil {
		var conflict *repository.ConflictError
		if errors.As(err, &conflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update planning record: %w", err)
	}

	if input.Status != nil && *input.Status != oldStatus {
		s.notifyStatusChanged(rec, oldStatus)
	}

	return s.repo.FindByID(companyID, id, preloads()...)
}

// Get returns a record with related data, scoped to the tenant.
func (s *PlanningService) Get(companyID, id uuid.UUID) (*models.PlanningRecord, error) {
	rec, err := s.repo.FindByID(companyID, id, preloads()...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanningNotFound
		}
		return nil, fmt.Errorf("failed to find planning record: %w", err)
	}
	return rec, nil
}

// List returns planning records matching the filters. A status filter of
// "overdue" is translated to its stored-column equivalent.
func (s *PlanningService) List(input ListPlanningInput) ([]models.PlanningRecord, int64, error) {
	filter := repository.PlanningFilter{
		CompanyID:       input.CompanyID,
		From:            input.From,
		To:              input.To,
		ActivityType:    input.ActivityType,
		ResponsibleID:   input.ResponsibleID,
		FieldID:         input.FieldID,
		Search:          input.Search,
		IncludeDisabled: input.IncludeDisabled,
		IncludeCanceled: input.IncludeCanceled,
		DisabledOnly:    input.DisabledOnly,
		Page:            input.Page,
		PageSize:        input.PageSize,
	}

	if input.Status != nil {
		if *input.Status == models.StatusOverdue {
			filter.OverdueOnly = true
			filter.Now = s.clk.Now()
		} else {
			filter.Status = input.Status
		}
	}

	records, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list planning records: %w", err)
	}

	return records, total, nil
}

// Cancel soft-deletes a record (see repository.Cancel for the status rule).
func (s *PlanningService) Cancel(companyID, id uuid.UUID) error {
	if err := s.repo.Cancel(companyID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlanningNotFound
		}
		return fmt.Errorf("failed to cancel planning record: %w", err)
	}
	return nil
}

// Restore re-enables a soft-deleted record; its status is left alone.
func (s *PlanningService) Restore(companyID, id uuid.UUID) error {
	if err := s.repo.Restore(companyID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlanningNotFound
		}
		return fmt.Errorf("failed to restore planning record: %w", err)
	}
	return nil
}

func (s *PlanningService) notifyAssigned(rec *models.PlanningRecord) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(models.Notification{
		UserID:   rec.ResponsibleID,
		Type:     models.NotificationAssigned,
		Priority: "normal",
		Title:    "New activity assigned",
		Message:  fmt.Sprintf("You are responsible for %q (%s)", rec.Title, rec.ActivityType),
		Payload:  fmt.Sprintf(`{"planning_id":%q}`, rec.ID),
	})
}

func (s *PlanningService) notifyStatusChanged(rec *models.PlanningRecord, oldStatus models.PlanningStatus) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(models.Notification{
		UserID:   rec.ResponsibleID,
		Type:     models.NotificationStatusChanged,
		Priority: "normal",
		Title:    "Activity status changed",
		Message:  fmt.Sprintf("%q moved from %s to %s", rec.Title, oldStatus, rec.Status),
		Payload:  fmt.Sprintf(`{"planning_id":%q,"status":%q}`, rec.ID, rec.Status),
	})
}

func preloads() []string {
	return strings.Split(planningPreloads, ",")
}

func currentFieldIDs(rec *models.PlanningRecord) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(rec.Fields))
	for _, f := range rec.Fields {
		ids = append(ids, f.FieldID)
	}
	return ids
}
