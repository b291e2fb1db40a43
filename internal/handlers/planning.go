package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agroplan/agroplan-api/internal/dto"
	apierrors "github.com/agroplan/agroplan-api/internal/errors"
	"github.com/agroplan/agroplan-api/internal/middleware"
	"github.com/agroplan/agroplan-api/internal/models"
	"github.com/agroplan/agroplan-api/internal/repository"
	"github.com/agroplan/agroplan-api/internal/services"
	"github.com/agroplan/agroplan-api/internal/utils"
)

type PlanningHandler struct {
	service *services.PlanningService
}

func NewPlanningHandler(service *services.PlanningService) *PlanningHandler {
	return &PlanningHandler{
		service: service,
	}
}

type productLineRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Amount    float64 `json:"amount"`
	Unit      string  `json:"unit"`
}

type createPlanningRequest struct {
	Title           string                `json:"title" binding:"required"`
	Description     string                `json:"description"`
	ActivityType    models.ActivityType   `json:"activity_type" binding:"required"`
	StartAt         time.Time             `json:"start_at" binding:"required"`
	EndAt           time.Time             `json:"end_at" binding:"required"`
	Status          models.PlanningStatus `json:"status"`
	ResponsibleUser string                `json:"responsible_user" binding:"required"`
	VehicleID       *string               `json:"vehicle_id"`
	LotIDs          []string              `json:"lot_ids" binding:"required"`
	Products        []productLineRequest  `json:"products"`
}

// ListPlanning returns planning records of the caller's company
func (h *PlanningHandler) ListPlanning(c *gin.Context) {
	h.list(c, false)
}

// ListDisabledPlanning returns the soft-deleted records
func (h *PlanningHandler) ListDisabledPlanning(c *gin.Context) {
	h.list(c, true)
}

func (h *PlanningHandler) list(c *gin.Context, disabledOnly bool) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	input := services.ListPlanningInput{
		CompanyID:       principal.CompanyID,
		Search:          c.Query("search"),
		IncludeDisabled: c.Query("include_disabled") == "true",
		IncludeCanceled: c.Query("include_canceled") == "true",
		DisabledOnly:    disabledOnly,
		Page:            params.Page,
		PageSize:        params.Limit,
	}
	if disabledOnly {
		// hidden records are mostly status=cancelled; hiding those here
		// would make this listing useless
		input.IncludeCanceled = true
	}

	if v := c.Query("from"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid 'from' date")
			return
		}
		input.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid 'to' date")
			return
		}
		input.To = &t
	}
	if v := c.Query("activity_type"); v != "" {
		at := models.ActivityType(v)
		if !at.IsValid() {
			apierrors.BadRequest(c, "Invalid activity_type")
			return
		}
		input.ActivityType = &at
	}
	if v := c.Query("status"); v != "" {
		st := models.PlanningStatus(v)
		if !st.IsValid() && st != models.StatusOverdue {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		input.Status = &st
	}
	if v := c.Query("responsible"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid responsible id")
			return
		}
		input.ResponsibleID = &id
	}
	if v := c.Query("field_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid field_id")
			return
		}
		input.FieldID = &id
	}

	records, total, err := h.service.List(input)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch planning records")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"planning": dto.ToPlanningDTOList(records, h.service.Now()),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetPlanning returns a single planning record
func (h *PlanningHandler) GetPlanning(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid planning id")
		return
	}

	rec, err := h.service.Get(principal.CompanyID, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPlanningDTO(*rec, h.service.Now()))
}

// CreatePlanning creates a new planning record
func (h *PlanningHandler) CreatePlanning(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req createPlanningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	responsibleID, err := uuid.Parse(req.ResponsibleUser)
	if err != nil {
		apierrors.BadRequest(c, "Invalid responsible_user id")
		return
	}

	fieldIDs, err := parseUUIDs(req.LotIDs)
	if err != nil {
		apierrors.BadRequest(c, "Invalid lot_ids")
		return
	}

	var vehicleID *uuid.UUID
	if req.VehicleID != nil && *req.VehicleID != "" {
		vid, err := uuid.Parse(*req.VehicleID)
		if err != nil {
			apierrors.BadRequest(c, "Invalid vehicle_id")
			return
		}
		vehicleID = &vid
	}

	products, err := parseProductLines(req.Products)
	if err != nil {
		apierrors.BadRequest(c, "Invalid products")
		return
	}

	creatorID := principal.UserID
	rec, err := h.service.Create(services.CreatePlanningInput{
		Title:         req.Title,
		Description:   req.Description,
		ActivityType:  req.ActivityType,
		StartAt:       req.StartAt,
		EndAt:         req.EndAt,
		Status:        req.Status,
		ResponsibleID: responsibleID,
		VehicleID:     vehicleID,
		FieldIDs:      fieldIDs,
		Products:      products,
		CompanyID:     principal.CompanyID,
		CreatedByID:   &creatorID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToPlanningDTO(*rec, h.service.Now()))
}

// UpdatePlanning applies a partial update to a planning record
func (h *PlanningHandler) UpdatePlanning(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid planning id")
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input, bindErr := buildUpdateInput(rawReq)
	if bindErr != "" {
		apierrors.BadRequest(c, bindErr)
		return
	}

	rec, err := h.service.Update(principal.CompanyID, id, input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPlanningDTO(*rec, h.service.Now()))
}

// DeletePlanning soft-deletes (cancels) a planning record
func (h *PlanningHandler) DeletePlanning(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid planning id")
		return
	}

	if err := h.service.Cancel(principal.CompanyID, id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Planning record cancelled",
	})
}

// EnablePlanning restores a soft-deleted planning record
func (h *PlanningHandler) EnablePlanning(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid planning id")
		return
	}

	if err := h.service.Restore(principal.CompanyID, id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Planning record restored",
	})
}

func (h *PlanningHandler) respondError(c *gin.Context, err error) {
	var conflict *repository.ConflictError
	switch {
	case errors.As(err, &conflict):
		if conflict.Resource == "vehicle" {
			apierrors.ConflictWithDetails(c, "Vehicle is already booked in the requested range", gin.H{
				"vehicle_id": conflict.VehicleID,
			})
			return
		}
		apierrors.ConflictWithDetails(c, "One or more fields are already booked in the requested range", gin.H{
			"field_ids": conflict.FieldIDs,
		})
	case errors.Is(err, services.ErrPlanningNotFound):
		apierrors.NotFound(c, "Planning record not found")
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrStartAfterEnd),
		errors.Is(err, services.ErrNoFields),
		errors.Is(err, services.ErrInvalidActivityType),
		errors.Is(err, services.ErrInvalidStatus):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}

// buildUpdateInput lifts the raw partial-update body into a typed input.
// Returns a non-empty message on the first invalid value.
func buildUpdateInput(raw map[string]any) (services.UpdatePlanningInput, string) {
	var input services.UpdatePlanningInput

	if v, ok := raw["title"]; ok {
		s, ok := v.(string)
		if !ok {
			return input, "Invalid title"
		}
		input.Title = &s
	}
	if v, ok := raw["description"]; ok {
		s, ok := v.(string)
		if !ok {
			return input, "Invalid description"
		}
		input.Description = &s
	}
	if v, ok := raw["activity_type"]; ok {
		s, ok := v.(string)
		if !ok {
			return input, "Invalid activity_type"
		}
		at := models.ActivityType(s)
		input.ActivityType = &at
	}
	if v, ok := raw["start_at"]; ok {
		t, err := parseRawTime(v)
		if err != nil {
			return input, "Invalid start_at"
		}
		input.StartAt = &t
	}
	if v, ok := raw["end_at"]; ok {
		t, err := parseRawTime(v)
		if err != nil {
			return input, "Invalid end_at"
		}
		input.EndAt = &t
	}
	if v, ok := raw["status"]; ok {
		s, ok := v.(string)
		if !ok {
			return input, "Invalid status"
		}
		st := models.PlanningStatus(s)
		input.Status = &st
	}
	if v, ok := raw["responsible_user"]; ok {
		s, ok := v.(string)
		if !ok {
			return input, "Invalid responsible_user"
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return input, "Invalid responsible_user"
		}
		input.ResponsibleID = &id
	}
	if v, ok := raw["vehicle_id"]; ok {
		// vehicle_id was provided (might be null to unassign)
		if v == nil {
			input.ClearVehicle = true
		} else {
			s, ok := v.(string)
			if !ok {
				return input, "Invalid vehicle_id"
			}
			id, err := uuid.Parse(s)
			if err != nil {
				return input, "Invalid vehicle_id"
			}
			input.VehicleID = &id
		}
	}
	if v, ok := raw["lot_ids"]; ok {
		list, ok := v.([]any)
		if !ok {
			return input, "Invalid lot_ids"
		}
		ids := make([]uuid.UUID, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return input, "Invalid lot_ids"
			}
			id, err := uuid.Parse(s)
			if err != nil {
				return input, "Invalid lot_ids"
			}
			ids = append(ids, id)
		}
		input.FieldIDs = &ids
	}
	if v, ok := raw["products"]; ok {
		list, ok := v.([]any)
		if !ok {
			return input, "Invalid products"
		}
		lines := make([]repository.ProductLine, 0, len(list))
		for _, item := range list {
			obj, ok := item.(map[string]any)
			if !ok {
				return input, "Invalid products"
			}
			idStr, _ := obj["product_id"].(string)
			id, err := uuid.Parse(idStr)
			if err != nil {
				return input, "Invalid products"
			}
			amount, _ := obj["amount"].(float64)
			unit, _ := obj["unit"].(string)
			lines = append(lines, repository.ProductLine{
				ProductID: id,
				Amount:    amount,
				Unit:      unit,
			})
		}
		input.Products = &lines
	}

	return input, ""
}

func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

func parseRawTime(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, errors.New("not a string")
	}
	return time.Parse(time.RFC3339, s)
}

func parseUUIDs(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseProductLines(lines []productLineRequest) ([]repository.ProductLine, error) {
	products := make([]repository.ProductLine, 0, len(lines))
	for _, l := range lines {
		id, err := uuid.Parse(l.ProductID)
		if err != nil {
			return nil, err
		}
		products = append(products, repository.ProductLine{
			ProductID: id,
			Amount:    l.Amount,
			Unit:      l.Unit,
		})
	}
	return products, nil
}
