package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agroplan/agroplan-api/internal/database"
	apierrors "github.com/agroplan/agroplan-api/internal/errors"
	"github.com/agroplan/agroplan-api/internal/middleware"
	"github.com/agroplan/agroplan-api/internal/models"
	"github.com/agroplan/agroplan-api/internal/utils"
)

type FieldHandler struct{}

func NewFieldHandler() *FieldHandler {
	return &FieldHandler{}
}

// ListFields returns the fields (lots) of the caller's company
func (h *FieldHandler) ListFields(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	query := database.GetDB().Model(&models.Field{}).
		Scopes(database.TenantScope(principal.CompanyID))
	if c.Query("include_disabled") != "true" {
		query = query.Scopes(database.Enabled)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var fields []models.Field
	if err := query.Order("name ASC").Scopes(database.Paginate(params)).Find(&fields).Error; err != nil {
		apierrors.InternalError(c, "Failed to fetch fields")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fields": fields,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// CreateField creates a new field
func (h *FieldHandler) CreateField(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type createFieldRequest struct {
		Name   string  `json:"name" binding:"required"`
		AreaHa float64 `json:"area_ha"`
		Crop   string  `json:"crop"`
		Notes  string  `json:"notes"`
	}

	var req createFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	field := models.Field{
		Name:      req.Name,
		AreaHa:    req.AreaHa,
		Crop:      req.Crop,
		Notes:     req.Notes,
		CompanyID: principal.CompanyID,
		Enabled:   true,
	}

	if err := database.GetDB().Create(&field).Error; err != nil {
		apierrors.InternalError(c, "Failed to create field")
		return
	}

	c.JSON(http.StatusCreated, field)
}

// GetField returns a single field
func (h *FieldHandler) GetField(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid field id")
		return
	}

	var field models.Field
	if err := database.GetDB().
		Scopes(database.TenantScope(principal.CompanyID)).
		First(&field, "id = ?", id).Error; err != nil {
		apierrors.NotFound(c, "Field not found")
		return
	}

	c.JSON(http.StatusOK, field)
}

// UpdateField partially updates a field
func (h *FieldHandler) UpdateField(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid field id")
		return
	}

	var field models.Field
	if err := database.GetDB().
		Scopes(database.TenantScope(principal.CompanyID)).
		First(&field, "id = ?", id).Error; err != nil {
		apierrors.NotFound(c, "Field not found")
		return
	}

	type updateFieldRequest struct {
		Name   *string  `json:"name"`
		AreaHa *float64 `json:"area_ha"`
		Crop   *string  `json:"crop"`
		Notes  *string  `json:"notes"`
	}

	var req updateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			apierrors.BadRequest(c, "Name cannot be empty")
			return
		}
		field.Name = *req.Name
	}
	if req.AreaHa != nil {
		field.AreaHa = *req.AreaHa
	}
	if req.Crop != nil {
		field.Crop = *req.Crop
	}
	if req.Notes != nil {
		field.Notes = *req.Notes
	}

	if err := database.GetDB().Save(&field).Error; err != nil {
		apierrors.InternalError(c, "Failed to update field")
		return
	}

	c.JSON(http.StatusOK, field)
}

// DeleteField soft-deletes a field
func (h *FieldHandler) DeleteField(c *gin.Context) {
	h.setEnabled(c, false, "Field disabled")
}

// EnableField restores a soft-deleted field
func (h *FieldHandler) EnableField(c *gin.Context) {
	h.setEnabled(c, true, "Field restored")
}

func (h *FieldHandler) setEnabled(c *gin.Context, enabled bool, message string) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid field id")
		return
	}

	res := database.GetDB().Model(&models.Field{}).
		Where("id = ? AND company_id = ? AND enabled = ?", id, principal.CompanyID, !enabled).
		Update("enabled", enabled)
	if res.Error != nil {
		apierrors.InternalError(c, "Failed to update field")
		return
	}
	if res.RowsAffected == 0 {
		apierrors.NotFound(c, "Field not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}
