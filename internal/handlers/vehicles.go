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

type VehicleHandler struct{}

func NewVehicleHandler() *VehicleHandler {
	return &VehicleHandler{}
}

// ListVehicles returns the vehicles of the caller's company
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	query := database.GetDB().Model(&models.Vehicle{}).
		Scopes(database.TenantScope(principal.CompanyID))
	if c.Query("include_disabled") != "true" {
		query = query.Scopes(database.Enabled)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR plate LIKE ?", like, like)
	}

	var total int64
	query.Count(&total)

	var vehicles []models.Vehicle
	if err := query.Order("name ASC").Scopes(database.Paginate(params)).Find(&vehicles).Error; err != nil {
		apierrors.InternalError(c, "Failed to fetch vehicles")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vehicles": vehicles,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// CreateVehicle creates a new vehicle
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type createVehicleRequest struct {
		Name  string `json:"name" binding:"required"`
		Plate string `json:"plate"`
		Kind  string `json:"kind"`
	}

	var req createVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	vehicle := models.Vehicle{
		Name:      req.Name,
		Plate:     req.Plate,
		Kind:      req.Kind,
		CompanyID: principal.CompanyID,
		Enabled:   true,
	}

	if err := database.GetDB().Create(&vehicle).Error; err != nil {
		apierrors.InternalError(c, "Failed to create vehicle")
		return
	}

	c.JSON(http.StatusCreated, vehicle)
}

// GetVehicle returns a single vehicle
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid vehicle id")
		return
	}

	var vehicle models.Vehicle
	if err := database.GetDB().
		Scopes(database.TenantScope(principal.CompanyID)).
		First(&vehicle, "id = ?", id).Error; err != nil {
		apierrors.NotFound(c, "Vehicle not found")
		return
	}

	c.JSON(http.StatusOK, vehicle)
}

// UpdateVehicle partially updates a vehicle
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid vehicle id")
		return
	}

	var vehicle models.Vehicle
	if err := database.GetDB().
		Scopes(database.TenantScope(principal.CompanyID)).
		First(&vehicle, "id = ?", id).Error; err != nil {
		apierrors.NotFound(c, "Vehicle not found")
		return
	}

	type updateVehicleRequest struct {
		Name  *string `json:"name"`
		Plate *string `json:"plate"`
		Kind  *string `json:"kind"`
	}

	var req updateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			apierrors.BadRequest(c, "Name cannot be empty")
			return
		}
		vehicle.Name = *req.Name
	}
	if req.Plate != nil {
		vehicle.Plate = *req.Plate
	}
	if req.Kind != nil {
		vehicle.Kind = *req.Kind
	}

	if err := database.GetDB().Save(&vehicle).Error; err != nil {
		apierrors.InternalError(c, "Failed to update vehicle")
		return
	}

	c.JSON(http.StatusOK, vehicle)
}

// DeleteVehicle soft-deletes a vehicle
func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	h.setEnabled(c, false, "Vehicle disabled")
}

// EnableVehicle restores a soft-deleted vehicle
func (h *VehicleHandler) EnableVehicle(c *gin.Context) {
	h.setEnabled(c, true, "Vehicle restored")
}

func (h *VehicleHandler) setEnabled(c *gin.Context, enabled bool, message string) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid vehicle id")
		return
	}

	res := database.GetDB().Model(&models.Vehicle{}).
		Where("id = ? AND company_id = ? AND enabled = ?", id, principal.CompanyID, !enabled).
		Update("enabled", enabled)
	if res.Error != nil {
		apierrors.InternalError(c, "Failed to update vehicle")
		return
	}
	if res.RowsAffected == 0 {
		apierrors.NotFound(c, "Vehicle not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}
