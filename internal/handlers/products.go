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

type ProductHandler struct{}

func NewProductHandler() *ProductHandler {
	return &ProductHandler{}
}

// ListProducts returns the products of the caller's company
func (h *ProductHandler) ListProducts(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	query := database.GetDB().Model(&models.Product{}).
		Scopes(database.TenantScope(principal.CompanyID))
	if c.Query("include_disabled") != "true" {
		query = query.Scopes(database.Enabled)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var products []models.Product
	if err := query.Order("name ASC").Scopes(database.Paginate(params)).Find(&products).Error; err != nil {
		apierrors.InternalError(c, "Failed to fetch products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// CreateProduct creates a new product
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type createProductRequest struct {
		Name  string  `json:"name" binding:"required"`
		Unit  string  `json:"unit"`
		Stock float64 `json:"stock"`
	}

	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	product := models.Product{
		Name:      req.Name,
		Unit:      req.Unit,
		Stock:     req.Stock,
		CompanyID: principal.CompanyID,
		Enabled:   true,
	}

	if err := database.GetDB().Create(&product).Error; err != nil {
		apierrors.InternalError(c, "Failed to create product")
		return
	}

	c.JSON(http.StatusCreated, product)
}

// GetProduct returns a single product
func (h *ProductHandler) GetProduct(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid product id")
		return
	}

	var product models.Product
	if err := database.GetDB().
		Scopes(database.TenantScope(principal.CompanyID)).
		First(&product, "id = ?", id).Error; err != nil {
		apierrors.NotFound(c, "Product not found")
		return
	}

	c.JSON(http.StatusOK, product)
}

// UpdateProduct partially updates a product
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid product id")
		return
	}

	var product models.Product
	if err := database.GetDB().
		Scopes(database.TenantScope(principal.CompanyID)).
		First(&product, "id = ?", id).Error; err != nil {
		apierrors.NotFound(c, "Product not found")
		return
	}

	type updateProductRequest struct {
		Name  *string  `json:"name"`
		Unit  *string  `json:"unit"`
		Stock *float64 `json:"stock"`
	}

	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			apierrors.BadRequest(c, "Name cannot be empty")
			return
		}
		product.Name = *req.Name
	}
	if req.Unit != nil {
		product.Unit = *req.Unit
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}

	if err := database.GetDB().Save(&product).Error; err != nil {
		apierrors.InternalError(c, "Failed to update product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct soft-deletes a product
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	h.setEnabled(c, false, "Product disabled")
}

// EnableProduct restores a soft-deleted product
func (h *ProductHandler) EnableProduct(c *gin.Context) {
	h.setEnabled(c, true, "Product restored")
}

func (h *ProductHandler) setEnabled(c *gin.Context, enabled bool, message string) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid product id")
		return
	}

	res := database.GetDB().Model(&models.Product{}).
		Where("id = ? AND company_id = ? AND enabled = ?", id, principal.CompanyID, !enabled).
		Update("enabled", enabled)
	if res.Error != nil {
		apierrors.InternalError(c, "Failed to update product")
		return
	}
	if res.RowsAffected == 0 {
		apierrors.NotFound(c, "Product not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}
