package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskforge-backend/shared/config"
	"taskforge-backend/shared/database/models"
	"taskforge-backend/shared/utils/apperror"
	"taskforge-backend/shared/utils/query"
	"taskforge-backend/shared/utils/response"
	utils "taskforge-backend/shared/utils/auth"
	"taskforge-backend/shared/utils/slug"
)

type OrganizationHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewOrganizationHandler(db *gorm.DB, cfg *config.Config) *OrganizationHandler {
	return &OrganizationHandler{db: db, cfg: cfg}
}

type CreateOrganizationRequest struct {
	Name        string `json:"name" binding:"required,min=2"`
	Description string `json:"description"`
}

type UpdateOrganizationRequest struct {
	Name        string  `json:"name" binding:"omitempty,min=2"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type CreateFirstAdminRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required,min=2"`
}

// slugExists reports whether a slug is taken, optionally ignoring one
// organization (for renames).
func (h *OrganizationHandler) slugExists(excludeID *uuid.UUID) func(string) (bool, error) {
	return func(candidate string) (bool, error) {
		dbQuery := h.db.Model(&models.Organization{}).Where("slug = ?", candidate)
		if excludeID != nil {
			dbQuery = dbQuery.Where("id != ?", *excludeID)
		}
		var count int64
		if err := dbQuery.Count(&count).Error; err != nil {
			return false, err
		}
		return count > 0, nil
	}
}

// CreateOrganization creates a new organization
// @Summary Create organization
// @Description Create an organization; the slug is derived from the name with numeric-suffix collision resolution
// @Tags organizations
// @Accept json
// @Produce json
// @Param organization body CreateOrganizationRequest true "Organization information"
// @Security BearerAuth
// @Success 201 {object} response.Envelope{data=models.Organization}
// @Failure 400 {object} response.Envelope "Validation error"
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Slug already exists"
// @Router /organizations [post]
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	orgSlug, err := slug.Generate(req.Name, h.slugExists(nil))
	if err != nil {
		response.Error(c, err)
		return
	}

	org := models.Organization{
		Name:        req.Name,
		Slug:        orgSlug,
		Description: req.Description,
		IsActive:    true,
	}

	// A concurrent create with the same slug loses here and surfaces as 409
	// from the unique index, not from the pre-check.
	if err := h.db.Create(&org).Error; err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Organization created successfully", org)
}

// GetOrganizations lists organizations with pagination
// @Summary List organizations
// @Description Paginated organization list with filtering and search
// @Tags organizations
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term across name and slug"
// @Param filters[is_active] query string false "Filter by active flag"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /organizations [get]
func (h *OrganizationHandler) GetOrganizations(c *gin.Context) {
	params := query.Parse(c)

	allowedFilters := map[string]string{
		"is_active": "is_active",
	}
	allowedSortFields := map[string]string{
		"name":       "name",
		"slug":       "slug",
		"created_at": "created_at",
	}
	searchFields := []string{"name", "slug"}

	dbQuery := h.db.Model(&models.Organization{})
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = query.ApplySearch(dbQuery, params.Search, searchFields)
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		response.Error(c, err)
		return
	}

	var organizations []models.Organization
	if err := query.ApplyPagination(dbQuery, params.Page, params.Limit).Find(&organizations).Error; err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Organizations retrieved successfully", gin.H{
		"items":      organizations,
		"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
	})
}

// GetOrganization fetches a single organization
// @Summary Get organization by ID
// @Tags organizations
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Organization}
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope "Different organization"
// @Failure 404 {object} response.Envelope
// @Router /organizations/{id} [get]
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.InvalidInput("Invalid organization ID format", nil))
		return
	}

	var org models.Organization
	if err := h.db.First(&org, "id = ?", orgID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			response.Error(c, apperror.NotFound("Organization not found"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Organization retrieved successfully", org)
}

// CreateFirstAdmin bootstraps the first organization admin
// @Summary Create first organization admin
// @Description Create the bootstrap ORGANIZATION_ADMIN for an organization; exactly one may be created this way
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Param admin body CreateFirstAdminRequest true "Admin credentials"
// @Security BearerAuth
// @Success 201 {object} response.Envelope{data=handlers.UserResponse}
// @Failure 400 {object} response.Envelope "Validation error"
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Organization not found"
// @Failure 409 {object} response.Envelope "Admin exists or email taken"
// @Router /organizations/{id}/create-first-admin [post]
func (h *OrganizationHandler) CreateFirstAdmin(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.InvalidInput("Invalid organization ID format", nil))
		return
	}

	var req CreateFirstAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	var org models.Organization
	if err := h.db.First(&org, "id = ?", orgID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			response.Error(c, apperror.NotFound("Organization not found"))
			return
		}
		response.Error(c, err)
		return
	}

	var adminCount int64
	if err := h.db.Model(&models.User{}).
		Where("organization_id = ? AND role = ?", orgID, models.RoleOrganizationAdmin).
		Count(&adminCount).Error; err != nil {
		response.Error(c, err)
		return
	}
	if adminCount > 0 {
		response.Error(c, apperror.Conflict("Organization already has an admin"))
		return
	}

	var existingUser models.User
	if err := h.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		response.Error(c, apperror.Conflict("Email already exists"))
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password, h.cfg.BcryptCost)
	if err != nil {
		response.Error(c, err)
		return
	}

	admin := models.User{
		Email:          req.Email,
		Password:       hashedPassword,
		FullName:       req.FullName,
		Role:           models.RoleOrganizationAdmin,
		OrganizationID: &org.ID,
		IsActive:       true,
	}

	if err := h.db.Create(&admin).Error; err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Organization admin created successfully", toUserResponse(admin))
}

// UpdateOrganization updates name, description or active flag
// @Summary Update organization
// @Description Update an organization; renaming re-derives the slug
// @Tags organizations
// @Accept json
// @Produce json
// @Param id path string true "Organization ID" format(uuid)
// @Param organization body UpdateOrganizationRequest true "Updated fields"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Organization}
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Slug already exists"
// @Router /organizations/{id} [patch]
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.InvalidInput("Invalid organization ID format", nil))
		return
	}

	var req UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	var org models.Organization
	if err := h.db.First(&org, "id = ?", orgID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			response.Error(c, apperror.NotFound("Organization not found"))
			return
		}
		response.Error(c, err)
		return
	}

	if req.Name != "" && req.Name != org.Name {
		newSlug, err := slug.Generate(req.Name, h.slugExists(&org.ID))
		if err != nil {
			response.Error(c, err)
			return
		}
		org.Name = req.Name
		org.Slug = newSlug
	}
	if req.Description != nil {
		org.Description = *req.Description
	}
	if req.IsActive != nil {
		org.IsActive = *req.IsActive
	}

	if err := h.db.Save(&org).Error; err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Organization updated successfully", org)
}
