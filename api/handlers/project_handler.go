package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskforge-backend/api/middleware"
	"taskforge-backend/shared/database/models"
	"taskforge-backend/shared/utils/apperror"
	"taskforge-backend/shared/utils/query"
	"taskforge-backend/shared/utils/response"
)

type ProjectHandler struct {
	db *gorm.DB
}

func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{db: db}
}

type CreateProjectRequest struct {
	Name        string     `json:"name" binding:"required,min=2"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type UpdateProjectRequest struct {
	Name        string     `json:"name" binding:"omitempty,min=2"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	IsActive    *bool      `json:"is_active"`
}

// CreateProject creates a project under the caller's organization
// @Summary Create project
// @Description Create a project; it is always created under the caller's own organization
// @Tags projects
// @Accept json
// @Produce json
// @Param project body CreateProjectRequest true "Project information"
// @Security BearerAuth
// @Success 201 {object} response.Envelope{data=models.Project}
// @Failure 400 {object} response.Envelope "Validation error"
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Organization not found"
// @Router /projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)
	if identity.OrganizationID == nil {
		response.Error(c, apperror.Forbidden("You do not belong to an organization"))
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	var org models.Organization
	if err := h.db.First(&org, "id = ?", *identity.OrganizationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			response.Error(c, apperror.NotFound("Organization not found"))
			return
		}
		response.Error(c, err)
		return
	}

	project := models.Project{
		Name:           req.Name,
		Description:    req.Description,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		OrganizationID: org.ID,
		IsActive:       true,
	}

	if err := h.db.Create(&project).Error; err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Project created successfully", project)
}

// GetProjects lists projects in the caller's organization
// @Summary List projects
// @Description Paginated project list scoped to the caller's organization; platform admins see all
// @Tags projects
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term across name"
// @Param filters[is_active] query string false "Filter by active flag"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /projects [get]
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)
	params := query.Parse(c)

	allowedFilters := map[string]string{
		"is_active": "is_active",
	}
	allowedSortFields := map[string]string{
		"name":       "name",
		"start_date": "start_date",
		"created_at": "created_at",
	}

	dbQuery := h.db.Model(&models.Project{})
	if !identity.IsPlatformAdmin() {
		if identity.OrganizationID == nil {
			response.Error(c, apperror.Forbidden("You do not belong to an organization"))
			return
		}
		dbQuery = dbQuery.Where("organization_id = ?", *identity.OrganizationID)
	}

	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = query.ApplySearch(dbQuery, params.Search, []string{"name"})
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		response.Error(c, err)
		return
	}

	var projects []models.Project
	if err := query.ApplyPagination(dbQuery, params.Page, params.Limit).Find(&projects).Error; err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Projects retrieved successfully", gin.H{
		"items":      projects,
		"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
	})
}

// GetProject fetches a single project
// @Summary Get project by ID
// @Tags projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Project}
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope "Different organization"
// @Failure 404 {object} response.Envelope
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.loadProject(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Project retrieved successfully", project)
}

// UpdateProject updates a project's fields
// @Summary Update project
// @Tags projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param project body UpdateProjectRequest true "Updated fields"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Project}
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /projects/{id} [patch]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	project, err := h.loadProject(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if req.Name != "" {
		project.Name = req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.StartDate != nil {
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = req.EndDate
	}
	if req.IsActive != nil {
		project.IsActive = *req.IsActive
	}

	if err := h.db.Save(project).Error; err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Project updated successfully", project)
}

// DeleteProject deletes a project
// @Summary Delete project
// @Tags projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope "Project still has tasks"
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	project, err := h.loadProject(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var taskCount int64
	if err := h.db.Model(&models.Task{}).Where("project_id = ?", project.ID).Count(&taskCount).Error; err != nil {
		response.Error(c, err)
		return
	}
	if taskCount > 0 {
		response.Error(c, apperror.InvalidState("Cannot delete project that has tasks"))
		return
	}

	if err := h.db.Delete(project).Error; err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Project deleted successfully", nil)
}

func (h *ProjectHandler) loadProject(c *gin.Context) (*models.Project, error) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, apperror.InvalidInput("Invalid project ID format", nil)
	}

	var project models.Project
	if err := h.db.First(&project, "id = ?", projectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("Project not found")
		}
		return nil, err
	}
	return &project, nil
}
