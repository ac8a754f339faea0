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

type TaskHandler struct {
	db *gorm.DB
}

func NewTaskHandler(db *gorm.DB) *TaskHandler {
	return &TaskHandler{db: db}
}

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,min=2"`
	Description string     `json:"description"`
	Status      string     `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS IN_REVIEW COMPLETED CANCELLED"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	DueDate     *time.Time `json:"due_date"`
	ProjectID   uuid.UUID  `json:"project_id" binding:"required"`
}

type UpdateTaskRequest struct {
	Title       string     `json:"title" binding:"omitempty,min=2"`
	Description *string    `json:"description"`
	Status      string     `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS IN_REVIEW COMPLETED CANCELLED"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	DueDate     *time.Time `json:"due_date"`
}

type AssignTaskRequest struct {
	TaskID uuid.UUID `json:"task_id" binding:"required"`
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// CreateTask creates a task under a project of the caller's organization
// @Summary Create task
// @Description Create a task; the task inherits the project's organization and keeps it for life
// @Tags tasks
// @Accept json
// @Produce json
// @Param task body CreateTaskRequest true "Task information"
// @Security BearerAuth
// @Success 201 {object} response.Envelope{data=models.Task}
// @Failure 400 {object} response.Envelope "Validation error"
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope "Project belongs to another organization"
// @Failure 404 {object} response.Envelope "Project not found"
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	var project models.Project
	if err := h.db.First(&project, "id = ?", req.ProjectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			response.Error(c, apperror.NotFound("Project not found"))
			return
		}
		response.Error(c, err)
		return
	}

	if identity.OrganizationID == nil || project.OrganizationID != *identity.OrganizationID {
		response.Error(c, apperror.Forbidden("Project does not belong to your organization"))
		return
	}

	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatusTodo,
		Priority:    models.TaskPriorityMedium,
		DueDate:     req.DueDate,
		ProjectID:   project.ID,
		// Inherited from the project; immutable thereafter.
		OrganizationID: project.OrganizationID,
	}
	if req.Status != "" {
		task.Status = models.TaskStatus(req.Status)
	}
	if req.Priority != "" {
		task.Priority = models.TaskPriority(req.Priority)
	}

	if err := h.db.Create(&task).Error; err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Task created successfully", task)
}

// GetTasks lists tasks in the caller's organization
// @Summary List tasks
// @Description Paginated task list scoped to the caller's organization; members see only tasks assigned to them
// @Tags tasks
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param filters[project_id] query string false "Filter by project"
// @Param filters[status] query string false "Filter by status"
// @Param filters[priority] query string false "Filter by priority"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /tasks [get]
func (h *TaskHandler) GetTasks(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)
	params := query.Parse(c)

	allowedFilters := map[string]string{
		"project_id": "tasks.project_id",
		"status":     "tasks.status",
		"priority":   "tasks.priority",
	}
	allowedSortFields := map[string]string{
		"title":      "tasks.title",
		"due_date":   "tasks.due_date",
		"priority":   "tasks.priority",
		"created_at": "tasks.created_at",
	}

	dbQuery := h.db.Model(&models.Task{})
	if !identity.IsPlatformAdmin() {
		if identity.OrganizationID == nil {
			response.Error(c, apperror.Forbidden("You do not belong to an organization"))
			return
		}
		dbQuery = dbQuery.Where("tasks.organization_id = ?", *identity.OrganizationID)
	}
	if identity.Role == models.RoleOrganizationMember {
		dbQuery = dbQuery.
			Joins("JOIN task_assignments ON task_assignments.task_id = tasks.id").
			Where("task_assignments.user_id = ?", identity.UserID)
	}

	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		response.Error(c, err)
		return
	}

	var tasks []models.Task
	if err := query.ApplyPagination(dbQuery, params.Page, params.Limit).
		Preload("Assignments.User").
		Find(&tasks).Error; err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Tasks retrieved successfully", gin.H{
		"items":      tasks,
		"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
	})
}

// GetTask fetches a single task
// @Summary Get task by ID
// @Description Fetch one task; organization members may only view tasks assigned to them
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Task}
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.InvalidInput("Invalid task ID format", nil))
		return
	}

	var task models.Task
	if err := h.db.
		Preload("Assignments.User").
		Preload("Project").
		First(&task, "id = ?", taskID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			response.Error(c, apperror.NotFound("Task not found"))
			return
		}
		response.Error(c, err)
		return
	}

	if identity.Role == models.RoleOrganizationMember {
		assigned := false
		for _, assignment := range task.Assignments {
			if assignment.UserID == identity.UserID {
				assigned = true
				break
			}
		}
		if !assigned {
			response.Error(c, apperror.Forbidden("You do not have permission to view this task"))
			return
		}
	}

	response.Success(c, http.StatusOK, "Task retrieved successfully", task)
}

// UpdateTask updates a task's mutable fields
// @Summary Update task
// @Description Update title, description, status, priority or due date; project and organization are immutable
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID" format(uuid)
// @Param task body UpdateTaskRequest true "Updated fields"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Task}
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tasks/{id} [patch]
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.InvalidInput("Invalid task ID format", nil))
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	var task models.Task
	if err := h.db.First(&task, "id = ?", taskID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			response.Error(c, apperror.NotFound("Task not found"))
			return
		}
		response.Error(c, err)
		return
	}

	if req.Title != "" {
		task.Title = req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != "" {
		task.Status = models.TaskStatus(req.Status)
	}
	if req.Priority != "" {
		task.Priority = models.TaskPriority(req.Priority)
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}

	if err := h.db.Save(&task).Error; err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Task updated successfully", task)
}

// AssignTask assigns a user to a task
// @Summary Assign task
// @Description Assign an organization user to a task; duplicate assignments conflict
// @Tags tasks
// @Accept json
// @Produce json
// @Param assignment body AssignTaskRequest true "Task and user"
// @Security BearerAuth
// @Success 201 {object} response.Envelope{data=models.TaskAssignment}
// @Failure 400 {object} response.Envelope "Validation error"
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope "Task or user in another organization"
// @Failure 404 {object} response.Envelope "Task or user not found"
// @Failure 409 {object} response.Envelope "Already assigned"
// @Router /tasks/assign [post]
func (h *TaskHandler) AssignTask(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	task, err := h.loadScopedTask(identity, req.TaskID)
	if err != nil {
		response.Error(c, err)
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", req.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			response.Error(c, apperror.NotFound("User not found"))
			return
		}
		response.Error(c, err)
		return
	}
	if user.OrganizationID == nil || *user.OrganizationID != task.OrganizationID {
		response.Error(c, apperror.Forbidden("User does not belong to this organization"))
		return
	}

	var existing models.TaskAssignment
	err = h.db.Where("task_id = ? AND user_id = ?", req.TaskID, req.UserID).First(&existing).Error
	if err == nil {
		response.Error(c, apperror.Conflict("User is already assigned to this task"))
		return
	}
	if err != gorm.ErrRecordNotFound {
		response.Error(c, err)
		return
	}

	assignment := models.TaskAssignment{
		TaskID:     task.ID,
		UserID:     user.ID,
		AssignedBy: identity.UserID,
	}

	// A concurrent duplicate loses on the (task_id, user_id) unique index.
	if err := h.db.Create(&assignment).Error; err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Task assigned successfully", assignment)
}

// UnassignTask removes a user's task assignment
// @Summary Unassign task
// @Description Remove an assignment; a missing pairing is a 404
// @Tags tasks
// @Accept json
// @Produce json
// @Param assignment body AssignTaskRequest true "Task and user"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Task or assignment not found"
// @Router /tasks/unassign [delete]
func (h *TaskHandler) UnassignTask(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	task, err := h.loadScopedTask(identity, req.TaskID)
	if err != nil {
		response.Error(c, err)
		return
	}

	var assignment models.TaskAssignment
	if err := h.db.Where("task_id = ? AND user_id = ?", task.ID, req.UserID).First(&assignment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			response.Error(c, apperror.NotFound("User is not assigned to this task"))
			return
		}
		response.Error(c, err)
		return
	}

	if err := h.db.Delete(&assignment).Error; err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "User unassigned from task successfully", nil)
}

// loadScopedTask loads a task and enforces the caller's tenant boundary on
// body-addressed task ids (assign/unassign have no path param for the
// scope middleware to resolve).
func (h *TaskHandler) loadScopedTask(identity middleware.Identity, taskID uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := h.db.First(&task, "id = ?", taskID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("Task not found")
		}
		return nil, err
	}

	if identity.OrganizationID == nil || task.OrganizationID != *identity.OrganizationID {
		return nil, apperror.Forbidden("Task does not belong to your organization")
	}
	return &task, nil
}
