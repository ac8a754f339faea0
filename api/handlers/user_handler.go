package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskforge-backend/api/middleware"
	"taskforge-backend/shared/config"
	"taskforge-backend/shared/database/models"
	"taskforge-backend/shared/utils/apperror"
	"taskforge-backend/shared/utils/query"
	"taskforge-backend/shared/utils/response"
	utils "taskforge-backend/shared/utils/auth"
)

type UserHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewUserHandler(db *gorm.DB, cfg *config.Config) *UserHandler {
	return &UserHandler{db: db, cfg: cfg}
}

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required,min=2"`
	Role     string `json:"role" binding:"required,oneof=ORGANIZATION_ADMIN ORGANIZATION_MEMBER"`
}

type UpdateUserRequest struct {
	FullName string `json:"full_name" binding:"omitempty,min=2"`
	IsActive *bool  `json:"is_active"`
}

// CreateUser creates a user inside the caller's organization
// @Summary Create user
// @Description Create an organization user; only organization-level roles can be granted
// @Tags users
// @Accept json
// @Produce json
// @Param user body CreateUserRequest true "User information"
// @Security BearerAuth
// @Success 201 {object} response.Envelope{data=handlers.UserResponse}
// @Failure 400 {object} response.Envelope "Validation error"
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Organization not found"
// @Failure 409 {object} response.Envelope "Email already exists"
// @Router /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)
	if identity.OrganizationID == nil {
		response.Error(c, apperror.Forbidden("You do not belong to an organization"))
		return
	}

	var req CreateUserRequest
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

	var existing models.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		response.Error(c, apperror.Conflict("Email already exists"))
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password, h.cfg.BcryptCost)
	if err != nil {
		response.Error(c, err)
		return
	}

	user := models.User{
		Email:          req.Email,
		Password:       hashedPassword,
		FullName:       req.FullName,
		Role:           models.UserRole(req.Role),
		OrganizationID: &org.ID,
		IsActive:       true,
	}

	// A concurrent create with the same email loses on the unique index.
	if err := h.db.Create(&user).Error; err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "User created successfully", toUserResponse(user))
}

// GetUsers lists users in the caller's organization
// @Summary List users
// @Description Paginated user list scoped to the caller's organization; platform admins see all
// @Tags users
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term across email and full name"
// @Param filters[role] query string false "Filter by role"
// @Param filters[is_active] query string false "Filter by active flag"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) GetUsers(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)
	params := query.Parse(c)

	allowedFilters := map[string]string{
		"role":      "role",
		"is_active": "is_active",
	}
	allowedSortFields := map[string]string{
		"email":      "email",
		"full_name":  "full_name",
		"created_at": "created_at",
	}

	dbQuery := h.db.Model(&models.User{})
	if !identity.IsPlatformAdmin() {
		if identity.OrganizationID == nil {
			response.Error(c, apperror.Forbidden("You do not belong to an organization"))
			return
		}
		dbQuery = dbQuery.Where("organization_id = ?", *identity.OrganizationID)
	}

	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = query.ApplySearch(dbQuery, params.Search, []string{"email", "full_name"})
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		response.Error(c, err)
		return
	}

	var users []models.User
	if err := query.ApplyPagination(dbQuery, params.Page, params.Limit).Find(&users).Error; err != nil {
		response.Error(c, err)
		return
	}

	items := make([]UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, toUserResponse(user))
	}

	response.Success(c, http.StatusOK, "Users retrieved successfully", gin.H{
		"items":      items,
		"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
	})
}

// GetUser fetches a single user
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=handlers.UserResponse}
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope "Different organization"
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.loadUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "User retrieved successfully", toUserResponse(*user))
}

// UpdateUser updates a user's name or active flag
// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Param user body UpdateUserRequest true "Updated fields"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=handlers.UserResponse}
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [patch]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.loadUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.db.Save(user).Error; err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "User updated successfully", toUserResponse(*user))
}

// DeleteUser deletes a user, protecting the last organization admin
// @Summary Delete user
// @Description Delete a user; removing the last ORGANIZATION_ADMIN of an organization is rejected
// @Tags users
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope "Last admin of the organization"
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	user, err := h.loadUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	// The admin rows are locked before counting so two concurrent deletes
	// of the final two admins serialize: the loser blocks on the locks and
	// re-observes a count of one.
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if user.Role == models.RoleOrganizationAdmin && user.OrganizationID != nil {
			var admins []models.User
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("organization_id = ? AND role = ?", *user.OrganizationID, models.RoleOrganizationAdmin).
				Find(&admins).Error; err != nil {
				return err
			}
			if len(admins) <= 1 {
				return apperror.InvalidState("Cannot delete the last admin of an organization")
			}
		}

		if err := tx.Where("user_id = ?", user.ID).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "User deleted successfully", nil)
}

func (h *UserHandler) loadUser(c *gin.Context) (*models.User, error) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, apperror.InvalidInput("Invalid user ID format", nil)
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("User not found")
		}
		return nil, err
	}
	return &user, nil
}
