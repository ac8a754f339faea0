package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskforge-backend/shared/database/models"
	"taskforge-backend/shared/utils/apperror"
	"taskforge-backend/shared/utils/response"
)

// ScopeResolver maps a path-addressed resource to its owning organization.
// A nil org id means the resource is not organization-owned (e.g. a
// platform admin user record).
type ScopeResolver func(c *gin.Context, db *gorm.DB) (*uuid.UUID, error)

// RequireOrganizationScope verifies that the addressed resource belongs to
// the caller's organization. PLATFORM_ADMIN is exempt from scope checks
// (global visibility) but never from role checks. Cross-tenant access by an
// authenticated caller is 403, not 404.
func RequireOrganizationScope(db *gorm.DB, resolve ScopeResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			response.AbortError(c, apperror.Unauthenticated("You are not authorized"))
			return
		}

		if identity.IsPlatformAdmin() {
			c.Next()
			return
		}

		ownerOrgID, err := resolve(c, db)
		if err != nil {
			response.AbortError(c, err)
			return
		}

		if identity.OrganizationID == nil || ownerOrgID == nil || *ownerOrgID != *identity.OrganizationID {
			response.AbortError(c, apperror.Forbidden("Resource does not belong to your organization"))
			return
		}

		c.Next()
	}
}

// OrganizationScope resolves an organization path param to itself.
func OrganizationScope(param string) ScopeResolver {
	return func(c *gin.Context, db *gorm.DB) (*uuid.UUID, error) {
		id, err := parseParamID(c, param, "organization")
		if err != nil {
			return nil, err
		}
		var org models.Organization
		if err := db.First(&org, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, apperror.NotFound("Organization not found")
			}
			return nil, err
		}
		return &org.ID, nil
	}
}

// ProjectScope resolves a project path param to its owning organization.
func ProjectScope(param string) ScopeResolver {
	return func(c *gin.Context, db *gorm.DB) (*uuid.UUID, error) {
		id, err := parseParamID(c, param, "project")
		if err != nil {
			return nil, err
		}
		var project models.Project
		if err := db.First(&project, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, apperror.NotFound("Project not found")
			}
			return nil, err
		}
		return &project.OrganizationID, nil
	}
}

// TaskScope resolves a task path param to its owning organization, using
// the denormalized organization id (no join).
func TaskScope(param string) ScopeResolver {
	return func(c *gin.Context, db *gorm.DB) (*uuid.UUID, error) {
		id, err := parseParamID(c, param, "task")
		if err != nil {
			return nil, err
		}
		var task models.Task
		if err := db.First(&task, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, apperror.NotFound("Task not found")
			}
			return nil, err
		}
		return &task.OrganizationID, nil
	}
}

// UserScope resolves a user path param to the user's organization.
func UserScope(param string) ScopeResolver {
	return func(c *gin.Context, db *gorm.DB) (*uuid.UUID, error) {
		id, err := parseParamID(c, param, "user")
		if err != nil {
			return nil, err
		}
		var user models.User
		if err := db.First(&user, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, apperror.NotFound("User not found")
			}
			return nil, err
		}
		return user.OrganizationID, nil
	}
}

func parseParamID(c *gin.Context, param, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return uuid.Nil, apperror.InvalidInput("Invalid "+resource+" ID format", nil)
	}
	return id, nil
}
