package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskforge-backend/shared/database/models"
	"taskforge-backend/shared/utils/apperror"
	"taskforge-backend/shared/utils/response"
	utils "taskforge-backend/shared/utils/auth"
)

const identityKey = "identity"

// Identity is the authenticated, request-scoped caller identity. It is
// built from the freshly loaded user record, never from token claims alone:
// deactivating a user revokes access without waiting for token expiry.
type Identity struct {
	UserID         uuid.UUID
	Role           models.UserRole
	OrganizationID *uuid.UUID
}

// IsPlatformAdmin reports whether the caller has global visibility.
func (i Identity) IsPlatformAdmin() bool {
	return i.Role == models.RolePlatformAdmin
}

// Authenticate converts "Authorization: Bearer <token>" into a trusted
// identity in the request context, or rejects before any handler runs.
func Authenticate(db *gorm.DB, tokens *utils.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AbortError(c, apperror.Unauthenticated("Authorization header is required"))
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			response.AbortError(c, apperror.Unauthenticated("Invalid authorization format. Expected Bearer {token}"))
			return
		}

		claims, err := tokens.Validate(tokenParts[1])
		if err != nil {
			response.AbortError(c, apperror.Unauthenticated("Invalid or expired token"))
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			response.AbortError(c, apperror.Unauthenticated("Invalid user ID in token"))
			return
		}

		// Claims are a claim, not a fact: the live record is authoritative.
		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			response.AbortError(c, apperror.Unauthenticated("User not found or inactive"))
			return
		}
		if !user.IsActive {
			response.AbortError(c, apperror.Unauthenticated("User not found or inactive"))
			return
		}

		c.Set(identityKey, Identity{
			UserID:         user.ID,
			Role:           user.Role,
			OrganizationID: user.OrganizationID,
		})

		c.Next()
	}
}

// RequireRoles rejects callers whose role is not in the allowed set.
// An empty set admits any authenticated identity. Insufficient role is
// always 403, never 404.
func RequireRoles(allowed ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			response.AbortError(c, apperror.Unauthenticated("You are not authorized"))
			return
		}

		if len(allowed) == 0 {
			c.Next()
			return
		}

		for _, role := range allowed {
			if identity.Role == role {
				c.Next()
				return
			}
		}

		response.AbortError(c, apperror.Forbidden("You do not have permission to access this resource"))
	}
}

// CurrentIdentity returns the authenticated identity attached by Authenticate.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return Identity{}, false
	}
	identity, ok := value.(Identity)
	return identity, ok
}

// SetIdentity attaches an identity directly. Used by tests to exercise
// role and scope gates without a token round-trip.
func SetIdentity(c *gin.Context, identity Identity) {
	c.Set(identityKey, identity)
}
