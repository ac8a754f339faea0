package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskforge-backend/shared/database/models"
	"taskforge-backend/shared/utils/apperror"
)

func fixedOrgResolver(orgID uuid.UUID) ScopeResolver {
	return func(c *gin.Context, db *gorm.DB) (*uuid.UUID, error) {
		return &orgID, nil
	}
}

func scopeRouter(identity Identity, resolve ScopeResolver) *gin.Engine {
	router := gin.New()
	router.GET("/resource/:id",
		identityInjector(identity),
		RequireOrganizationScope(nil, resolve),
		okHandler)
	return router
}

func TestScopeAllowsSameOrganization(t *testing.T) {
	orgID := uuid.New()
	identity := Identity{UserID: uuid.New(), Role: models.RoleOrganizationAdmin, OrganizationID: &orgID}

	w := httptest.NewRecorder()
	scopeRouter(identity, fixedOrgResolver(orgID)).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resource/"+uuid.NewString(), nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestScopeRejectsCrossTenantAccess(t *testing.T) {
	callerOrg := uuid.New()
	resourceOrg := uuid.New()
	identity := Identity{UserID: uuid.New(), Role: models.RoleOrganizationAdmin, OrganizationID: &callerOrg}

	w := httptest.NewRecorder()
	scopeRouter(identity, fixedOrgResolver(resourceOrg)).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resource/"+uuid.NewString(), nil))

	// Cross-tenant is 403, never 404: existence is not hidden from
	// authenticated callers.
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestScopeExemptsPlatformAdmin(t *testing.T) {
	identity := Identity{UserID: uuid.New(), Role: models.RolePlatformAdmin}

	// The resolver must not even run for platform admins.
	resolve := func(c *gin.Context, db *gorm.DB) (*uuid.UUID, error) {
		t.Error("resolver called for platform admin")
		return nil, apperror.NotFound("unreachable")
	}

	w := httptest.NewRecorder()
	scopeRouter(identity, resolve).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resource/"+uuid.NewString(), nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestScopePropagatesResolverNotFound(t *testing.T) {
	orgID := uuid.New()
	identity := Identity{UserID: uuid.New(), Role: models.RoleOrganizationAdmin, OrganizationID: &orgID}

	resolve := func(c *gin.Context, db *gorm.DB) (*uuid.UUID, error) {
		return nil, apperror.NotFound("Project not found")
	}

	w := httptest.NewRecorder()
	scopeRouter(identity, resolve).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resource/"+uuid.NewString(), nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestScopeRejectsIdentityWithoutOrganization(t *testing.T) {
	identity := Identity{UserID: uuid.New(), Role: models.RoleOrganizationMember}

	w := httptest.NewRecorder()
	scopeRouter(identity, fixedOrgResolver(uuid.New())).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resource/"+uuid.NewString(), nil))

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestScopeRejectsMissingIdentity(t *testing.T) {
	router := gin.New()
	router.GET("/resource/:id", RequireOrganizationScope(nil, fixedOrgResolver(uuid.New())), okHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resource/"+uuid.NewString(), nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
