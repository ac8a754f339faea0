package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskforge-backend/api/middleware"
	"taskforge-backend/shared/config"
	"taskforge-backend/shared/database/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testDB opens the database named by TEST_DATABASE_DSN, migrates the schema
// and truncates it after the test. Skipped when the variable is unset.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.TaskAssignment{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("TRUNCATE task_assignments, tasks, projects, users, organizations")
	})

	return db
}

func seedOrganization(t *testing.T, db *gorm.DB) models.Organization {
	t.Helper()
	org := models.Organization{
		Name:     "Acme Inc",
		Slug:     "acme-" + uuid.NewString()[:8],
		IsActive: true,
	}
	if err := db.Create(&org).Error; err != nil {
		t.Fatalf("seed organization: %v", err)
	}
	return org
}

func seedUser(t *testing.T, db *gorm.DB, orgID uuid.UUID, role models.UserRole) models.User {
	t.Helper()
	user := models.User{
		Email:          uuid.NewString() + "@example.com",
		Password:       "not-a-real-hash",
		FullName:       "Test User",
		Role:           role,
		OrganizationID: &orgID,
		IsActive:       true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedProject(t *testing.T, db *gorm.DB, orgID uuid.UUID) models.Project {
	t.Helper()
	project := models.Project{
		Name:           "Website Redesign",
		OrganizationID: orgID,
		IsActive:       true,
	}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return project
}

func seedTask(t *testing.T, db *gorm.DB, project models.Project) models.Task {
	t.Helper()
	task := models.Task{
		Title:          "Draft homepage",
		Status:         models.TaskStatusTodo,
		Priority:       models.TaskPriorityMedium,
		ProjectID:      project.ID,
		OrganizationID: project.OrganizationID,
	}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return task
}

func identityOf(user models.User) middleware.Identity {
	return middleware.Identity{
		UserID:         user.ID,
		Role:           user.Role,
		OrganizationID: user.OrganizationID,
	}
}

func injectIdentity(identity middleware.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetIdentity(c, identity)
		c.Next()
	}
}

func assignRequest(t *testing.T, router *gin.Engine, taskID, userID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(AssignTaskRequest{TaskID: taskID, UserID: userID})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tasks/assign", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestAssignTaskDuplicateConflict(t *testing.T) {
	db := testDB(t)
	org := seedOrganization(t, db)
	admin := seedUser(t, db, org.ID, models.RoleOrganizationAdmin)
	member := seedUser(t, db, org.ID, models.RoleOrganizationMember)
	project := seedProject(t, db, org.ID)
	task := seedTask(t, db, project)

	router := gin.New()
	router.POST("/api/tasks/assign", injectIdentity(identityOf(admin)), NewTaskHandler(db).AssignTask)

	if w := assignRequest(t, router, task.ID, member.ID); w.Code != http.StatusCreated {
		t.Fatalf("first assignment: status = %d, want 201, body %s", w.Code, w.Body.String())
	}
	if w := assignRequest(t, router, task.ID, member.ID); w.Code != http.StatusConflict {
		t.Errorf("duplicate assignment: status = %d, want 409, body %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.TaskAssignment{}).
		Where("task_id = ? AND user_id = ?", task.ID, member.ID).
		Count(&count)
	if count != 1 {
		t.Errorf("assignment rows = %d, want 1", count)
	}
}

func userRouter(db *gorm.DB, identity middleware.Identity) *gin.Engine {
	router := gin.New()
	handler := NewUserHandler(db, &config.Config{BcryptCost: 4})
	router.DELETE("/api/users/:id", injectIdentity(identity), handler.DeleteUser)
	return router
}

func deleteRequest(router *gin.Engine, id uuid.UUID) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/users/"+id.String(), nil))
	return w
}

func TestDeleteLastAdminRejected(t *testing.T) {
	db := testDB(t)
	org := seedOrganization(t, db)
	admin := seedUser(t, db, org.ID, models.RoleOrganizationAdmin)

	router := userRouter(db, identityOf(admin))
	if w := deleteRequest(router, admin.ID); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400, body %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.User{}).Where("id = ?", admin.ID).Count(&count)
	if count != 1 {
		t.Error("last admin was deleted")
	}
}

func TestDeleteOneOfTwoAdminsSucceeds(t *testing.T) {
	db := testDB(t)
	org := seedOrganization(t, db)
	first := seedUser(t, db, org.ID, models.RoleOrganizationAdmin)
	second := seedUser(t, db, org.ID, models.RoleOrganizationAdmin)

	router := userRouter(db, identityOf(first))
	if w := deleteRequest(router, second.ID); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
}

func TestConcurrentAdminDeletesKeepOneAdmin(t *testing.T) {
	db := testDB(t)
	org := seedOrganization(t, db)
	first := seedUser(t, db, org.ID, models.RoleOrganizationAdmin)
	second := seedUser(t, db, org.ID, models.RoleOrganizationAdmin)

	// Each admin deletes the other. The row locks serialize the two
	// transactions; the loser re-observes a count of one and is rejected.
	routerA := userRouter(db, identityOf(first))
	routerB := userRouter(db, identityOf(second))

	codes := make([]int, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		codes[0] = deleteRequest(routerA, second.ID).Code
	}()
	go func() {
		defer wg.Done()
		codes[1] = deleteRequest(routerB, first.ID).Code
	}()
	wg.Wait()

	succeeded := 0
	for _, code := range codes {
		if code == http.StatusOK {
			succeeded++
		}
	}
	if succeeded != 1 {
		t.Errorf("got %d successful deletes, want exactly 1 (codes %v)", succeeded, codes)
	}

	var admins int64
	db.Model(&models.User{}).
		Where("organization_id = ? AND role = ?", org.ID, models.RoleOrganizationAdmin).
		Count(&admins)
	if admins != 1 {
		t.Errorf("organization retains %d admins, want 1", admins)
	}
}
