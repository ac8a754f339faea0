package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"taskforge-backend/api/handlers"
	"taskforge-backend/api/middleware"
	"taskforge-backend/shared/config"
	"taskforge-backend/shared/database"
	"taskforge-backend/shared/database/models"
	utils "taskforge-backend/shared/utils/auth"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close(db)

	if err := database.SeedPlatformAdmin(db, cfg); err != nil {
		log.Fatalf("Failed to seed platform admin: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDBNumber(),
	})

	tokens := utils.NewTokenService(cfg.JWTSecret, cfg.JWTExpireDuration())
	loginLimiter := middleware.NewLoginRateLimiter(
		redisClient,
		cfg.GetLoginRateLimitMaxAttempts(),
		cfg.GetLoginRateLimitWindow(),
		cfg.GetLoginRateLimitBlock(),
	)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	registerRoutes(router, db, cfg, tokens, loginLimiter)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "taskforge",
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	log.Printf("TaskForge API starting on port %s...", cfg.ServerPort)
	router.Run(":" + cfg.ServerPort)
}

// registerRoutes wires every route with its middleware chain. Ordering is
// fixed: Authenticate, then role gate, then scope gate, then the handler.
func registerRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, tokens *utils.TokenService, loginLimiter *middleware.LoginRateLimiter) {
	authHandler := handlers.NewAuthHandler(db, tokens, loginLimiter)
	orgHandler := handlers.NewOrganizationHandler(db, cfg)
	projectHandler := handlers.NewProjectHandler(db)
	taskHandler := handlers.NewTaskHandler(db)
	userHandler := handlers.NewUserHandler(db, cfg)

	authenticated := middleware.Authenticate(db, tokens)
	platformAdmin := middleware.RequireRoles(models.RolePlatformAdmin)
	orgAdmin := middleware.RequireRoles(models.RoleOrganizationAdmin)

	api := router.Group("/api")

	// Auth routes
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/me", authenticated, authHandler.Me)

	// Organization routes
	orgs := api.Group("/organizations", authenticated)
	orgs.POST("", platformAdmin, orgHandler.CreateOrganization)
	orgs.GET("", platformAdmin, orgHandler.GetOrganizations)
	orgs.GET("/:id",
		middleware.RequireOrganizationScope(db, middleware.OrganizationScope("id")),
		orgHandler.GetOrganization)
	orgs.POST("/:id/create-first-admin", platformAdmin, orgHandler.CreateFirstAdmin)
	orgs.PATCH("/:id", platformAdmin, orgHandler.UpdateOrganization)

	// Project routes
	projects := api.Group("/projects", authenticated)
	projects.POST("", orgAdmin, projectHandler.CreateProject)
	projects.GET("", projectHandler.GetProjects)
	projects.GET("/:id",
		middleware.RequireOrganizationScope(db, middleware.ProjectScope("id")),
		projectHandler.GetProject)
	projects.PATCH("/:id", orgAdmin,
		middleware.RequireOrganizationScope(db, middleware.ProjectScope("id")),
		projectHandler.UpdateProject)
	projects.DELETE("/:id", orgAdmin,
		middleware.RequireOrganizationScope(db, middleware.ProjectScope("id")),
		projectHandler.DeleteProject)

	// Task routes
	tasks := api.Group("/tasks", authenticated)
	tasks.POST("", orgAdmin, taskHandler.CreateTask)
	tasks.GET("", taskHandler.GetTasks)
	tasks.POST("/assign", orgAdmin, taskHandler.AssignTask)
	tasks.DELETE("/unassign", orgAdmin, taskHandler.UnassignTask)
	tasks.GET("/:id",
		middleware.RequireOrganizationScope(db, middleware.TaskScope("id")),
		taskHandler.GetTask)
	tasks.PATCH("/:id", orgAdmin,
		middleware.RequireOrganizationScope(db, middleware.TaskScope("id")),
		taskHandler.UpdateTask)

	// User routes
	users := api.Group("/users", authenticated)
	users.POST("", orgAdmin, userHandler.CreateUser)
	users.GET("", userHandler.GetUsers)
	users.GET("/:id",
		middleware.RequireOrganizationScope(db, middleware.UserScope("id")),
		userHandler.GetUser)
	users.PATCH("/:id", orgAdmin,
		middleware.RequireOrganizationScope(db, middleware.UserScope("id")),
		userHandler.UpdateUser)
	users.DELETE("/:id", orgAdmin,
		middleware.RequireOrganizationScope(db, middleware.UserScope("id")),
		userHandler.DeleteUser)
}
