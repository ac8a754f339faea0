// Package docs TaskForge API documentation
package docs

// Swagger documentation info
// @title TaskForge API
// @version 1.0
// @description Multi-tenant project-management REST API: organizations, users, projects and tasks with role-based access control.

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

// @tag.name auth
// @tag.description Authentication and session tokens
// @tag.name organizations
// @tag.description Organization management (platform admin)
// @tag.name projects
// @tag.description Project management, scoped to the caller's organization
// @tag.name tasks
// @tag.description Tasks and task assignments
// @tag.name users
// @tag.description Organization user management
