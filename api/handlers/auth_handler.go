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
	"taskforge-backend/shared/utils/response"
	utils "taskforge-backend/shared/utils/auth"
)

type AuthHandler struct {
	db      *gorm.DB
	tokens  *utils.TokenService
	limiter *middleware.LoginRateLimiter
}

func NewAuthHandler(db *gorm.DB, tokens *utils.TokenService, limiter *middleware.LoginRateLimiter) *AuthHandler {
	return &AuthHandler{db: db, tokens: tokens, limiter: limiter}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@platform.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

// UserResponse is the public view of a user. The password hash never
// leaves the service.
type UserResponse struct {
	ID             uuid.UUID       `json:"id"`
	Email          string          `json:"email"`
	FullName       string          `json:"full_name"`
	Role           models.UserRole `json:"role"`
	OrganizationID *uuid.UUID      `json:"organization_id"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
}

func toUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:             user.ID,
		Email:          user.Email,
		FullName:       user.FullName,
		Role:           user.Role,
		OrganizationID: user.OrganizationID,
		IsActive:       user.IsActive,
		CreatedAt:      user.CreatedAt,
	}
}

// Login authenticates a user and issues a session token
// @Summary User login
// @Description Authenticate with email and password, returns a signed session token
// @Tags auth
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Login credentials"
// @Success 200 {object} response.Envelope{data=handlers.LoginResponse}
// @Failure 400 {object} response.Envelope "Validation error"
// @Failure 401 {object} response.Envelope "Invalid credentials"
// @Failure 429 {object} response.Envelope "Too many login attempts"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	clientIP := c.ClientIP()
	if !h.limiter.Allow(c.Request.Context(), req.Email, clientIP) {
		response.Error(c, apperror.New(http.StatusTooManyRequests, "Too many login attempts. Please try again later."))
		return
	}

	// Same message for unknown email and wrong password, no user enumeration.
	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		h.limiter.RecordFailure(c.Request.Context(), req.Email, clientIP)
		response.Error(c, apperror.Unauthenticated("Invalid email or password"))
		return
	}

	if !user.IsActive {
		h.limiter.RecordFailure(c.Request.Context(), req.Email, clientIP)
		response.Error(c, apperror.Unauthenticated("User account is inactive"))
		return
	}

	if !utils.CheckPasswordHash(req.Password, user.Password) {
		h.limiter.RecordFailure(c.Request.Context(), req.Email, clientIP)
		response.Error(c, apperror.Unauthenticated("Invalid email or password"))
		return
	}

	token, err := h.tokens.Generate(user.ID, user.Role, user.OrganizationID)
	if err != nil {
		response.Error(c, apperror.New(http.StatusInternalServerError, "Could not generate token"))
		return
	}

	h.limiter.Reset(c.Request.Context(), req.Email, clientIP)

	response.Success(c, http.StatusOK, "Login successful", LoginResponse{
		AccessToken: token,
		ExpiresAt:   time.Now().Add(h.tokens.Expiry()),
		User:        toUserResponse(user),
	})
}

// Me returns the authenticated caller's profile
// @Summary Current user profile
// @Description Return the profile of the authenticated caller
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=handlers.UserResponse}
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, apperror.Unauthenticated("You are not authorized"))
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", identity.UserID).Error; err != nil {
		response.Error(c, apperror.Unauthenticated("User not found or inactive"))
		return
	}

	response.Success(c, http.StatusOK, "Profile retrieved successfully", toUserResponse(user))
}
