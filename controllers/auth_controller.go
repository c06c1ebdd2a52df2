package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/restaurant-oms/oms-api/middleware"
	"github.com/restaurant-oms/oms-api/services"
)

// CredentialsRequest represents the request body for login and registration
type CredentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthController signs users in and out.
type AuthController struct {
	auth *services.AuthService
	lg   *zap.Logger
}

// NewAuthController creates an auth controller.
func NewAuthController(auth *services.AuthService, lg *zap.Logger) *AuthController {
	return &AuthController{auth: auth, lg: lg}
}

// Login handles POST /api/v1/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req CredentialsRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := ac.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, ac.lg, err)
		return
	}

	respondOK(c, http.StatusOK, result)
}

// Register handles POST /api/v1/auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var req CredentialsRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := ac.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, ac.lg, err)
		return
	}

	respondOK(c, http.StatusCreated, result)
}

// Verify handles GET /api/v1/auth/verify - echoes the identity of a valid token
func (ac *AuthController) Verify(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondFail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"valid": true,
		"user": gin.H{
			"id":       userID,
			"username": c.GetString(middleware.ContextUsername),
			"role":     c.GetString(middleware.ContextRole),
		},
	})
}

// Logout handles POST /api/v1/auth/logout. Tokens are stateless, so the
// client discards its token and the server only acknowledges.
func (ac *AuthController) Logout(c *gin.Context) {
	if userID, err := middleware.GetUserID(c); err == nil {
		ac.lg.Info("User logged out", zap.Uint("user_id", userID))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out",
	})
}
