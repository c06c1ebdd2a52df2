package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/restaurant-oms/oms-api/middleware"
	"github.com/restaurant-oms/oms-api/services"
)

// ChangePasswordRequest represents the request body for changing a password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// UserController serves the signed-in user's own account.
type UserController struct {
	auth *services.AuthService
	lg   *zap.Logger
}

// NewUserController creates a user controller.
func NewUserController(auth *services.AuthService, lg *zap.Logger) *UserController {
	return &UserController{auth: auth, lg: lg}
}

// GetMyProfile handles GET /api/v1/users/profile - gets current user's profile
func (uc *UserController) GetMyProfile(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondFail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	user, err := uc.auth.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, uc.lg, err)
		return
	}

	respondOK(c, http.StatusOK, user)
}

// ChangePassword handles POST /api/v1/users/change-password
func (uc *UserController) ChangePassword(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondFail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := uc.auth.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, uc.lg, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password updated",
	})
}
