package api

import (
	"errors"
	"net/http"

	"looknest/internal/service"
	"looknest/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := getIDFromParam(c, "user_id")
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			logger.L.Error("Error getting profile from service", zap.Error(err), zap.Uint("userID", userID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve profile"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":            user.ID,
			"username":      user.Username,
			"full_name":     user.FullName,
			"bio":           user.Bio,
			"profile_image": user.ProfileImage,
			"private":       user.Private,
		},
	})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	user, err := h.userService.UpdateProfile(userID, req)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.L.Error("Error updating profile via service", zap.Error(err), zap.Uint("userID", userID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user": gin.H{
			"id":            user.ID,
			"username":      user.Username,
			"full_name":     user.FullName,
			"bio":           user.Bio,
			"profile_image": user.ProfileImage,
			"private":       user.Private,
		},
	})
}

func (h *UserHandler) GetSettings(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	user, settings, err := h.userService.GetSettings(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			logger.L.Error("Error getting settings from service", zap.Error(err), zap.Uint("userID", userID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve settings"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"full_name":     user.FullName,
		"email":         user.Email,
		"username":      user.Username,
		"bio":           user.Bio,
		"profile_image": user.ProfileImage,
		"settings":      settings,
	})
}

func (h *UserHandler) UpdateSettings(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	var req service.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	user, settings, err := h.userService.UpdateSettings(userID, req)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.L.Error("Error updating settings via service", zap.Error(err), zap.Uint("userID", userID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Settings updated successfully",
		"user": gin.H{
			"id":            user.ID,
			"username":      user.Username,
			"full_name":     user.FullName,
			"email":         user.Email,
			"bio":           user.Bio,
			"profile_image": user.ProfileImage,
			"settings":      settings,
		},
	})
}
