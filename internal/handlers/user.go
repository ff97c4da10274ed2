package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/socialapp/socialapp/internal/middleware"
	"github.com/socialapp/socialapp/internal/services"
)

type UserHandler struct {
	userService         *services.UserService
	notificationService *services.NotificationService
}

func NewUserHandler(userService *services.UserService, notificationService *services.NotificationService) *UserHandler {
	return &UserHandler{
		userService:         userService,
		notificationService: notificationService,
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	username := c.Param("username")
	viewerID := middleware.GetUserID(c)

	view, err := h.userService.GetProfile(c.Request.Context(), username, viewerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"profile": profile,
	})
}

func (h *UserHandler) ToggleFollow(c *gin.Context) {
	followerID := middleware.GetUserID(c)
	username := c.Param("username")

	status, err := h.userService.ToggleFollow(c.Request.Context(), followerID, username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *UserHandler) GetNotifications(c *gin.Context) {
	userID := middleware.GetUserID(c)
	offset, limit := pagination(c)

	notifications, err := h.notificationService.List(c.Request.Context(), userID, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func pagination(c *gin.Context) (int, int) {
	query := struct {
		Offset int `form:"offset"`
		Limit  int `form:"limit"`
	}{Limit: 20}

	if err := c.ShouldBindQuery(&query); err != nil {
		return 0, 20
	}
	if query.Limit > 100 {
		query.Limit = 100
	}
	if query.Limit < 1 {
		query.Limit = 20
	}
	if query.Offset < 0 {
		query.Offset = 0
	}
	return query.Offset, query.Limit
}
