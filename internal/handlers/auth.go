package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/socialapp/socialapp/internal/middleware"
	"github.com/socialapp/socialapp/internal/services"
)

type AuthHandler struct {
	userService *services.UserService
	jwtSecret   string
	jwtExpire   time.Duration
	denylist    middleware.TokenDenylist
}

func NewAuthHandler(userService *services.UserService, jwtSecret string, jwtExpire time.Duration, denylist middleware.TokenDenylist) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtSecret:   jwtSecret,
		jwtExpire:   jwtExpire,
		denylist:    denylist,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful. Please log in.",
		"user":    user,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user.ID.String(), user.Username, h.jwtSecret, int64(h.jwtExpire.Seconds()))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// Logout denylists the presented token for its remaining lifetime.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.GetToken(c)
	if token == "" || h.denylist == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
		return
	}

	ttl := h.jwtExpire
	if claims, err := middleware.ParseToken(token, h.jwtSecret); err == nil && claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}

	if err := h.denylist.Revoke(c.Request.Context(), token, ttl); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign out"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}
