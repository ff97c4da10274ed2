package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/socialapp/socialapp/internal/services"
)

// respondError maps domain errors onto the HTTP taxonomy: 403 for
// ownership violations, 404 for missing entities, 429 for the login
// throttle, 401 for credential failures, 400 for everything a caller
// can fix.
func respondError(c *gin.Context, err error) {
	status := http.StatusBadRequest

	switch {
	case errors.Is(err, services.ErrTooManyAttempts):
		status = http.StatusTooManyRequests
	case errors.Is(err, services.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrAccountBlocked):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrPostNotFound),
		errors.Is(err, services.ErrCommentNotFound),
		errors.Is(err, services.ErrChatNotFound):
		status = http.StatusNotFound
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
