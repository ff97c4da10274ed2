package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/socialapp/socialapp/internal/services"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err  error
		want int
	}{
		{err: services.ErrTooManyAttempts, want: http.StatusTooManyRequests},
		{err: services.ErrPermissionDenied, want: http.StatusForbidden},
		{err: services.ErrInvalidCredentials, want: http.StatusUnauthorized},
		{err: services.ErrAccountBlocked, want: http.StatusUnauthorized},
		{err: services.ErrUserNotFound, want: http.StatusNotFound},
		{err: services.ErrPostNotFound, want: http.StatusNotFound},
		{err: services.ErrCommentNotFound, want: http.StatusNotFound},
		{err: services.ErrChatNotFound, want: http.StatusNotFound},
		{err: services.ErrBothMedia, want: http.StatusBadRequest},
		{err: services.ErrSelfFollow, want: http.StatusBadRequest},
		{err: fmt.Errorf("wrapped: %w", services.ErrPostNotFound), want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tt.err)

			assert.Equal(t, tt.want, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}
