package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/nightstay/backend-go/internal/database/repository"
	"github.com/nightstay/backend-go/internal/database/service"
	"github.com/nightstay/backend-go/internal/testutil"
)

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantError  string
	}{
		{err: fmt.Errorf("%w: from is required", service.ErrInvalidInput), wantStatus: http.StatusBadRequest, wantError: "from is required"},
		{err: service.ErrEmailAlreadyExists, wantStatus: http.StatusConflict},
		{err: service.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized},
		{err: service.ErrTooManyAttempts, wantStatus: http.StatusTooManyRequests},
		{err: service.ErrInvalidToken, wantStatus: http.StatusUnauthorized},
		{err: repository.ErrTokenNotFound, wantStatus: http.StatusUnauthorized},
		{err: repository.ErrUserNotFound, wantStatus: http.StatusNotFound},
		{err: repository.ErrLocationNotFound, wantStatus: http.StatusNotFound, wantError: "Location not found"},
		{err: repository.ErrLocationInUse, wantStatus: http.StatusConflict, wantError: "Cannot delete location that has sleep entries"},
		{err: repository.ErrEntryNotFound, wantStatus: http.StatusNotFound, wantError: "Sleep entry not found"},
		{err: fmt.Errorf("wrapped: %w", repository.ErrEntryNotFound), wantStatus: http.StatusNotFound},
		{err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantError: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			handleServiceError(c, testutil.TestLogger(), tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, errorMessage(t, w))
			}
		})
	}
}
