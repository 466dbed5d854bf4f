package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   Kind
		status int
	}{
		{"bad request", NewBadRequest("x"), KindInvalidInput, http.StatusBadRequest},
		{"unauthorized", NewUnauthorized("x"), KindUnauthorized, http.StatusUnauthorized},
		{"forbidden", NewForbidden("x"), KindForbidden, http.StatusForbidden},
		{"not found", NewNotFound("x"), KindNotFound, http.StatusNotFound},
		{"conflict", NewConflict("x"), KindConflict, http.StatusConflict},
		{"record not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), KindNotFound, http.StatusNotFound},
		{"duplicate key", gorm.ErrDuplicatedKey, KindConflict, http.StatusConflict},
		{"wrapped app error", fmt.Errorf("outer: %w", NewForbidden("nope")), KindForbidden, http.StatusForbidden},
		{"unknown", errors.New("disk on fire"), KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromError(tt.err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.kind, appErr.Kind)
			assert.Equal(t, tt.status, appErr.HTTPStatus())
		})
	}

	assert.Nil(t, FromError(nil))
}

func TestEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success merges payload", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		OK(c, "done", gin.H{"task": gin.H{"id": "1"}})

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, body["status"])
		assert.Equal(t, "done", body["message"])
		assert.NotNil(t, body["task"])
	})

	t.Run("internal errors hide details", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
		Error(c, errors.New("pq: connection refused"))

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, false, body["status"])
		assert.Equal(t, "Internal server error", body["message"])
	})

	t.Run("abort stops chain", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		Abort(c, NewForbidden("Access denied"))

		assert.True(t, c.IsAborted())
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"status":false,"message":"Access denied"}`, w.Body.String())
	})
}
