package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		message string
		details []ErrorDetail
		status  int
		want    string
	}{
		{
			name:    "login validation",
			code:    ErrCodeValidation,
			message: "validation failed",
			details: []ErrorDetail{{Field: "password", Message: "password is required"}},
			status:  http.StatusBadRequest,
			want:    `{"code":"ERR_003","message":"validation failed","details":[{"field":"password","message":"password is required"}]}`,
		},
		{
			name:    "unauthorized omits details",
			code:    ErrCodeAuthentication,
			message: "Unauthorized",
			status:  http.StatusUnauthorized,
			want:    `{"code":"ERR_002","message":"Unauthorized"}`,
		},
		{
			name:    "login throttled",
			code:    ErrCodeRateLimited,
			message: "Too many requests",
			status:  http.StatusTooManyRequests,
			want:    `{"code":"ERR_006","message":"Too many requests"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			RespondWithError(w, tt.code, tt.message, tt.details, tt.status)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}

func TestRespondWithMessage(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithMessage(w, "Rate limit exceeded. Maximum 10 requests per minute.", http.StatusTooManyRequests)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, map[string]interface{}{"message": "Rate limit exceeded. Maximum 10 requests per minute."}, body)
}

func TestValidationErrors(t *testing.T) {
	var v ValidationErrors
	assert.False(t, v.HasErrors())
	assert.Empty(t, v.ToErrorDetails())

	v.Add("username", "username is required")
	v.Add("limit", "limit must be a non-negative integer")

	require.True(t, v.HasErrors())
	assert.Equal(t, []ErrorDetail{
		{Field: "username", Message: "username is required"},
		{Field: "limit", Message: "limit must be a non-negative integer"},
	}, v.ToErrorDetails())
}
