package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardenhub/backend/internal/apperr"
)

func render(t *testing.T, mode string, err error) (*httptest.ResponseRecorder, Body, *gin.Context) {
	t.Helper()
	gin.SetMode(mode)
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Error(c, err)
	var body Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body, c
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   apperr.Kind
	}{
		{apperr.New(apperr.Unauthenticated, "missing authorization header"), http.StatusUnauthorized, apperr.Unauthenticated},
		{apperr.New(apperr.InvalidToken, "invalid or expired token"), http.StatusUnauthorized, apperr.InvalidToken},
		{apperr.Forbid("no"), http.StatusForbidden, apperr.Forbidden},
		{apperr.Missing("garden not found"), http.StatusNotFound, apperr.NotFound},
		{apperr.New(apperr.GardenFull, "full"), http.StatusConflict, apperr.GardenFull},
		{apperr.New(apperr.EventFull, "full"), http.StatusConflict, apperr.EventFull},
		{apperr.New(apperr.NoFieldsToUpdate, "no fields to update"), http.StatusBadRequest, apperr.NoFieldsToUpdate},
		{errors.New("boom"), http.StatusInternalServerError, apperr.Unexpected},
	}
	for _, tt := range tests {
		w, body, _ := render(t, gin.TestMode, tt.err)
		assert.Equal(t, tt.status, w.Code)
		assert.Equal(t, tt.code, body.Code)
		assert.False(t, body.Success)
	}
}

func TestErrorHidesCauseInRelease(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.5:5432: connection refused")
	w, body, c := render(t, gin.ReleaseMode, apperr.Wrap(apperr.DatabaseUnavailable, "database unavailable", cause))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Empty(t, body.Detail)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	require.Len(t, c.Errors, 1)
}

func TestErrorDetailInDebug(t *testing.T) {
	_, body, _ := render(t, gin.DebugMode, errors.New("boom"))
	assert.Equal(t, "internal server error", body.Error)
	assert.Equal(t, "boom", body.Detail)
}
