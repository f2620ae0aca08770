package photos

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/internal/apperr"
	"github.com/gardenhub/backend/internal/middleware"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/store/memory"
)

func multipartBody(t *testing.T, filename string, size int) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Tomatoes"))
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(strings.Repeat("x", size)))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadBodyIsCapped(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := memory.New()
	blobs := newFakeBlob()
	const limit = 1 << 10
	h := NewHandler(NewService(st, blobs, nil, limit, zap.NewNop()), zap.NewNop())
	alice := st.SeedUser("alice", models.RoleMember)

	r := gin.New()
	r.POST("/photos", func(c *gin.Context) { c.Set(middleware.ContextIdentity, alice) }, h.Upload)

	post := func(size int) (int, string, apperr.Kind) {
		body, contentType := multipartBody(t, "bed.png", size)
		req := httptest.NewRequest(http.MethodPost, "/photos", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		var env struct {
			Code  apperr.Kind `json:"code"`
			Error string      `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		return w.Code, env.Error, env.Code
	}

	code, msg, kind := post(4 * formOverhead)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, apperr.ValidationFailed, kind)
	assert.Equal(t, "file exceeds the upload size limit", msg)
	assert.Empty(t, blobs.objects)

	code, msg, _ = post(limit + 1)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "file exceeds the upload size limit", msg)

	code, msg, _ = post(limit)
	assert.Equal(t, http.StatusCreated, code, msg)
	assert.Len(t, blobs.objects, 1)
}
