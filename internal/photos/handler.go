package photos

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/internal/apperr"
	"github.com/gardenhub/backend/internal/middleware"
	"github.com/gardenhub/backend/internal/store"
	"github.com/gardenhub/backend/pkg/request"
	"github.com/gardenhub/backend/pkg/response"
)

// UpdatePhotoRequest is the body for PUT /photos/:id. Omitted fields are left unchanged.
type UpdatePhotoRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=255"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
}

// Handler handles photo HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a photos handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// formOverhead is the room left for multipart headers and the text fields.
const formOverhead = 64 << 10

// Upload handles POST /photos (multipart: file, title, description, garden_id, is_public).
func (h *Handler) Upload(c *gin.Context) {
	if limit := h.svc.MaxBytes(); limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+formOverhead)
	}
	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.BadRequest(c, "file exceeds the upload size limit")
			return
		}
		response.BadRequest(c, "missing file (form field: file)")
		return
	}
	if limit := h.svc.MaxBytes(); limit > 0 && file.Size > limit {
		response.BadRequest(c, "file exceeds the upload size limit")
		return
	}
	in := UploadInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
	}
	if raw := c.PostForm("garden_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid garden_id")
			return
		}
		in.GardenID = &id
	}
	if raw := c.PostForm("is_public"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "invalid is_public")
			return
		}
		in.IsPublic = &v
	}

	rc, err := file.Open()
	if err != nil {
		response.Error(c, apperr.Wrap(apperr.Unexpected, "failed to read file", err))
		return
	}
	defer rc.Close()
	in.Body = rc

	p, err := h.svc.Upload(c.Request.Context(), middleware.MustIdentity(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, p)
}

// List handles GET /photos?garden_id=&uploaded_by=.
func (h *Handler) List(c *gin.Context) {
	gardenID, ok := request.QueryID(c, "garden_id")
	if !ok {
		return
	}
	uploader, ok := request.QueryID(c, "uploaded_by")
	if !ok {
		return
	}
	limit, offset := request.Page(c)
	list, err := h.svc.List(c.Request.Context(), store.ListFilter{
		GardenID: gardenID,
		AuthorID: uploader,
		Limit:    limit,
		Offset:   offset,
	}, middleware.Viewer(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Get handles GET /photos/:id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := request.PathID(c, "id", "photo")
	if !ok {
		return
	}
	p, err := h.svc.Get(c.Request.Context(), middleware.Viewer(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, p)
}

// Update handles PUT /photos/:id.
func (h *Handler) Update(c *gin.Context) {
	id, ok := request.PathID(c, "id", "photo")
	if !ok {
		return
	}
	var body UpdatePhotoRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p, err := h.svc.Update(c.Request.Context(), middleware.MustIdentity(c), id, UpdateInput{
		Title:       body.Title,
		Description: body.Description,
		IsPublic:    body.IsPublic,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, p)
}

// Delete handles DELETE /photos/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := request.PathID(c, "id", "photo")
	if !ok {
		return
	}
	mode, err := h.svc.Delete(c.Request.Context(), middleware.MustIdentity(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"id": id, "status": mode.String()})
}

// Routes mounts photo routes. optional resolves the caller on reads; auth guards mutations.
func (h *Handler) Routes(r gin.IRouter, optional, auth gin.HandlerFunc) {
	p := r.Group("/photos")
	p.GET("", optional, h.List)
	p.GET("/:id", optional, h.Get)
	p.POST("", auth, h.Upload)
	p.PUT("/:id", auth, h.Update)
	p.DELETE("/:id", auth, h.Delete)
}
