package resources

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/internal/middleware"
	"github.com/gardenhub/backend/internal/store"
	"github.com/gardenhub/backend/pkg/request"
	"github.com/gardenhub/backend/pkg/response"
)

// CreateResourceRequest is the body for POST /resources.
type CreateResourceRequest struct {
	Title       string   `json:"title" binding:"required,max=255"`
	Content     string   `json:"content" binding:"required"`
	Category    string   `json:"category" binding:"required,max=100"`
	IsPublished *bool    `json:"is_published"`
	Tags        []string `json:"tags"`
}

// UpdateResourceRequest is the body for PUT /resources/:id. Omitted fields are left unchanged.
type UpdateResourceRequest struct {
	Title       *string   `json:"title" binding:"omitempty,max=255"`
	Content     *string   `json:"content"`
	Category    *string   `json:"category" binding:"omitempty,max=100"`
	IsPublished *bool     `json:"is_published"`
	Tags        *[]string `json:"tags"`
}

// CreateGuideRequest is the body for POST /resources/:id/guides.
type CreateGuideRequest struct {
	StepNumber int    `json:"step_number" binding:"required"`
	Title      string `json:"title" binding:"required,max=255"`
	Content    string `json:"content" binding:"required"`
}

// UpdateGuideRequest is the body for PUT /guides/:id.
type UpdateGuideRequest struct {
	StepNumber *int    `json:"step_number"`
	Title      *string `json:"title" binding:"omitempty,max=255"`
	Content    *string `json:"content"`
}

// Handler handles resource and guide HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a resources handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Create handles POST /resources.
func (h *Handler) Create(c *gin.Context) {
	var body CreateResourceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	r, err := h.svc.Create(c.Request.Context(), middleware.MustIdentity(c), CreateInput{
		Title:       body.Title,
		Content:     body.Content,
		Category:    body.Category,
		IsPublished: body.IsPublished,
		Tags:        body.Tags,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, r)
}

// List handles GET /resources?category=&search=&author_id=.
func (h *Handler) List(c *gin.Context) {
	author, ok := request.QueryID(c, "author_id")
	if !ok {
		return
	}
	limit, offset := request.Page(c)
	list, err := h.svc.List(c.Request.Context(), store.ListFilter{
		AuthorID: author,
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Limit:    limit,
		Offset:   offset,
	}, middleware.Viewer(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Get handles GET /resources/:id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := request.PathID(c, "id", "resource")
	if !ok {
		return
	}
	r, err := h.svc.Get(c.Request.Context(), middleware.Viewer(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, r)
}

// Update handles PUT /resources/:id.
func (h *Handler) Update(c *gin.Context) {
	id, ok := request.PathID(c, "id", "resource")
	if !ok {
		return
	}
	var body UpdateResourceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	r, err := h.svc.Update(c.Request.Context(), middleware.MustIdentity(c), id, UpdateInput{
		Title:       body.Title,
		Content:     body.Content,
		Category:    body.Category,
		IsPublished: body.IsPublished,
		Tags:        body.Tags,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, r)
}

// Delete handles DELETE /resources/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := request.PathID(c, "id", "resource")
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

// Guides handles GET /resources/:id/guides.
func (h *Handler) Guides(c *gin.Context) {
	id, ok := request.PathID(c, "id", "resource")
	if !ok {
		return
	}
	list, err := h.svc.Guides(c.Request.Context(), middleware.Viewer(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// AddGuide handles POST /resources/:id/guides.
func (h *Handler) AddGuide(c *gin.Context) {
	id, ok := request.PathID(c, "id", "resource")
	if !ok {
		return
	}
	var body CreateGuideRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	g, err := h.svc.AddGuide(c.Request.Context(), middleware.MustIdentity(c), id, GuideInput{
		StepNumber: body.StepNumber,
		Title:      body.Title,
		Content:    body.Content,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, g)
}

// UpdateGuide handles PUT /guides/:id.
func (h *Handler) UpdateGuide(c *gin.Context) {
	id, ok := request.PathID(c, "id", "guide")
	if !ok {
		return
	}
	var body UpdateGuideRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	g, err := h.svc.UpdateGuide(c.Request.Context(), middleware.MustIdentity(c), id, GuideUpdate{
		StepNumber: body.StepNumber,
		Title:      body.Title,
		Content:    body.Content,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, g)
}

// DeleteGuide handles DELETE /guides/:id.
func (h *Handler) DeleteGuide(c *gin.Context) {
	id, ok := request.PathID(c, "id", "guide")
	if !ok {
		return
	}
	mode, err := h.svc.DeleteGuide(c.Request.Context(), middleware.MustIdentity(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"id": id, "status": mode.String()})
}

// Routes mounts resource and guide routes.
func (h *Handler) Routes(r gin.IRouter, optional, auth gin.HandlerFunc) {
	res := r.Group("/resources")
	res.GET("", optional, h.List)
	res.GET("/:id", optional, h.Get)
	res.GET("/:id/guides", optional, h.Guides)
	res.POST("", auth, h.Create)
	res.PUT("/:id", auth, h.Update)
	res.DELETE("/:id", auth, h.Delete)
	res.POST("/:id/guides", auth, h.AddGuide)

	g := r.Group("/guides")
	g.PUT("/:id", auth, h.UpdateGuide)
	g.DELETE("/:id", auth, h.DeleteGuide)
}
