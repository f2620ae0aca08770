package gardens

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/internal/middleware"
	"github.com/gardenhub/backend/internal/store"
	"github.com/gardenhub/backend/pkg/request"
	"github.com/gardenhub/backend/pkg/response"
)

// CreateGardenRequest is the body for POST /gardens.
type CreateGardenRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
	Location    string `json:"location" binding:"required,max=255"`
	Region      string `json:"region" binding:"max=100"`
	MaxMembers  *int   `json:"max_members"`
}

// UpdateGardenRequest is the body for PUT /gardens/:id. Omitted fields are left unchanged.
type UpdateGardenRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description"`
	Location    *string `json:"location" binding:"omitempty,max=255"`
	Region      *string `json:"region" binding:"omitempty,max=100"`
	MaxMembers  *int    `json:"max_members"`
}

// Handler handles garden HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a gardens handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Create handles POST /gardens. The caller becomes the garden's coordinator.
func (h *Handler) Create(c *gin.Context) {
	var body CreateGardenRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	g, err := h.svc.Create(c.Request.Context(), middleware.MustIdentity(c), CreateInput{
		Name:        body.Name,
		Description: body.Description,
		Location:    body.Location,
		Region:      body.Region,
		MaxMembers:  body.MaxMembers,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, g)
}

// List handles GET /gardens?region=&search=&limit=&offset=.
func (h *Handler) List(c *gin.Context) {
	limit, offset := request.Page(c)
	list, err := h.svc.List(c.Request.Context(), store.ListFilter{
		Region: c.Query("region"),
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Get handles GET /gardens/:id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := request.PathID(c, "id", "garden")
	if !ok {
		return
	}
	g, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, g)
}

// Update handles PUT /gardens/:id.
func (h *Handler) Update(c *gin.Context) {
	id, ok := request.PathID(c, "id", "garden")
	if !ok {
		return
	}
	var body UpdateGardenRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	g, err := h.svc.Update(c.Request.Context(), middleware.MustIdentity(c), id, UpdateInput{
		Name:        body.Name,
		Description: body.Description,
		Location:    body.Location,
		Region:      body.Region,
		MaxMembers:  body.MaxMembers,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, g)
}

// Delete handles DELETE /gardens/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := request.PathID(c, "id", "garden")
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

// Join handles POST /gardens/:id/join.
func (h *Handler) Join(c *gin.Context) {
	id, ok := request.PathID(c, "id", "garden")
	if !ok {
		return
	}
	m, err := h.svc.Join(c.Request.Context(), middleware.MustIdentity(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, m)
}

// Leave handles POST /gardens/:id/leave.
func (h *Handler) Leave(c *gin.Context) {
	id, ok := request.PathID(c, "id", "garden")
	if !ok {
		return
	}
	if err := h.svc.Leave(c.Request.Context(), middleware.MustIdentity(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"garden_id": id, "left": true})
}

// Members handles GET /gardens/:id/members.
func (h *Handler) Members(c *gin.Context) {
	id, ok := request.PathID(c, "id", "garden")
	if !ok {
		return
	}
	list, err := h.svc.Members(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Routes mounts the garden routes. auth guards mutations.
func (h *Handler) Routes(r gin.IRouter, auth gin.HandlerFunc) {
	g := r.Group("/gardens")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.GET("/:id/members", h.Members)
	g.POST("", auth, h.Create)
	g.PUT("/:id", auth, h.Update)
	g.DELETE("/:id", auth, h.Delete)
	g.POST("/:id/join", auth, h.Join)
	g.POST("/:id/leave", auth, h.Leave)
}
