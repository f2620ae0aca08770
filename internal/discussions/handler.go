package discussions

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/internal/middleware"
	"github.com/gardenhub/backend/internal/store"
	"github.com/gardenhub/backend/pkg/request"
	"github.com/gardenhub/backend/pkg/response"
)

// CreateDiscussionRequest is the body for POST /discussions.
type CreateDiscussionRequest struct {
	Title    string     `json:"title" binding:"required,max=255"`
	Content  string     `json:"content" binding:"required"`
	Category string     `json:"category" binding:"max=50"`
	GardenID *uuid.UUID `json:"garden_id"`
}

// UpdateDiscussionRequest is the body for PUT /discussions/:id. Omitted fields are left unchanged.
type UpdateDiscussionRequest struct {
	Title    *string `json:"title" binding:"omitempty,max=255"`
	Content  *string `json:"content"`
	Category *string `json:"category" binding:"omitempty,max=50"`
	IsPinned *bool   `json:"is_pinned"`
}

// CreateReplyRequest is the body for POST /discussions/:id/replies.
type CreateReplyRequest struct {
	Content       string     `json:"content" binding:"required"`
	ParentReplyID *uuid.UUID `json:"parent_reply_id"`
}

// UpdateReplyRequest is the body for PUT /replies/:id.
type UpdateReplyRequest struct {
	Content *string `json:"content"`
}

// Handler handles discussion and reply HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a discussions handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Create handles POST /discussions.
func (h *Handler) Create(c *gin.Context) {
	var body CreateDiscussionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	d, err := h.svc.Create(c.Request.Context(), middleware.MustIdentity(c), CreateInput{
		Title:    body.Title,
		Content:  body.Content,
		Category: body.Category,
		GardenID: body.GardenID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, d)
}

// List handles GET /discussions?garden_id=&category=&search=.
func (h *Handler) List(c *gin.Context) {
	gardenID, ok := request.QueryID(c, "garden_id")
	if !ok {
		return
	}
	limit, offset := request.Page(c)
	list, err := h.svc.List(c.Request.Context(), store.ListFilter{
		GardenID: gardenID,
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Get handles GET /discussions/:id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := request.PathID(c, "id", "discussion")
	if !ok {
		return
	}
	d, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, d)
}

// Update handles PUT /discussions/:id.
func (h *Handler) Update(c *gin.Context) {
	id, ok := request.PathID(c, "id", "discussion")
	if !ok {
		return
	}
	var body UpdateDiscussionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	d, err := h.svc.Update(c.Request.Context(), middleware.MustIdentity(c), id, UpdateInput{
		Title:    body.Title,
		Content:  body.Content,
		Category: body.Category,
		IsPinned: body.IsPinned,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, d)
}

// Delete handles DELETE /discussions/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := request.PathID(c, "id", "discussion")
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

// ListReplies handles GET /discussions/:id/replies.
func (h *Handler) ListReplies(c *gin.Context) {
	id, ok := request.PathID(c, "id", "discussion")
	if !ok {
		return
	}
	list, err := h.svc.Replies(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// CreateReply handles POST /discussions/:id/replies.
func (h *Handler) CreateReply(c *gin.Context) {
	id, ok := request.PathID(c, "id", "discussion")
	if !ok {
		return
	}
	var body CreateReplyRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	r, err := h.svc.Reply(c.Request.Context(), middleware.MustIdentity(c), id, ReplyInput{
		Content:       body.Content,
		ParentReplyID: body.ParentReplyID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, r)
}

// GetReply handles GET /replies/:id.
func (h *Handler) GetReply(c *gin.Context) {
	id, ok := request.PathID(c, "id", "reply")
	if !ok {
		return
	}
	r, err := h.svc.GetReply(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, r)
}

// UpdateReply handles PUT /replies/:id.
func (h *Handler) UpdateReply(c *gin.Context) {
	id, ok := request.PathID(c, "id", "reply")
	if !ok {
		return
	}
	var body UpdateReplyRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	r, err := h.svc.UpdateReply(c.Request.Context(), middleware.MustIdentity(c), id, body.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, r)
}

// DeleteReply handles DELETE /replies/:id.
func (h *Handler) DeleteReply(c *gin.Context) {
	id, ok := request.PathID(c, "id", "reply")
	if !ok {
		return
	}
	mode, err := h.svc.DeleteReply(c.Request.Context(), middleware.MustIdentity(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"id": id, "status": mode.String()})
}

// Routes mounts discussion and reply routes. auth guards mutations.
func (h *Handler) Routes(r gin.IRouter, auth gin.HandlerFunc) {
	d := r.Group("/discussions")
	d.GET("", h.List)
	d.GET("/:id", h.Get)
	d.GET("/:id/replies", h.ListReplies)
	d.POST("", auth, h.Create)
	d.PUT("/:id", auth, h.Update)
	d.DELETE("/:id", auth, h.Delete)
	d.POST("/:id/replies", auth, h.CreateReply)

	rp := r.Group("/replies")
	rp.GET("/:id", h.GetReply)
	rp.PUT("/:id", auth, h.UpdateReply)
	rp.DELETE("/:id", auth, h.DeleteReply)
}
