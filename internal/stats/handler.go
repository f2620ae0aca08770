package stats

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/internal/middleware"
	"github.com/gardenhub/backend/internal/store"
	"github.com/gardenhub/backend/pkg/request"
	"github.com/gardenhub/backend/pkg/response"
)

// CreateStatRequest is the body for POST /stats.
type CreateStatRequest struct {
	GardenID   uuid.UUID  `json:"garden_id" binding:"required"`
	StatType   string     `json:"stat_type" binding:"required,max=100"`
	Value      *float64   `json:"value" binding:"required"`
	Unit       string     `json:"unit" binding:"max=50"`
	Notes      string     `json:"notes"`
	RecordedAt *time.Time `json:"recorded_at"`
}

// UpdateStatRequest is the body for PUT /stats/:id. Omitted fields are left unchanged.
type UpdateStatRequest struct {
	StatType   *string    `json:"stat_type" binding:"omitempty,max=100"`
	Value      *float64   `json:"value"`
	Unit       *string    `json:"unit" binding:"omitempty,max=50"`
	Notes      *string    `json:"notes"`
	RecordedAt *time.Time `json:"recorded_at"`
}

// Handler handles stat HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a stats handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Create handles POST /stats.
func (h *Handler) Create(c *gin.Context) {
	var body CreateStatRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	st, err := h.svc.Create(c.Request.Context(), middleware.MustIdentity(c), CreateInput{
		GardenID:   body.GardenID,
		StatType:   body.StatType,
		Value:      *body.Value,
		Unit:       body.Unit,
		Notes:      body.Notes,
		RecordedAt: body.RecordedAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, st)
}

// List handles GET /stats?garden_id=&stat_type=.
func (h *Handler) List(c *gin.Context) {
	gardenID, ok := request.QueryID(c, "garden_id")
	if !ok {
		return
	}
	limit, offset := request.Page(c)
	list, err := h.svc.List(c.Request.Context(), store.ListFilter{
		GardenID: gardenID,
		StatType: c.Query("stat_type"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Get handles GET /stats/:id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := request.PathID(c, "id", "stat")
	if !ok {
		return
	}
	st, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, st)
}

// Update handles PUT /stats/:id.
func (h *Handler) Update(c *gin.Context) {
	id, ok := request.PathID(c, "id", "stat")
	if !ok {
		return
	}
	var body UpdateStatRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	st, err := h.svc.Update(c.Request.Context(), middleware.MustIdentity(c), id, UpdateInput{
		StatType:   body.StatType,
		Value:      body.Value,
		Unit:       body.Unit,
		Notes:      body.Notes,
		RecordedAt: body.RecordedAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, st)
}

// Delete handles DELETE /stats/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := request.PathID(c, "id", "stat")
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

// Routes mounts stat routes.
func (h *Handler) Routes(r gin.IRouter, auth gin.HandlerFunc) {
	s := r.Group("/stats")
	s.GET("", h.List)
	s.GET("/:id", h.Get)
	s.POST("", auth, h.Create)
	s.PUT("/:id", auth, h.Update)
	s.DELETE("/:id", auth, h.Delete)
}
