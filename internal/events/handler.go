package events

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/internal/middleware"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/store"
	"github.com/gardenhub/backend/pkg/request"
	"github.com/gardenhub/backend/pkg/response"
)

// CreateEventRequest is the body for POST /events.
type CreateEventRequest struct {
	Title        string     `json:"title" binding:"required,max=255"`
	Description  string     `json:"description"`
	Location     string     `json:"location" binding:"max=255"`
	StartDate    time.Time  `json:"start_date" binding:"required"`
	EndDate      *time.Time `json:"end_date"`
	GardenID     *uuid.UUID `json:"garden_id"`
	MaxAttendees *int       `json:"max_attendees"`
	IsPublic     *bool      `json:"is_public"`
}

// UpdateEventRequest is the body for PUT /events/:id. Omitted fields are left unchanged.
type UpdateEventRequest struct {
	Title        *string    `json:"title" binding:"omitempty,max=255"`
	Description  *string    `json:"description"`
	Location     *string    `json:"location" binding:"omitempty,max=255"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	MaxAttendees *int       `json:"max_attendees"`
	IsPublic     *bool      `json:"is_public"`
}

// RSVPRequest is the body for POST /events/:id/rsvp.
type RSVPRequest struct {
	Status models.RSVPStatus `json:"status" binding:"required"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates an events handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Create handles POST /events.
func (h *Handler) Create(c *gin.Context) {
	var body CreateEventRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	e, err := h.svc.Create(c.Request.Context(), middleware.MustIdentity(c), CreateInput{
		Title:        body.Title,
		Description:  body.Description,
		Location:     body.Location,
		StartDate:    body.StartDate,
		EndDate:      body.EndDate,
		GardenID:     body.GardenID,
		MaxAttendees: body.MaxAttendees,
		IsPublic:     body.IsPublic,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, e)
}

// List handles GET /events?garden_id=&search=.
func (h *Handler) List(c *gin.Context) {
	gardenID, ok := request.QueryID(c, "garden_id")
	if !ok {
		return
	}
	limit, offset := request.Page(c)
	list, err := h.svc.List(c.Request.Context(), store.ListFilter{
		GardenID: gardenID,
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

// Get handles GET /events/:id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := request.PathID(c, "id", "event")
	if !ok {
		return
	}
	e, err := h.svc.Get(c.Request.Context(), middleware.Viewer(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, e)
}

// Update handles PUT /events/:id.
func (h *Handler) Update(c *gin.Context) {
	id, ok := request.PathID(c, "id", "event")
	if !ok {
		return
	}
	var body UpdateEventRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	e, err := h.svc.Update(c.Request.Context(), middleware.MustIdentity(c), id, UpdateInput{
		Title:        body.Title,
		Description:  body.Description,
		Location:     body.Location,
		StartDate:    body.StartDate,
		EndDate:      body.EndDate,
		MaxAttendees: body.MaxAttendees,
		IsPublic:     body.IsPublic,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, e)
}

// Delete handles DELETE /events/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := request.PathID(c, "id", "event")
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

// RSVP handles POST /events/:id/rsvp.
func (h *Handler) RSVP(c *gin.Context) {
	id, ok := request.PathID(c, "id", "event")
	if !ok {
		return
	}
	var body RSVPRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	a, err := h.svc.RSVP(c.Request.Context(), middleware.MustIdentity(c), id, body.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, a)
}

// Attendees handles GET /events/:id/attendees.
func (h *Handler) Attendees(c *gin.Context) {
	id, ok := request.PathID(c, "id", "event")
	if !ok {
		return
	}
	list, err := h.svc.Attendees(c.Request.Context(), middleware.Viewer(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Routes mounts event routes. optional resolves the caller on reads; auth guards mutations.
func (h *Handler) Routes(r gin.IRouter, optional, auth gin.HandlerFunc) {
	e := r.Group("/events")
	e.GET("", optional, h.List)
	e.GET("/:id", optional, h.Get)
	e.GET("/:id/attendees", optional, h.Attendees)
	e.POST("", auth, h.Create)
	e.PUT("/:id", auth, h.Update)
	e.DELETE("/:id", auth, h.Delete)
	e.POST("/:id/rsvp", auth, h.RSVP)
}
