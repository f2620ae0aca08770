package users

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/internal/middleware"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/store"
	"github.com/gardenhub/backend/pkg/request"
	"github.com/gardenhub/backend/pkg/response"
)

// UpdateUserRequest is the body for PUT /users/:id. Omitted fields are left unchanged.
type UpdateUserRequest struct {
	Email     *string `json:"email" binding:"omitempty,email,max=255"`
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
	Bio       *string `json:"bio"`
	Location  *string `json:"location" binding:"omitempty,max=255"`
}

// ChangeRoleRequest is the body for PUT /users/:id/role.
type ChangeRoleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

// Handler handles user HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a users handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// List handles GET /users (admin).
func (h *Handler) List(c *gin.Context) {
	limit, offset := request.Page(c)
	list, err := h.svc.List(c.Request.Context(), store.ListFilter{
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

// Get handles GET /users/:id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := request.PathID(c, "id", "user")
	if !ok {
		return
	}
	u, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, u)
}

// Update handles PUT /users/:id.
func (h *Handler) Update(c *gin.Context) {
	id, ok := request.PathID(c, "id", "user")
	if !ok {
		return
	}
	var body UpdateUserRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	u, err := h.svc.Update(c.Request.Context(), middleware.MustIdentity(c), id, UpdateInput{
		Email:     body.Email,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Bio:       body.Bio,
		Location:  body.Location,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, u)
}

// ChangeRole handles PUT /users/:id/role.
func (h *Handler) ChangeRole(c *gin.Context) {
	id, ok := request.PathID(c, "id", "user")
	if !ok {
		return
	}
	var body ChangeRoleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	u, err := h.svc.ChangeRole(c.Request.Context(), middleware.MustIdentity(c), id, body.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, u)
}

// Delete handles DELETE /users/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := request.PathID(c, "id", "user")
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

// Routes mounts user routes. Listing is admin only; the rest is decided per operation.
func (h *Handler) Routes(r gin.IRouter, auth gin.HandlerFunc) {
	u := r.Group("/users")
	u.GET("", auth, middleware.RequireRole(models.RoleAdmin), h.List)
	u.GET("/:id", h.Get)
	u.PUT("/:id", auth, h.Update)
	u.PUT("/:id/role", auth, h.ChangeRole)
	u.DELETE("/:id", auth, h.Delete)
}
