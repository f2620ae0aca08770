// Package users exposes profiles and the admin user-management operations.
package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/internal/apperr"
	"github.com/gardenhub/backend/internal/lifecycle"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/policy"
	"github.com/gardenhub/backend/internal/store"
)

// UpdateInput carries only the profile fields present in the request.
type UpdateInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Location  *string
}

// Service applies profile rules.
type Service struct {
	store  store.Store
	logger *zap.Logger
}

// NewService creates a users service.
func NewService(s store.Store, logger *zap.Logger) *Service {
	return &Service{store: s, logger: logger}
}

// Get returns the public view of a user.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.UserPublic, error) {
	u, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, store.AppErr(err, "user")
	}
	pub := u.ToPublic()
	return &pub, nil
}

// List returns all users. Callers are restricted to admins at the route.
func (s *Service) List(ctx context.Context, f store.ListFilter) ([]models.User, error) {
	list, err := s.store.Users().List(ctx, f)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.User{}
	}
	return list, nil
}

// Update applies a partial profile update. Users edit themselves; admins edit anyone.
// Applying the same input twice leaves the same stored profile.
func (s *Service) Update(ctx context.Context, who models.Identity, id uuid.UUID, in UpdateInput) (*models.User, error) {
	var p store.Patch
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email == "" {
			return nil, apperr.Validation("email cannot be empty")
		}
		p.Set("email", email)
	}
	if in.FirstName != nil {
		p.Set("first_name", strings.TrimSpace(*in.FirstName))
	}
	if in.LastName != nil {
		p.Set("last_name", strings.TrimSpace(*in.LastName))
	}
	if in.Bio != nil {
		p.Set("bio", *in.Bio)
	}
	if in.Location != nil {
		p.Set("location", strings.TrimSpace(*in.Location))
	}
	if p.Empty() {
		return nil, apperr.New(apperr.NoFieldsToUpdate, "no fields to update")
	}
	if _, err := s.store.Users().GetByID(ctx, id); err != nil {
		return nil, store.AppErr(err, "user")
	}
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionUpdate, policy.Resource{
		Entity: models.EntityUser, OwnerID: id,
	}); err != nil {
		return nil, err
	}
	u, err := s.store.Users().Update(ctx, id, p)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, apperr.Wrap(apperr.Conflict, "email is already in use", err)
		}
		return nil, store.AppErr(err, "user")
	}
	return u, nil
}

// ChangeRole sets a user's platform role. Admin only.
func (s *Service) ChangeRole(ctx context.Context, who models.Identity, id uuid.UUID, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, apperr.Validation("role must be one of member, moderator, admin")
	}
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionChangeRole, policy.Resource{
		Entity: models.EntityUser, OwnerID: id,
	}); err != nil {
		return nil, err
	}
	var p store.Patch
	p.Set("role", string(role))
	u, err := s.store.Users().Update(ctx, id, p)
	if err != nil {
		return nil, store.AppErr(err, "user")
	}
	s.logger.Info("user role changed", zap.String("user_id", id.String()), zap.String("role", string(role)), zap.String("by", who.ID.String()))
	return u, nil
}

// Delete removes a user account. Admin only; admins cannot delete themselves.
func (s *Service) Delete(ctx context.Context, who models.Identity, id uuid.UUID) (lifecycle.Mode, error) {
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionDelete, policy.Resource{
		Entity: models.EntityUser, OwnerID: id,
	}); err != nil {
		return lifecycle.ModeOf(models.EntityUser), err
	}
	if who.ID == id {
		return lifecycle.ModeOf(models.EntityUser), apperr.Validation("you cannot delete your own account")
	}
	mode, err := s.store.Users().Delete(ctx, id)
	if err != nil {
		return mode, store.AppErr(err, "user")
	}
	s.logger.Info("user deleted", zap.String("user_id", id.String()), zap.String("by", who.ID.String()))
	return mode, nil
}
