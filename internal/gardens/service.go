// Package gardens manages gardens and their memberships.
package gardens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/internal/apperr"
	"github.com/gardenhub/backend/internal/capacity"
	"github.com/gardenhub/backend/internal/lifecycle"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/policy"
	"github.com/gardenhub/backend/internal/store"
)

// CreateInput is a garden creation request. A nil MaxMembers takes the default.
type CreateInput struct {
	Name        string
	Description string
	Location    string
	Region      string
	MaxMembers  *int
}

// UpdateInput carries only the fields present in the request.
type UpdateInput struct {
	Name        *string
	Description *string
	Location    *string
	Region      *string
	MaxMembers  *int
}

// Service applies garden and membership rules.
type Service struct {
	store  store.Store
	logger *zap.Logger
}

// NewService creates a gardens service.
func NewService(s store.Store, logger *zap.Logger) *Service {
	return &Service{store: s, logger: logger}
}

// Create inserts the garden and makes the creator its coordinator in one transaction.
func (s *Service) Create(ctx context.Context, who models.Identity, in CreateInput) (*models.Garden, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	if in.Name == "" || in.Location == "" {
		return nil, apperr.Validation("name and location are required")
	}
	limit, err := capacity.MaxMembers(in.MaxMembers)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionCreate, policy.Resource{Entity: models.EntityGarden}); err != nil {
		return nil, err
	}
	g := &models.Garden{
		Name:        in.Name,
		Description: in.Description,
		Location:    in.Location,
		Region:      in.Region,
		MaxMembers:  limit,
		CreatedBy:   who.ID,
	}
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.Gardens().Create(ctx, g); err != nil {
			return err
		}
		return tx.Memberships().Insert(ctx, &models.Membership{
			UserID:   who.ID,
			GardenID: g.ID,
			Role:     models.GardenRoleCoordinator,
		})
	})
	if err != nil {
		return nil, store.AppErr(err, "garden")
	}
	s.logger.Info("garden created", zap.String("garden_id", g.ID.String()), zap.String("user_id", who.ID.String()))
	return g, nil
}

// Get returns an active garden.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Garden, error) {
	g, err := s.store.Gardens().Get(ctx, id)
	return g, store.AppErr(err, "garden")
}

// List returns active gardens.
func (s *Service) List(ctx context.Context, f store.ListFilter) ([]models.Garden, error) {
	list, err := s.store.Gardens().List(ctx, f)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Garden{}
	}
	return list, nil
}

// Update applies a partial update. A new member limit must be positive and not below the
// current number of active members.
func (s *Service) Update(ctx context.Context, who models.Identity, id uuid.UUID, in UpdateInput) (*models.Garden, error) {
	var p store.Patch
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		p.Set("name", name)
	}
	if in.Description != nil {
		p.Set("description", *in.Description)
	}
	if in.Location != nil {
		loc := strings.TrimSpace(*in.Location)
		if loc == "" {
			return nil, apperr.Validation("location cannot be empty")
		}
		p.Set("location", loc)
	}
	if in.Region != nil {
		p.Set("region", *in.Region)
	}
	if in.MaxMembers != nil {
		if *in.MaxMembers <= 0 {
			return nil, apperr.Validation("max_members must be a positive integer")
		}
		p.Set("max_members", *in.MaxMembers)
	}
	if p.Empty() {
		return nil, apperr.New(apperr.NoFieldsToUpdate, "no fields to update")
	}

	var updated *models.Garden
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		g, err := tx.Gardens().Get(ctx, id, store.ForUpdate())
		if err != nil {
			return store.AppErr(err, "garden")
		}
		if err := policy.Authorize(ctx, tx.Memberships(), who, policy.ActionUpdate, policy.Resource{
			Entity: models.EntityGarden, OwnerID: g.CreatedBy, GardenID: &g.ID,
		}); err != nil {
			return err
		}
		if in.MaxMembers != nil {
			n, err := tx.Memberships().CountActive(ctx, id)
			if err != nil {
				return err
			}
			if *in.MaxMembers < n {
				return apperr.Validation(fmt.Sprintf("max_members cannot be below the current %d active members", n))
			}
		}
		updated, err = tx.Gardens().Update(ctx, id, p)
		return store.AppErr(err, "garden")
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete soft-deletes the garden. Memberships are kept for history.
func (s *Service) Delete(ctx context.Context, who models.Identity, id uuid.UUID) (lifecycle.Mode, error) {
	g, err := s.store.Gardens().Get(ctx, id)
	if err != nil {
		return lifecycle.ModeOf(models.EntityGarden), store.AppErr(err, "garden")
	}
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionDelete, policy.Resource{
		Entity: models.EntityGarden, OwnerID: g.CreatedBy, GardenID: &g.ID,
	}); err != nil {
		return lifecycle.ModeOf(models.EntityGarden), err
	}
	mode, err := s.store.Gardens().Delete(ctx, id)
	if err != nil {
		return mode, store.AppErr(err, "garden")
	}
	s.logger.Info("garden deleted", zap.String("garden_id", id.String()), zap.String("by", who.ID.String()), zap.Stringer("mode", mode))
	return mode, nil
}

// Join admits the caller to the garden. The garden row is locked while the active members
// are counted so concurrent joins cannot overshoot the limit. Joining again while active
// returns the existing membership.
func (s *Service) Join(ctx context.Context, who models.Identity, gardenID uuid.UUID) (*models.Membership, error) {
	var m *models.Membership
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		g, err := tx.Gardens().Get(ctx, gardenID, store.ForUpdate())
		if err != nil {
			return store.AppErr(err, "garden")
		}
		existing, err := tx.Memberships().Get(ctx, who.ID, gardenID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if existing != nil && existing.IsActive {
			m = existing
			return nil
		}
		n, err := tx.Memberships().CountActive(ctx, gardenID)
		if err != nil {
			return err
		}
		if err := capacity.Admit(n, g.MaxMembers, apperr.GardenFull); err != nil {
			return err
		}
		if existing != nil {
			m, err = tx.Memberships().Reactivate(ctx, who.ID, gardenID)
			return store.AppErr(err, "membership")
		}
		m = &models.Membership{UserID: who.ID, GardenID: gardenID, Role: models.GardenRoleMember}
		return store.AppErr(tx.Memberships().Insert(ctx, m), "membership")
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Leave deactivates the caller's membership.
func (s *Service) Leave(ctx context.Context, who models.Identity, gardenID uuid.UUID) error {
	err := s.store.Memberships().Deactivate(ctx, who.ID, gardenID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.Missing("no active membership in this garden")
	}
	return err
}

// Members lists the active members of an active garden.
func (s *Service) Members(ctx context.Context, gardenID uuid.UUID) ([]models.Member, error) {
	if _, err := s.store.Gardens().Get(ctx, gardenID); err != nil {
		return nil, store.AppErr(err, "garden")
	}
	list, err := s.store.Memberships().ListActive(ctx, gardenID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Member{}
	}
	return list, nil
}
