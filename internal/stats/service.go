// Package stats records garden measurements.
package stats

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/internal/apperr"
	"github.com/gardenhub/backend/internal/lifecycle"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/policy"
	"github.com/gardenhub/backend/internal/store"
)

// CreateInput is a new measurement. A nil RecordedAt means now.
type CreateInput struct {
	GardenID   uuid.UUID
	StatType   string
	Value      float64
	Unit       string
	Notes      string
	RecordedAt *time.Time
}

// UpdateInput carries only the fields present in the request.
type UpdateInput struct {
	StatType   *string
	Value      *float64
	Unit       *string
	Notes      *string
	RecordedAt *time.Time
}

// Service applies stat rules.
type Service struct {
	store  store.Store
	logger *zap.Logger
}

// NewService creates a stats service.
func NewService(s store.Store, logger *zap.Logger) *Service {
	return &Service{store: s, logger: logger}
}

// Create records a measurement for a garden the caller is an active member of.
func (s *Service) Create(ctx context.Context, who models.Identity, in CreateInput) (*models.Stat, error) {
	if in.GardenID == uuid.Nil {
		return nil, apperr.Validation("garden_id is required")
	}
	in.StatType = strings.TrimSpace(in.StatType)
	if in.StatType == "" {
		return nil, apperr.Validation("stat_type is required")
	}
	if math.IsNaN(in.Value) || math.IsInf(in.Value, 0) {
		return nil, apperr.Validation("value must be a finite number")
	}
	if _, err := s.store.Gardens().Get(ctx, in.GardenID); err != nil {
		return nil, store.AppErr(err, "garden")
	}
	gardenID := in.GardenID
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionCreate, policy.Resource{
		Entity: models.EntityStat, GardenID: &gardenID,
	}); err != nil {
		return nil, err
	}
	st := &models.Stat{
		GardenID:   in.GardenID,
		StatType:   in.StatType,
		Value:      in.Value,
		Unit:       in.Unit,
		Notes:      in.Notes,
		RecordedBy: who.ID,
	}
	if in.RecordedAt != nil {
		st.RecordedAt = *in.RecordedAt
	}
	if err := s.store.Stats().Create(ctx, st); err != nil {
		return nil, store.AppErr(err, "stat")
	}
	return st, nil
}

// Get returns a measurement.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Stat, error) {
	st, err := s.store.Stats().Get(ctx, id)
	return st, store.AppErr(err, "stat")
}

// List returns a garden's measurements, most recent first.
func (s *Service) List(ctx context.Context, f store.ListFilter) ([]models.Stat, error) {
	if f.GardenID == nil {
		return nil, apperr.Validation("garden_id is required")
	}
	list, err := s.store.Stats().List(ctx, f)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Stat{}
	}
	return list, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, who models.Identity, id uuid.UUID, in UpdateInput) (*models.Stat, error) {
	var p store.Patch
	if in.StatType != nil {
		t := strings.TrimSpace(*in.StatType)
		if t == "" {
			return nil, apperr.Validation("stat_type cannot be empty")
		}
		p.Set("stat_type", t)
	}
	if in.Value != nil {
		if math.IsNaN(*in.Value) || math.IsInf(*in.Value, 0) {
			return nil, apperr.Validation("value must be a finite number")
		}
		p.Set("value", *in.Value)
	}
	if in.Unit != nil {
		p.Set("unit", *in.Unit)
	}
	if in.Notes != nil {
		p.Set("notes", *in.Notes)
	}
	if in.RecordedAt != nil {
		if in.RecordedAt.IsZero() {
			return nil, apperr.Validation("recorded_at cannot be empty")
		}
		p.Set("recorded_at", *in.RecordedAt)
	}
	if p.Empty() {
		return nil, apperr.New(apperr.NoFieldsToUpdate, "no fields to update")
	}
	st, err := s.store.Stats().Get(ctx, id)
	if err != nil {
		return nil, store.AppErr(err, "stat")
	}
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionUpdate, resource(st)); err != nil {
		return nil, err
	}
	updated, err := s.store.Stats().Update(ctx, id, p)
	return updated, store.AppErr(err, "stat")
}

// Delete removes a measurement.
func (s *Service) Delete(ctx context.Context, who models.Identity, id uuid.UUID) (lifecycle.Mode, error) {
	st, err := s.store.Stats().Get(ctx, id)
	if err != nil {
		return lifecycle.ModeOf(models.EntityStat), store.AppErr(err, "stat")
	}
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionDelete, resource(st)); err != nil {
		return lifecycle.ModeOf(models.EntityStat), err
	}
	mode, err := s.store.Stats().Delete(ctx, id)
	if err != nil {
		return mode, store.AppErr(err, "stat")
	}
	s.logger.Info("stat deleted", zap.String("stat_id", id.String()), zap.String("by", who.ID.String()))
	return mode, nil
}

func resource(st *models.Stat) policy.Resource {
	gardenID := st.GardenID
	return policy.Resource{Entity: models.EntityStat, OwnerID: st.RecordedBy, GardenID: &gardenID}
}
