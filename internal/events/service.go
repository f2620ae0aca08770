// Package events schedules garden events and records RSVPs.
package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/internal/apperr"
	"github.com/gardenhub/backend/internal/capacity"
	"github.com/gardenhub/backend/internal/lifecycle"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/policy"
	"github.com/gardenhub/backend/internal/store"
)

// CreateInput is a new event. A nil MaxAttendees means unlimited; a nil IsPublic means public.
type CreateInput struct {
	Title        string
	Description  string
	Location     string
	StartDate    time.Time
	EndDate      *time.Time
	GardenID     *uuid.UUID
	MaxAttendees *int
	IsPublic     *bool
}

// UpdateInput carries only the fields present in the request.
type UpdateInput struct {
	Title        *string
	Description  *string
	Location     *string
	StartDate    *time.Time
	EndDate      *time.Time
	MaxAttendees *int
	IsPublic     *bool
}

// Service applies event and RSVP rules.
type Service struct {
	store  store.Store
	logger *zap.Logger
}

// NewService creates an events service.
func NewService(s store.Store, logger *zap.Logger) *Service {
	return &Service{store: s, logger: logger}
}

// Create schedules an event. Garden events require an active membership.
func (s *Service) Create(ctx context.Context, who models.Identity, in CreateInput) (*models.Event, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, apperr.Validation("title is required")
	}
	if in.StartDate.IsZero() {
		return nil, apperr.Validation("start_date is required")
	}
	if in.EndDate != nil && in.EndDate.Before(in.StartDate) {
		return nil, apperr.Validation("end_date must not be before start_date")
	}
	if in.MaxAttendees != nil && *in.MaxAttendees <= 0 {
		return nil, apperr.Validation("max_attendees must be a positive integer")
	}
	if in.GardenID != nil {
		if _, err := s.store.Gardens().Get(ctx, *in.GardenID); err != nil {
			return nil, store.AppErr(err, "garden")
		}
	}
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionCreate, policy.Resource{
		Entity: models.EntityEvent, GardenID: in.GardenID,
	}); err != nil {
		return nil, err
	}
	e := &models.Event{
		Title:        in.Title,
		Description:  in.Description,
		Location:     in.Location,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		GardenID:     in.GardenID,
		CreatedBy:    who.ID,
		MaxAttendees: in.MaxAttendees,
		IsPublic:     in.IsPublic == nil || *in.IsPublic,
	}
	if err := s.store.Events().Create(ctx, e); err != nil {
		return nil, store.AppErr(err, "event")
	}
	return e, nil
}

// Get returns an event. A private event reads as missing unless viewer is its creator,
// an active member of its garden or an admin. viewer is nil for anonymous callers.
func (s *Service) Get(ctx context.Context, viewer *models.Identity, id uuid.UUID) (*models.Event, error) {
	e, err := s.store.Events().Get(ctx, id)
	if err != nil {
		return nil, store.AppErr(err, "event")
	}
	if e.IsPublic {
		return e, nil
	}
	ok, err := policy.CanView(ctx, s.store.Memberships(), viewer, policy.Resource{
		Entity: models.EntityEvent, OwnerID: e.CreatedBy, GardenID: e.GardenID,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Missing("event not found")
	}
	return e, nil
}

// List returns events by start date, hiding private events viewer may not see.
func (s *Service) List(ctx context.Context, f store.ListFilter, viewer *models.Identity) ([]models.Event, error) {
	switch {
	case viewer == nil:
		f.PublicOnly = true
	case !policy.SeesHidden(models.EntityEvent, viewer.Role):
		f.VisibleTo = &viewer.ID
	}
	list, err := s.store.Events().List(ctx, f)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Event{}
	}
	return list, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, who models.Identity, id uuid.UUID, in UpdateInput) (*models.Event, error) {
	var p store.Patch
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperr.Validation("title cannot be empty")
		}
		p.Set("title", title)
	}
	if in.Description != nil {
		p.Set("description", *in.Description)
	}
	if in.Location != nil {
		p.Set("location", *in.Location)
	}
	if in.StartDate != nil {
		if in.StartDate.IsZero() {
			return nil, apperr.Validation("start_date cannot be empty")
		}
		p.Set("start_date", *in.StartDate)
	}
	if in.EndDate != nil {
		p.Set("end_date", in.EndDate)
	}
	if in.MaxAttendees != nil {
		if *in.MaxAttendees <= 0 {
			return nil, apperr.Validation("max_attendees must be a positive integer")
		}
		p.Set("max_attendees", in.MaxAttendees)
	}
	if in.IsPublic != nil {
		p.Set("is_public", *in.IsPublic)
	}
	if p.Empty() {
		return nil, apperr.New(apperr.NoFieldsToUpdate, "no fields to update")
	}

	e, err := s.store.Events().Get(ctx, id)
	if err != nil {
		return nil, store.AppErr(err, "event")
	}
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionUpdate, policy.Resource{
		Entity: models.EntityEvent, OwnerID: e.CreatedBy, GardenID: e.GardenID,
	}); err != nil {
		return nil, err
	}
	start, end := e.StartDate, e.EndDate
	if in.StartDate != nil {
		start = *in.StartDate
	}
	if in.EndDate != nil {
		end = in.EndDate
	}
	if end != nil && end.Before(start) {
		return nil, apperr.Validation("end_date must not be before start_date")
	}
	updated, err := s.store.Events().Update(ctx, id, p)
	return updated, store.AppErr(err, "event")
}

// Delete removes the event and its RSVPs.
func (s *Service) Delete(ctx context.Context, who models.Identity, id uuid.UUID) (lifecycle.Mode, error) {
	e, err := s.store.Events().Get(ctx, id)
	if err != nil {
		return lifecycle.ModeOf(models.EntityEvent), store.AppErr(err, "event")
	}
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionDelete, policy.Resource{
		Entity: models.EntityEvent, OwnerID: e.CreatedBy, GardenID: e.GardenID,
	}); err != nil {
		return lifecycle.ModeOf(models.EntityEvent), err
	}
	mode, err := s.store.Events().Delete(ctx, id)
	if err != nil {
		return mode, store.AppErr(err, "event")
	}
	s.logger.Info("event deleted", zap.String("event_id", id.String()), zap.String("by", who.ID.String()))
	return mode, nil
}

// RSVP records the caller's status for the event. Moving to attending is admitted against
// max_attendees with the event row locked; every other transition always succeeds.
func (s *Service) RSVP(ctx context.Context, who models.Identity, eventID uuid.UUID, status models.RSVPStatus) (*models.EventAttendee, error) {
	if !status.Valid() {
		return nil, apperr.Validation("status must be one of attending, maybe, declined")
	}
	var a *models.EventAttendee
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		e, err := tx.Events().Get(ctx, eventID, store.ForUpdate())
		if err != nil {
			return store.AppErr(err, "event")
		}
		if err := s.admit(ctx, tx, who, e); err != nil {
			return err
		}
		var prev models.RSVPStatus
		existing, err := tx.Attendees().Get(ctx, eventID, who.ID)
		switch {
		case err == nil:
			prev = existing.RSVPStatus
		case !errors.Is(err, store.ErrNotFound):
			return err
		}
		if capacity.NeedsAttendeeCheck(prev, status) {
			n, err := tx.Attendees().CountAttending(ctx, eventID)
			if err != nil {
				return err
			}
			limit := 0
			if e.MaxAttendees != nil {
				limit = *e.MaxAttendees
			}
			if err := capacity.Admit(n, limit, apperr.EventFull); err != nil {
				return err
			}
		}
		a = &models.EventAttendee{EventID: eventID, UserID: who.ID, RSVPStatus: status}
		return store.AppErr(tx.Attendees().Upsert(ctx, a), "event")
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// admit decides who may RSVP: anyone to a public event, active members to a private garden
// event and only the creator to a private event without a garden.
func (s *Service) admit(ctx context.Context, tx store.Store, who models.Identity, e *models.Event) error {
	if e.IsPublic {
		return nil
	}
	if e.GardenID == nil {
		if e.CreatedBy == who.ID {
			return nil
		}
		return apperr.Forbid("this event is private")
	}
	role, err := tx.Memberships().ActiveRole(ctx, who.ID, *e.GardenID)
	if err != nil {
		return err
	}
	if role == "" {
		return apperr.Forbid("active membership in this garden is required")
	}
	return nil
}

// Attendees lists the RSVPs of an event viewer can see.
func (s *Service) Attendees(ctx context.Context, viewer *models.Identity, eventID uuid.UUID) ([]models.EventAttendee, error) {
	if _, err := s.Get(ctx, viewer, eventID); err != nil {
		return nil, err
	}
	list, err := s.store.Attendees().List(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.EventAttendee{}
	}
	return list, nil
}
