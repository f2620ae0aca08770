// Package resources manages the shared resource library and its step-by-step guides.
package resources

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/internal/apperr"
	"github.com/gardenhub/backend/internal/lifecycle"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/policy"
	"github.com/gardenhub/backend/internal/store"
)

// CreateInput is a new resource. A nil IsPublished means published.
type CreateInput struct {
	Title       string
	Content     string
	Category    string
	IsPublished *bool
	Tags        []string
}

// UpdateInput carries only the fields present in the request.
type UpdateInput struct {
	Title       *string
	Content     *string
	Category    *string
	IsPublished *bool
	Tags        *[]string
}

// GuideInput is a new guide step.
type GuideInput struct {
	StepNumber int
	Title      string
	Content    string
}

// GuideUpdate carries only the fields present in the request.
type GuideUpdate struct {
	StepNumber *int
	Title      *string
	Content    *string
}

// Service applies resource and guide rules.
type Service struct {
	store  store.Store
	logger *zap.Logger
}

// NewService creates a resources service.
func NewService(s store.Store, logger *zap.Logger) *Service {
	return &Service{store: s, logger: logger}
}

// Create adds a resource authored by the caller.
func (s *Service) Create(ctx context.Context, who models.Identity, in CreateInput) (*models.Resource, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	if in.Title == "" || strings.TrimSpace(in.Content) == "" || in.Category == "" {
		return nil, apperr.Validation("title, content and category are required")
	}
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionCreate, policy.Resource{
		Entity: models.EntityResource,
	}); err != nil {
		return nil, err
	}
	r := &models.Resource{
		Title:       in.Title,
		Content:     in.Content,
		Category:    in.Category,
		AuthorID:    who.ID,
		IsPublished: in.IsPublished == nil || *in.IsPublished,
		Tags:        cleanTags(in.Tags),
	}
	if err := s.store.Resources().Create(ctx, r); err != nil {
		return nil, store.AppErr(err, "resource")
	}
	return r, nil
}

// Get returns a resource. Drafts read as missing to anyone but the author and moderators.
func (s *Service) Get(ctx context.Context, viewer *models.Identity, id uuid.UUID) (*models.Resource, error) {
	r, err := s.store.Resources().Get(ctx, id)
	if err != nil {
		return nil, store.AppErr(err, "resource")
	}
	if r.IsPublished {
		return r, nil
	}
	ok, err := policy.CanView(ctx, s.store.Memberships(), viewer, policy.Resource{
		Entity: models.EntityResource, OwnerID: r.AuthorID,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Missing("resource not found")
	}
	return r, nil
}

// List returns resources, newest first, hiding drafts viewer may not see.
func (s *Service) List(ctx context.Context, f store.ListFilter, viewer *models.Identity) ([]models.Resource, error) {
	switch {
	case viewer == nil:
		f.PublishedOnly = true
	case !policy.SeesHidden(models.EntityResource, viewer.Role):
		f.VisibleTo = &viewer.ID
	}
	list, err := s.store.Resources().List(ctx, f)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Resource{}
	}
	return list, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, who models.Identity, id uuid.UUID, in UpdateInput) (*models.Resource, error) {
	var p store.Patch
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperr.Validation("title cannot be empty")
		}
		p.Set("title", title)
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, apperr.Validation("content cannot be empty")
		}
		p.Set("content", *in.Content)
	}
	if in.Category != nil {
		category := strings.TrimSpace(*in.Category)
		if category == "" {
			return nil, apperr.Validation("category cannot be empty")
		}
		p.Set("category", category)
	}
	if in.IsPublished != nil {
		p.Set("is_published", *in.IsPublished)
	}
	if in.Tags != nil {
		p.Set("tags", cleanTags(*in.Tags))
	}
	if p.Empty() {
		return nil, apperr.New(apperr.NoFieldsToUpdate, "no fields to update")
	}
	r, err := s.store.Resources().Get(ctx, id)
	if err != nil {
		return nil, store.AppErr(err, "resource")
	}
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionUpdate, resourceOf(r)); err != nil {
		return nil, err
	}
	updated, err := s.store.Resources().Update(ctx, id, p)
	return updated, store.AppErr(err, "resource")
}

// Delete removes the resource and its guides.
func (s *Service) Delete(ctx context.Context, who models.Identity, id uuid.UUID) (lifecycle.Mode, error) {
	r, err := s.store.Resources().Get(ctx, id)
	if err != nil {
		return lifecycle.ModeOf(models.EntityResource), store.AppErr(err, "resource")
	}
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionDelete, resourceOf(r)); err != nil {
		return lifecycle.ModeOf(models.EntityResource), err
	}
	mode, err := s.store.Resources().Delete(ctx, id)
	if err != nil {
		return mode, store.AppErr(err, "resource")
	}
	s.logger.Info("resource deleted", zap.String("resource_id", id.String()), zap.String("by", who.ID.String()))
	return mode, nil
}

// Guides lists the steps, in order, of a resource viewer can see.
func (s *Service) Guides(ctx context.Context, viewer *models.Identity, resourceID uuid.UUID) ([]models.Guide, error) {
	if _, err := s.Get(ctx, viewer, resourceID); err != nil {
		return nil, err
	}
	list, err := s.store.Guides().ListByResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Guide{}
	}
	return list, nil
}

// AddGuide appends a step. Only the resource's author (or a moderator) may add steps.
func (s *Service) AddGuide(ctx context.Context, who models.Identity, resourceID uuid.UUID, in GuideInput) (*models.Guide, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.StepNumber <= 0 {
		return nil, apperr.Validation("step_number must be a positive integer")
	}
	if in.Title == "" || strings.TrimSpace(in.Content) == "" {
		return nil, apperr.Validation("title and content are required")
	}
	r, err := s.store.Resources().Get(ctx, resourceID)
	if err != nil {
		return nil, store.AppErr(err, "resource")
	}
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionCreate, guideOf(r)); err != nil {
		return nil, err
	}
	g := &models.Guide{ResourceID: resourceID, StepNumber: in.StepNumber, Title: in.Title, Content: in.Content}
	if err := s.store.Guides().Create(ctx, g); err != nil {
		return nil, store.AppErr(err, "resource")
	}
	return g, nil
}

// UpdateGuide applies a partial update to a step.
func (s *Service) UpdateGuide(ctx context.Context, who models.Identity, id uuid.UUID, in GuideUpdate) (*models.Guide, error) {
	var p store.Patch
	if in.StepNumber != nil {
		if *in.StepNumber <= 0 {
			return nil, apperr.Validation("step_number must be a positive integer")
		}
		p.Set("step_number", *in.StepNumber)
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperr.Validation("title cannot be empty")
		}
		p.Set("title", title)
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, apperr.Validation("content cannot be empty")
		}
		p.Set("content", *in.Content)
	}
	if p.Empty() {
		return nil, apperr.New(apperr.NoFieldsToUpdate, "no fields to update")
	}
	res, err := s.guideResource(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionUpdate, res); err != nil {
		return nil, err
	}
	updated, err := s.store.Guides().Update(ctx, id, p)
	return updated, store.AppErr(err, "guide")
}

// DeleteGuide removes a step.
func (s *Service) DeleteGuide(ctx context.Context, who models.Identity, id uuid.UUID) (lifecycle.Mode, error) {
	res, err := s.guideResource(ctx, id)
	if err != nil {
		return lifecycle.ModeOf(models.EntityGuide), err
	}
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionDelete, res); err != nil {
		return lifecycle.ModeOf(models.EntityGuide), err
	}
	mode, err := s.store.Guides().Delete(ctx, id)
	return mode, store.AppErr(err, "guide")
}

// guideResource resolves the guide's owner through its parent resource.
func (s *Service) guideResource(ctx context.Context, id uuid.UUID) (policy.Resource, error) {
	g, err := s.store.Guides().Get(ctx, id)
	if err != nil {
		return policy.Resource{}, store.AppErr(err, "guide")
	}
	r, err := s.store.Resources().Get(ctx, g.ResourceID)
	if err != nil {
		return policy.Resource{}, store.AppErr(err, "resource")
	}
	return guideOf(r), nil
}

func resourceOf(r *models.Resource) policy.Resource {
	return policy.Resource{Entity: models.EntityResource, OwnerID: r.AuthorID}
}

func guideOf(r *models.Resource) policy.Resource {
	return policy.Resource{Entity: models.EntityGuide, OwnerID: r.AuthorID}
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
