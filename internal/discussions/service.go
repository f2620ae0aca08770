// Package discussions serves forum threads and their replies.
package discussions

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

const defaultCategory = "general"

// CreateInput is a new discussion.
type CreateInput struct {
	Title    string
	Content  string
	Category string
	GardenID *uuid.UUID
}

// UpdateInput carries only the fields present in the request.
type UpdateInput struct {
	Title    *string
	Content  *string
	Category *string
	IsPinned *bool
}

// ReplyInput is a new reply.
type ReplyInput struct {
	Content       string
	ParentReplyID *uuid.UUID
}

// ReplyView is a reply with the state of its parent discussion.
type ReplyView struct {
	models.DiscussionReply
	DiscussionAvailable bool `json:"discussion_available"`
}

// Service applies discussion and reply rules.
type Service struct {
	store  store.Store
	logger *zap.Logger
}

// NewService creates a discussions service.
func NewService(s store.Store, logger *zap.Logger) *Service {
	return &Service{store: s, logger: logger}
}

// Create opens a discussion. Garden-scoped discussions require an active membership.
func (s *Service) Create(ctx context.Context, who models.Identity, in CreateInput) (*models.Discussion, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || strings.TrimSpace(in.Content) == "" {
		return nil, apperr.Validation("title and content are required")
	}
	if in.Category == "" {
		in.Category = defaultCategory
	}
	if in.GardenID != nil {
		if _, err := s.store.Gardens().Get(ctx, *in.GardenID); err != nil {
			return nil, store.AppErr(err, "garden")
		}
	}
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionCreate, policy.Resource{
		Entity: models.EntityDiscussion, GardenID: in.GardenID,
	}); err != nil {
		return nil, err
	}
	d := &models.Discussion{
		Title:    in.Title,
		Content:  in.Content,
		AuthorID: who.ID,
		GardenID: in.GardenID,
		Category: in.Category,
	}
	if err := s.store.Discussions().Create(ctx, d); err != nil {
		return nil, store.AppErr(err, "discussion")
	}
	return d, nil
}

// Get returns an active discussion.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Discussion, error) {
	d, err := s.store.Discussions().Get(ctx, id)
	return d, store.AppErr(err, "discussion")
}

// List returns active discussions, pinned first.
func (s *Service) List(ctx context.Context, f store.ListFilter) ([]models.Discussion, error) {
	list, err := s.store.Discussions().List(ctx, f)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Discussion{}
	}
	return list, nil
}

// Update applies a partial update. Changing the pinned flag additionally needs a moderator.
func (s *Service) Update(ctx context.Context, who models.Identity, id uuid.UUID, in UpdateInput) (*models.Discussion, error) {
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
		if *in.Category == "" {
			return nil, apperr.Validation("category cannot be empty")
		}
		p.Set("category", *in.Category)
	}
	if in.IsPinned != nil {
		p.Set("is_pinned", *in.IsPinned)
	}
	if p.Empty() {
		return nil, apperr.New(apperr.NoFieldsToUpdate, "no fields to update")
	}

	d, err := s.store.Discussions().Get(ctx, id)
	if err != nil {
		return nil, store.AppErr(err, "discussion")
	}
	res := policy.Resource{Entity: models.EntityDiscussion, OwnerID: d.AuthorID, GardenID: d.GardenID}
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionUpdate, res); err != nil {
		return nil, err
	}
	if p.Has("is_pinned") {
		if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionPin, res); err != nil {
			return nil, err
		}
	}
	updated, err := s.store.Discussions().Update(ctx, id, p)
	return updated, store.AppErr(err, "discussion")
}

// Delete soft-deletes the discussion; its replies stay resolvable.
func (s *Service) Delete(ctx context.Context, who models.Identity, id uuid.UUID) (lifecycle.Mode, error) {
	d, err := s.store.Discussions().Get(ctx, id)
	if err != nil {
		return lifecycle.ModeOf(models.EntityDiscussion), store.AppErr(err, "discussion")
	}
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionDelete, policy.Resource{
		Entity: models.EntityDiscussion, OwnerID: d.AuthorID, GardenID: d.GardenID,
	}); err != nil {
		return lifecycle.ModeOf(models.EntityDiscussion), err
	}
	mode, err := s.store.Discussions().Delete(ctx, id)
	if err != nil {
		return mode, store.AppErr(err, "discussion")
	}
	s.logger.Info("discussion deleted", zap.String("discussion_id", id.String()), zap.String("by", who.ID.String()))
	return mode, nil
}

// Replies lists the active replies of an active discussion, oldest first.
func (s *Service) Replies(ctx context.Context, discussionID uuid.UUID) ([]models.DiscussionReply, error) {
	if _, err := s.store.Discussions().Get(ctx, discussionID); err != nil {
		return nil, store.AppErr(err, "discussion")
	}
	list, err := s.store.Replies().ListByDiscussion(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.DiscussionReply{}
	}
	return list, nil
}

// Reply adds a reply. Membership in the discussion's garden is checked on every call.
func (s *Service) Reply(ctx context.Context, who models.Identity, discussionID uuid.UUID, in ReplyInput) (*models.DiscussionReply, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, apperr.Validation("content is required")
	}
	d, err := s.store.Discussions().Get(ctx, discussionID)
	if err != nil {
		return nil, store.AppErr(err, "discussion")
	}
	if in.ParentReplyID != nil {
		parent, err := s.store.Replies().Get(ctx, *in.ParentReplyID)
		if err != nil {
			return nil, store.AppErr(err, "parent reply")
		}
		if parent.DiscussionID != discussionID {
			return nil, apperr.Validation("parent reply belongs to another discussion")
		}
	}
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionCreate, policy.Resource{
		Entity: models.EntityReply, GardenID: d.GardenID,
	}); err != nil {
		return nil, err
	}
	r := &models.DiscussionReply{
		DiscussionID:  discussionID,
		AuthorID:      who.ID,
		Content:       in.Content,
		ParentReplyID: in.ParentReplyID,
	}
	if err := s.store.Replies().Create(ctx, r); err != nil {
		return nil, store.AppErr(err, "reply")
	}
	return r, nil
}

// GetReply returns an active reply. Its discussion is resolved even when soft-deleted.
func (s *Service) GetReply(ctx context.Context, id uuid.UUID) (*ReplyView, error) {
	r, err := s.store.Replies().Get(ctx, id)
	if err != nil {
		return nil, store.AppErr(err, "reply")
	}
	d, err := s.store.Discussions().Get(ctx, r.DiscussionID, store.IncludeInactive())
	if err != nil {
		return nil, store.AppErr(err, "discussion")
	}
	return &ReplyView{DiscussionReply: *r, DiscussionAvailable: d.IsActive}, nil
}

// UpdateReply edits a reply's content.
func (s *Service) UpdateReply(ctx context.Context, who models.Identity, id uuid.UUID, content *string) (*models.DiscussionReply, error) {
	if content == nil {
		return nil, apperr.New(apperr.NoFieldsToUpdate, "no fields to update")
	}
	if strings.TrimSpace(*content) == "" {
		return nil, apperr.Validation("content cannot be empty")
	}
	res, err := s.replyResource(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionUpdate, res); err != nil {
		return nil, err
	}
	var p store.Patch
	p.Set("content", *content)
	r, err := s.store.Replies().Update(ctx, id, p)
	return r, store.AppErr(err, "reply")
}

// DeleteReply soft-deletes a reply.
func (s *Service) DeleteReply(ctx context.Context, who models.Identity, id uuid.UUID) (lifecycle.Mode, error) {
	res, err := s.replyResource(ctx, id)
	if err != nil {
		return lifecycle.ModeOf(models.EntityReply), err
	}
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionDelete, res); err != nil {
		return lifecycle.ModeOf(models.EntityReply), err
	}
	mode, err := s.store.Replies().Delete(ctx, id)
	return mode, store.AppErr(err, "reply")
}

// replyResource loads an active reply and scopes it to its discussion's garden.
func (s *Service) replyResource(ctx context.Context, id uuid.UUID) (policy.Resource, error) {
	r, err := s.store.Replies().Get(ctx, id)
	if err != nil {
		return policy.Resource{}, store.AppErr(err, "reply")
	}
	d, err := s.store.Discussions().Get(ctx, r.DiscussionID, store.IncludeInactive())
	if err != nil {
		return policy.Resource{}, store.AppErr(err, "discussion")
	}
	return policy.Resource{Entity: models.EntityReply, OwnerID: r.AuthorID, GardenID: d.GardenID}, nil
}
