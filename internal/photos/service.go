// Package photos stores garden photo uploads and their metadata.
package photos

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/internal/apperr"
	"github.com/gardenhub/backend/internal/lifecycle"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/policy"
	"github.com/gardenhub/backend/internal/store"
	"github.com/gardenhub/backend/pkg/queue"
	"github.com/gardenhub/backend/pkg/storage"
)

// BlobCleaner schedules removal of a deleted photo's file.
type BlobCleaner interface {
	EnqueuePhotoBlobDelete(ctx context.Context, payload queue.PhotoBlobPayload) error
}

// UploadInput is one uploaded file plus its metadata.
type UploadInput struct {
	Title       string
	Description string
	GardenID    *uuid.UUID
	IsPublic    *bool
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UpdateInput carries only the fields present in the request.
type UpdateInput struct {
	Title       *string
	Description *string
	IsPublic    *bool
}

// Service applies photo rules. Files go to blobs; rows to the store.
type Service struct {
	store    store.Store
	blobs    storage.Blob
	cleaner  BlobCleaner
	maxBytes int64
	logger   *zap.Logger
}

// NewService creates a photos service. cleaner may be nil, in which case files are removed
// inline on delete.
func NewService(s store.Store, blobs storage.Blob, cleaner BlobCleaner, maxBytes int64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: s, blobs: blobs, cleaner: cleaner, maxBytes: maxBytes, logger: logger}
}

// MaxBytes is the largest accepted upload.
func (s *Service) MaxBytes() int64 { return s.maxBytes }

// Upload stores the file and records it. A failed insert removes the stored file again.
func (s *Service) Upload(ctx context.Context, who models.Identity, in UploadInput) (*models.Photo, error) {
	if in.Size <= 0 {
		return nil, apperr.Validation("file is empty")
	}
	if s.maxBytes > 0 && in.Size > s.maxBytes {
		return nil, apperr.Validation("file exceeds the upload size limit")
	}
	if !storage.ValidatePhotoFileType(in.ContentType, in.Filename) {
		return nil, apperr.Validation("invalid file type: only jpg, png, webp and gif images are allowed")
	}
	contentType := storage.ContentTypeForFilename(in.Filename)
	if _, ok := storage.AllowedPhotoTypes[strings.ToLower(in.ContentType)]; ok {
		contentType = strings.ToLower(in.ContentType)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = in.Filename
	}
	if in.GardenID != nil {
		if _, err := s.store.Gardens().Get(ctx, *in.GardenID); err != nil {
			return nil, store.AppErr(err, "garden")
		}
	}
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionCreate, policy.Resource{
		Entity: models.EntityPhoto, GardenID: in.GardenID,
	}); err != nil {
		return nil, err
	}

	key := storage.PhotoKey(in.Filename, contentType)
	url, err := s.blobs.Put(ctx, key, contentType, in.Body, in.Size)
	if err != nil {
		s.logger.Error("photo upload failed", zap.Error(err), zap.String("key", key))
		return nil, apperr.Wrap(apperr.Unexpected, "failed to store file", err)
	}
	p := &models.Photo{
		Title:       title,
		Description: in.Description,
		URL:         url,
		StorageKey:  key,
		ContentType: contentType,
		FileSize:    in.Size,
		UploadedBy:  who.ID,
		GardenID:    in.GardenID,
		IsPublic:    in.IsPublic == nil || *in.IsPublic,
	}
	if err := s.store.Photos().Create(ctx, p); err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.Warn("orphaned photo file", zap.Error(delErr), zap.String("key", key))
		}
		return nil, store.AppErr(err, "photo")
	}
	return p, nil
}

// Get returns a photo. Private photos read as missing to anyone but the uploader,
// members of the photo's garden and moderators.
func (s *Service) Get(ctx context.Context, viewer *models.Identity, id uuid.UUID) (*models.Photo, error) {
	p, err := s.store.Photos().Get(ctx, id)
	if err != nil {
		return nil, store.AppErr(err, "photo")
	}
	if p.IsPublic {
		return p, nil
	}
	ok, err := policy.CanView(ctx, s.store.Memberships(), viewer, policy.Resource{
		Entity: models.EntityPhoto, OwnerID: p.UploadedBy, GardenID: p.GardenID,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Missing("photo not found")
	}
	return p, nil
}

// List returns photos, newest first, hiding private photos viewer may not see.
func (s *Service) List(ctx context.Context, f store.ListFilter, viewer *models.Identity) ([]models.Photo, error) {
	switch {
	case viewer == nil:
		f.PublicOnly = true
	case !policy.SeesHidden(models.EntityPhoto, viewer.Role):
		f.VisibleTo = &viewer.ID
	}
	list, err := s.store.Photos().List(ctx, f)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Photo{}
	}
	return list, nil
}

// Update applies a partial update to the photo's metadata.
func (s *Service) Update(ctx context.Context, who models.Identity, id uuid.UUID, in UpdateInput) (*models.Photo, error) {
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
	if in.IsPublic != nil {
		p.Set("is_public", *in.IsPublic)
	}
	if p.Empty() {
		return nil, apperr.New(apperr.NoFieldsToUpdate, "no fields to update")
	}
	ph, err := s.store.Photos().Get(ctx, id)
	if err != nil {
		return nil, store.AppErr(err, "photo")
	}
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionUpdate, resource(ph)); err != nil {
		return nil, err
	}
	updated, err := s.store.Photos().Update(ctx, id, p)
	return updated, store.AppErr(err, "photo")
}

// Delete removes the photo row, then its file.
func (s *Service) Delete(ctx context.Context, who models.Identity, id uuid.UUID) (lifecycle.Mode, error) {
	ph, err := s.store.Photos().Get(ctx, id)
	if err != nil {
		return lifecycle.ModeOf(models.EntityPhoto), store.AppErr(err, "photo")
	}
	if err := policy.Authorize(ctx, s.store.Memberships(), who, policy.ActionDelete, resource(ph)); err != nil {
		return lifecycle.ModeOf(models.EntityPhoto), err
	}
	mode, err := s.store.Photos().Delete(ctx, id)
	if err != nil {
		return mode, store.AppErr(err, "photo")
	}
	s.removeBlob(ctx, ph)
	s.logger.Info("photo deleted", zap.String("photo_id", id.String()), zap.String("by", who.ID.String()))
	return mode, nil
}

// removeBlob never fails the request: the row is already gone.
func (s *Service) removeBlob(ctx context.Context, ph *models.Photo) {
	if ph.StorageKey == "" {
		return
	}
	if s.cleaner != nil {
		err := s.cleaner.EnqueuePhotoBlobDelete(ctx, queue.PhotoBlobPayload{PhotoID: ph.ID, StorageKey: ph.StorageKey})
		if err == nil {
			return
		}
		s.logger.Warn("enqueue photo blob delete failed, deleting inline", zap.Error(err), zap.String("photo_id", ph.ID.String()))
	}
	if err := s.blobs.Delete(ctx, ph.StorageKey); err != nil {
		s.logger.Error("photo blob delete failed", zap.Error(err), zap.String("key", ph.StorageKey))
	}
}

func resource(ph *models.Photo) policy.Resource {
	return policy.Resource{Entity: models.EntityPhoto, OwnerID: ph.UploadedBy, GardenID: ph.GardenID}
}
