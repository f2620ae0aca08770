package models

import (
	"time"

	"github.com/google/uuid"
)

// Photo is an uploaded garden image. The file lives in blob storage under StorageKey.
type Photo struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	StorageKey  string     `json:"-"`
	ContentType string     `json:"content_type"`
	FileSize    int64      `json:"file_size"`
	UploadedBy  uuid.UUID  `json:"uploaded_by"`
	GardenID    *uuid.UUID `json:"garden_id,omitempty"`
	IsPublic    bool       `json:"is_public"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
