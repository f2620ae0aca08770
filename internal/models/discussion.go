package models

import (
	"time"

	"github.com/google/uuid"
)

// Discussion is a forum thread, optionally scoped to a garden.
type Discussion struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	AuthorID  uuid.UUID  `json:"author_id"`
	GardenID  *uuid.UUID `json:"garden_id,omitempty"`
	Category  string     `json:"category"`
	IsPinned  bool       `json:"is_pinned"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// DiscussionReply is a reply to a discussion; ParentReplyID threads replies.
type DiscussionReply struct {
	ID            uuid.UUID  `json:"id"`
	DiscussionID  uuid.UUID  `json:"discussion_id"`
	AuthorID      uuid.UUID  `json:"author_id"`
	Content       string     `json:"content"`
	ParentReplyID *uuid.UUID `json:"parent_reply_id,omitempty"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
