package domain

import (
	"time"

	"github.com/google/uuid"
)

// Blob is an immutable binary payload. Blobs are never rewritten in place;
// a new picture creates a new blob and relinks the book.
type Blob struct {
	ID          int64     `json:"-"`
	GUID        uuid.UUID `json:"id"`
	ContentType string    `json:"content_type"`
	Content     []byte    `json:"-"`
	BlurHash    string    `json:"blur_hash,omitempty"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	CreatedAt   time.Time `json:"created_at"`
}
