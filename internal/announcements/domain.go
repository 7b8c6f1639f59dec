package announcements

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound indicates that the requested announcement does not exist.
var ErrNotFound = errors.New("announcements: not found")

// Announcement is a short notice shown on the public site.
type Announcement struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedBy   *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Input carries the writable fields of an announcement.
type Input struct {
	Title     string `json:"title" validate:"required,max=200"`
	Body      string `json:"body" validate:"required"`
	Published bool   `json:"published"`
}
