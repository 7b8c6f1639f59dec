package programs

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound indicates that the requested program does not exist.
var ErrNotFound = errors.New("programs: not found")

// LatestCategory marks programs published on the "latest" dashboard page.
const LatestCategory = "latest"

// Program is a published NGO program page.
type Program struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Slug      string     `json:"slug"`
	Program   string     `json:"program"`
	Content   string     `json:"content"`
	ImageURL  *string    `json:"image_url,omitempty"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Input carries the writable fields of a program.
type Input struct {
	Title    string  `json:"title" validate:"required,max=200"`
	Slug     string  `json:"slug" validate:"required,max=200"`
	Program  string  `json:"program" validate:"required,max=64"`
	Content  string  `json:"content" validate:"required"`
	ImageURL *string `json:"image_url" validate:"omitempty,url"`
}

// Filter narrows program listings. Empty fields match everything.
type Filter struct {
	Category string
	Exclude  string
}
