package announcements

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/harapan-ngo/harapan-cms/internal/apperr"
)

// RepositoryPort defines data access methods for announcements.
type RepositoryPort interface {
	List(ctx context.Context) ([]Announcement, error)
	Get(ctx context.Context, id uuid.UUID) (*Announcement, error)
	Create(ctx context.Context, in Input, author uuid.UUID) (*Announcement, error)
	Update(ctx context.Context, id uuid.UUID, in Input) (*Announcement, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service handles announcement business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all announcements.
func (s *Service) List(ctx context.Context) ([]Announcement, error) {
	return s.repo.List(ctx)
}

// Get loads a single announcement.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Announcement, error) {
	a, err := s.repo.Get(ctx, id)
	return a, translate(err)
}

// Create stores a new announcement authored by author.
func (s *Service) Create(ctx context.Context, in Input, author uuid.UUID) (*Announcement, error) {
	return s.repo.Create(ctx, trim(in), author)
}

// Update rewrites announcement id.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Announcement, error) {
	a, err := s.repo.Update(ctx, id, trim(in))
	return a, translate(err)
}

// Delete removes announcement id.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(s.repo.Delete(ctx, id))
}

func trim(in Input) Input {
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	return in
}

func translate(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Announcement not found")
	}
	return err
}
