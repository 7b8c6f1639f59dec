package programs

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/harapan-ngo/harapan-cms/internal/apperr"
)

// RepositoryPort defines data access methods for programs.
type RepositoryPort interface {
	List(ctx context.Context, f Filter) ([]Program, error)
	Get(ctx context.Context, id uuid.UUID) (*Program, error)
	Discriminator(ctx context.Context, id uuid.UUID) (string, error)
	Create(ctx context.Context, in Input, author uuid.UUID) (*Program, error)
	Update(ctx context.Context, id uuid.UUID, in Input) (*Program, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service handles program business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Discriminator exposes the stored category for page authorization.
func (s *Service) Discriminator(ctx context.Context, id uuid.UUID) (string, error) {
	return s.repo.Discriminator(ctx, id)
}

// List returns programs matching f. Categories are compared lower-cased.
func (s *Service) List(ctx context.Context, f Filter) ([]Program, error) {
	f.Category = strings.ToLower(strings.TrimSpace(f.Category))
	f.Exclude = strings.ToLower(strings.TrimSpace(f.Exclude))
	if f.Category != "" && f.Category == f.Exclude {
		return []Program{}, nil
	}
	return s.repo.List(ctx, f)
}

// Get loads a single program.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Program, error) {
	return notFound(s.repo.Get(ctx, id))
}

// Create stores a new program authored by author.
func (s *Service) Create(ctx context.Context, in Input, author uuid.UUID) (*Program, error) {
	return s.repo.Create(ctx, normalize(in), author)
}

// Update rewrites program id.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Program, error) {
	return notFound(s.repo.Update(ctx, id, normalize(in)))
}

// Delete removes program id.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		_, err = notFound(nil, err)
		return err
	}
	return nil
}

func normalize(in Input) Input {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	in.Program = strings.ToLower(strings.TrimSpace(in.Program))
	return in
}

func notFound(p *Program, err error) (*Program, error) {
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound("Program not found")
	}
	return p, err
}
