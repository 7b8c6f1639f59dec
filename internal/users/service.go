package users

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/harapan-ngo/harapan-cms/internal/audit"
)

// RepositoryPort defines data access methods for accounts.
type RepositoryPort interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	ListAccounts(ctx context.Context) ([]Account, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*Account, error)
}

// Auditor records administrative actions.
type Auditor interface {
	Record(ctx context.Context, e audit.Entry) error
}

// Service handles account business logic.
type Service struct {
	repo    RepositoryPort
	auditor Auditor
	logger  *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// WithAudit enables the audit trail for account changes. Audit failures are
// logged and never undo the change.
func (s *Service) WithAudit(auditor Auditor, logger *slog.Logger) *Service {
	s.auditor = auditor
	s.logger = logger
	return s
}

// FindAccount loads an account by id.
func (s *Service) FindAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.FindByID(ctx, id)
}

// FindByEmail loads an account by login email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return s.repo.FindByEmail(ctx, email)
}

// ListAccounts returns all accounts.
func (s *Service) ListAccounts(ctx context.Context) ([]Account, error) {
	return s.repo.ListAccounts(ctx)
}

// SetActive activates or deactivates an account on behalf of actor.
func (s *Service) SetActive(ctx context.Context, actor, id uuid.UUID, active bool) (*Account, error) {
	acc, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return nil, err
	}
	if s.auditor != nil {
		action := "account.deactivate"
		if active {
			action = "account.activate"
		}
		entry := audit.Entry{ActorID: actor, Action: action, Entity: "account", EntityID: id.String()}
		if err := s.auditor.Record(ctx, entry); err != nil && s.logger != nil {
			s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
		}
	}
	return acc, nil
}
