package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `id, email, name, password_hash, role, is_active, permissions, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByID loads an account by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// FindByEmail loads an account by its login email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, strings.ToLower(strings.TrimSpace(email)))
	return scanAccount(row)
}

// ListAccounts returns all accounts ordered by email.
func (r *Repository) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acc)
	}
	return accounts, rows.Err()
}

// SetActive toggles the activation flag and returns the updated account.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) (*Account, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE accounts SET is_active = $2, updated_at = now() WHERE id = $1 RETURNING `+accountColumns,
		id, active)
	return scanAccount(row)
}

func scanAccount(row pgx.Row) (*Account, error) {
	var (
		acc   Account
		role  string
		perms []byte
	)
	err := row.Scan(&acc.ID, &acc.Email, &acc.Name, &acc.PasswordHash, &role, &acc.IsActive, &perms, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	parsed, ok := ParseRole(role)
	if !ok {
		return nil, fmt.Errorf("users: unknown role %q for account %s", role, acc.ID)
	}
	acc.Role = parsed
	acc.Permissions, err = PermissionsFromStored(acc.Role, perms)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}
