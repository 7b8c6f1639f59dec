package programs

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const programColumns = `id, title, slug, program, content, image_url, created_by, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns programs matching f, newest first.
func (r *Repository) List(ctx context.Context, f Filter) ([]Program, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+programColumns+` FROM programs
		 WHERE ($1 = '' OR program = $1) AND ($2 = '' OR program <> $2)
		 ORDER BY created_at DESC`,
		f.Category, f.Exclude)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Program{}
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Get loads a program by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Program, error) {
	return scanProgram(r.pool.QueryRow(ctx, `SELECT `+programColumns+` FROM programs WHERE id = $1`, id))
}

// Discriminator returns the stored category of program id.
func (r *Repository) Discriminator(ctx context.Context, id uuid.UUID) (string, error) {
	var category string
	err := r.pool.QueryRow(ctx, `SELECT program FROM programs WHERE id = $1`, id).Scan(&category)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return category, err
}

// Create inserts a program.
func (r *Repository) Create(ctx context.Context, in Input, author uuid.UUID) (*Program, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO programs (title, slug, program, content, image_url, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+programColumns,
		in.Title, in.Slug, in.Program, in.Content, in.ImageURL, author)
	return scanProgram(row)
}

// Update replaces the writable fields of program id.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, in Input) (*Program, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE programs SET title = $2, slug = $3, program = $4, content = $5, image_url = $6, updated_at = now()
		 WHERE id = $1 RETURNING `+programColumns,
		id, in.Title, in.Slug, in.Program, in.Content, in.ImageURL)
	return scanProgram(row)
}

// Delete removes program id.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProgram(row pgx.Row) (*Program, error) {
	var p Program
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Program, &p.Content, &p.ImageURL, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
