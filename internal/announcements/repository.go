package announcements

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const announcementColumns = `id, title, body, published, published_at, created_by, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns announcements newest first.
func (r *Repository) List(ctx context.Context) ([]Announcement, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+announcementColumns+` FROM announcements ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Announcement{}
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Get loads an announcement by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Announcement, error) {
	return scanAnnouncement(r.pool.QueryRow(ctx, `SELECT `+announcementColumns+` FROM announcements WHERE id = $1`, id))
}

// Create inserts an announcement. published_at is stamped when published.
func (r *Repository) Create(ctx context.Context, in Input, author uuid.UUID) (*Announcement, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO announcements (title, body, published, published_at, created_by)
		 VALUES ($1, $2, $3, CASE WHEN $3 THEN now() END, $4) RETURNING `+announcementColumns,
		in.Title, in.Body, in.Published, author)
	return scanAnnouncement(row)
}

// Update replaces the writable fields of announcement id. The first
// publication time is preserved.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, in Input) (*Announcement, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE announcements SET title = $2, body = $3, published = $4,
		 published_at = CASE WHEN $4 THEN COALESCE(published_at, now()) END, updated_at = now()
		 WHERE id = $1 RETURNING `+announcementColumns,
		id, in.Title, in.Body, in.Published)
	return scanAnnouncement(row)
}

// Delete removes announcement id.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAnnouncement(row pgx.Row) (*Announcement, error) {
	var a Announcement
	err := row.Scan(&a.ID, &a.Title, &a.Body, &a.Published, &a.PublishedAt, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
