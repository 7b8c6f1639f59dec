// Package audit persists an append-only trail of administrative actions.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry represents a record stored in audit_logs.
type Entry struct {
	ActorID  uuid.UUID
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
	At       time.Time
}

// Validate reports missing required fields.
func (e Entry) Validate() error {
	if e.ActorID == uuid.Nil {
		return errors.New("audit: entry requires actor")
	}
	if e.Action == "" || e.Entity == "" || e.EntityID == "" {
		return errors.New("audit: entry requires action/entity/entity_id")
	}
	return nil
}

// Logger writes entries into audit_logs.
type Logger struct {
	pool *pgxpool.Pool
}

// NewLogger returns a new Logger.
func NewLogger(pool *pgxpool.Pool) *Logger {
	return &Logger{pool: pool}
}

// Record persists the entry. A zero At is stamped by the database.
func (l *Logger) Record(ctx context.Context, e Entry) error {
	if l == nil || l.pool == nil {
		return errors.New("audit: logger not initialised")
	}
	if err := e.Validate(); err != nil {
		return err
	}
	meta, err := encodeMeta(e.Meta)
	if err != nil {
		return err
	}
	var at *time.Time
	if !e.At.IsZero() {
		at = &e.At
	}
	_, err = l.pool.Exec(ctx,
		`INSERT INTO audit_logs (actor_id, action, entity, entity_id, meta, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))`,
		e.ActorID, e.Action, e.Entity, e.EntityID, meta, at)
	return err
}

// encodeMeta returns nil for empty metadata so the column stays SQL NULL.
func encodeMeta(meta map[string]any) ([]byte, error) {
	if len(meta) == 0 {
		return nil, nil
	}
	return json.Marshal(meta)
}
