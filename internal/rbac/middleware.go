package rbac

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harapan-ngo/harapan-cms/internal/auth"
	"github.com/harapan-ngo/harapan-cms/internal/platform/httpx"
	"github.com/harapan-ngo/harapan-cms/internal/users"
)

// maxDiscriminatorBody bounds how much of a request body is buffered while
// resolving a dynamic page key.
const maxDiscriminatorBody = 1 << 20

// Middleware wires RBAC authorization helpers for HTTP handlers. Each helper
// must be mounted after auth.Authenticator.Middleware.
type Middleware struct {
	Errors  *httpx.ErrorResponder
	Logger  *slog.Logger
	Metrics auth.DecisionRecorder
}

// RequireRole ensures the current account has one of roles.
func (m Middleware) RequireRole(roles ...users.Role) func(http.Handler) http.Handler {
	accepted := append([]users.Role(nil), roles...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := EvaluateRole(auth.AccountFromContext(r.Context()), accepted)
			m.enforce(w, r, next, "role", decision)
		})
	}
}

// RequirePage ensures the current account may access page.
func (m Middleware) RequirePage(page string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := Evaluate(auth.AccountFromContext(r.Context()), page)
			m.enforce(w, r, next, "page", decision)
		})
	}
}

// DiscriminatorSource reads the discriminating field of a stored record.
type DiscriminatorSource interface {
	Discriminator(ctx context.Context, id uuid.UUID) (string, error)
}

// DynamicRule selects the required page key per request. OverridePage is
// required when the discriminator equals Sentinel (trimmed, case-insensitive);
// DefaultPage otherwise.
type DynamicRule struct {
	DefaultPage  string
	OverridePage string
	Sentinel     string
	// Field is the JSON body field read when no record id is present.
	Field string
	// Param is the chi URL parameter naming the record. Defaults to "id".
	Param  string
	Source DiscriminatorSource
}

// RequireDynamicPage resolves the page key with rule and then applies the
// same check as RequirePage.
func (m Middleware) RequireDynamicPage(rule DynamicRule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			acc := auth.AccountFromContext(r.Context())
			if acc == nil {
				m.enforce(w, r, next, "page", Evaluate(nil, rule.DefaultPage))
				return
			}
			var decision Decision
			for _, page := range rule.Required(r, m.Logger) {
				if decision = Evaluate(acc, page); !decision.Allowed {
					break
				}
			}
			m.enforce(w, r, next, "page", decision)
		})
	}
}

// Resolve returns the page key required for r. With a record id the stored
// record decides, otherwise the body does. Lookup or decode failures fall
// back to DefaultPage. When the body is read it is restored for the
// downstream handler.
func (rule DynamicRule) Resolve(r *http.Request, logger *slog.Logger) string {
	if raw := chi.URLParam(r, rule.param()); raw != "" {
		value, err := rule.lookup(r.Context(), raw)
		return rule.pageFor(r, logger, value, err)
	}
	value, err := rule.fromBody(r)
	return rule.pageFor(r, logger, value, err)
}

// Required returns every page key r must be granted. On a record route the
// page named by the body's Field is required as well as the stored one.
func (rule DynamicRule) Required(r *http.Request, logger *slog.Logger) []string {
	page := rule.Resolve(r, logger)
	if chi.URLParam(r, rule.param()) == "" {
		return []string{page}
	}
	value, err := rule.fromBody(r)
	if err != nil || strings.TrimSpace(value) == "" {
		return []string{page}
	}
	if target := rule.pageFor(r, logger, value, nil); target != page {
		return []string{page, target}
	}
	return []string{page}
}

func (rule DynamicRule) param() string {
	if rule.Param == "" {
		return "id"
	}
	return rule.Param
}

func (rule DynamicRule) matches(value string) bool {
	return rule.OverridePage != "" && strings.EqualFold(strings.TrimSpace(value), strings.TrimSpace(rule.Sentinel))
}

func (rule DynamicRule) pageFor(r *http.Request, logger *slog.Logger, value string, err error) string {
	if err != nil {
		if logger != nil {
			logger.Warn("rbac discriminator fallback",
				slog.String("page", rule.DefaultPage),
				slog.String("path", r.URL.Path),
				slog.Any("error", err),
			)
		}
		return rule.DefaultPage
	}
	if rule.matches(value) {
		return rule.OverridePage
	}
	return rule.DefaultPage
}

func (rule DynamicRule) lookup(ctx context.Context, raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", err
	}
	if rule.Source == nil {
		return "", nil
	}
	return rule.Source.Discriminator(ctx, id)
}

func (rule DynamicRule) fromBody(r *http.Request) (string, error) {
	if r.Body == nil || r.Body == http.NoBody || rule.Field == "" {
		return "", nil
	}
	original := r.Body
	buf, err := io.ReadAll(io.LimitReader(original, maxDiscriminatorBody))
	r.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(buf), original), Closer: original}
	if err != nil {
		return "", err
	}
	if len(bytes.TrimSpace(buf)) == 0 {
		return "", nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(buf, &fields); err != nil {
		return "", err
	}
	raw, ok := fields[rule.Field]
	if !ok {
		return "", nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", err
	}
	return value, nil
}

func (m Middleware) enforce(w http.ResponseWriter, r *http.Request, next http.Handler, stage string, decision Decision) {
	if m.Metrics != nil {
		outcome := "allowed"
		if !decision.Allowed {
			outcome = decision.Reason
		}
		m.Metrics.RecordAuthDecision(stage, outcome)
	}
	if decision.Allowed {
		next.ServeHTTP(w, r)
		return
	}
	m.Errors.Respond(w, r, decision.Err())
}

type replayBody struct {
	io.Reader
	io.Closer
}
