package httpx

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/harapan-ngo/harapan-cms/internal/apperr"
)

// Envelope is the uniform error body.
type Envelope struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Errors  any    `json:"errors,omitempty"`
	Error   any    `json:"error,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// RawError is the development-only view of the underlying failure.
type RawError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

var titleCaser = cases.Title(language.English)

// Normalize maps err to its status code and envelope. dev enables the stack
// trace and raw error fields.
func Normalize(err error, dev bool) (int, Envelope) {
	appErr := apperr.From(err)
	if appErr == nil {
		appErr = apperr.Unexpected(nil)
	}
	status := appErr.StatusCode()

	env := Envelope{Success: false, Status: statusLabel(status)}
	switch appErr.Kind {
	case apperr.KindValidation:
		env.Message = appErr.Message
		if len(appErr.Fields) > 0 {
			env.Errors = appErr.Fields
		}
	case apperr.KindConflict:
		env.Message = conflictMessage(appErr.Field)
	case apperr.KindBadReference:
		env.Message = apperr.MsgBadReference
	case apperr.KindInvalidToken:
		env.Message = apperr.MsgInvalidToken
	case apperr.KindTokenExpired:
		env.Message = apperr.MsgTokenExpired
	case apperr.KindMalformedID:
		env.Message = apperr.MsgMalformedID
	case apperr.KindUnauthenticated, apperr.KindDeactivated, apperr.KindForbidden, apperr.KindNotFound:
		env.Message = appErr.Message
	case apperr.KindUnexpected:
		switch {
		case appErr.Status != 0:
			env.Message = appErr.Message
		case dev && appErr.Err != nil:
			env.Message = appErr.Err.Error()
		default:
			env.Message = apperr.MsgInternal
		}
	}
	if env.Message == "" {
		env.Message = http.StatusText(status)
	}

	if dev {
		env.Stack = appErr.Stack()
		env.Error = RawError{Name: appErr.Kind.String(), Message: appErr.Error()}
	}
	return status, env
}

func statusLabel(status int) string {
	if status < 500 {
		return "fail"
	}
	return "error"
}

func conflictMessage(field string) string {
	words := strings.Fields(strings.ReplaceAll(field, "_", " "))
	if len(words) == 0 {
		return "Resource already exists"
	}
	words[0] = titleCaser.String(words[0])
	return strings.Join(words, " ") + " already exists"
}

// ErrorResponder is the terminal error handler. Every failure raised by
// middleware or handlers is rendered through Respond exactly once.
type ErrorResponder struct {
	logger *slog.Logger
	dev    bool
}

// NewErrorResponder constructs an ErrorResponder.
func NewErrorResponder(logger *slog.Logger, dev bool) *ErrorResponder {
	return &ErrorResponder{logger: logger, dev: dev}
}

// Development reports whether diagnostic fields are rendered.
func (e *ErrorResponder) Development() bool {
	return e != nil && e.dev
}

// Respond logs err and writes the error envelope.
func (e *ErrorResponder) Respond(w http.ResponseWriter, r *http.Request, err error) {
	status, env := Normalize(err, e.Development())
	e.log(r, err, status)
	JSON(w, status, env)
}

func (e *ErrorResponder) log(r *http.Request, err error, status int) {
	if e == nil || e.logger == nil {
		return
	}
	appErr := apperr.From(err)
	attrs := []any{
		slog.String("message", appErr.Error()),
		slog.Int("status_code", status),
		slog.String("kind", appErr.Kind.String()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", chimw.GetReqID(r.Context())),
	}
	if status >= 500 {
		attrs = append(attrs, slog.String("stack", appErr.Stack()))
		e.logger.Error("request failed", attrs...)
		return
	}
	e.logger.Warn("request rejected", attrs...)
}

// Handle adapts fn to http.HandlerFunc. A returned error is rendered unless
// fn already wrote a response, in which case it is only logged.
func (e *ErrorResponder) Handle(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cw := &commitWriter{ResponseWriter: w}
		err := fn(cw, r)
		if err == nil {
			return
		}
		if cw.committed {
			if e != nil && e.logger != nil {
				e.logger.Error("error after response committed",
					slog.Any("error", err),
					slog.String("path", r.URL.Path),
				)
			}
			return
		}
		e.Respond(w, r, err)
	}
}

// Recoverer renders panics as unexpected errors.
func (e *ErrorResponder) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cw := &commitWriter{ResponseWriter: w}
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			err := apperr.Unexpected(fmt.Errorf("panic: %v", rec))
			if cw.committed {
				e.log(r, err, http.StatusInternalServerError)
				return
			}
			e.Respond(w, r, err)
		}()
		next.ServeHTTP(cw, r)
	})
}

type commitWriter struct {
	http.ResponseWriter
	committed bool
}

func (w *commitWriter) WriteHeader(status int) {
	w.committed = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *commitWriter) Write(b []byte) (int, error) {
	w.committed = true
	return w.ResponseWriter.Write(b)
}

func (w *commitWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
