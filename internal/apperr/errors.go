// Package apperr defines the application error taxonomy. Errors are classified
// once where they are raised and rendered by the HTTP error responder.
package apperr

import (
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Kind enumerates the failure categories understood by the error responder.
type Kind int

const (
	// KindUnexpected is anything that was not classified. Rendered as 500.
	KindUnexpected Kind = iota
	KindUnauthenticated
	KindDeactivated
	KindForbidden
	KindValidation
	KindConflict
	KindBadReference
	KindMalformedID
	KindInvalidToken
	KindTokenExpired
	KindNotFound
)

var kindNames = map[Kind]string{
	KindUnexpected:      "Unexpected",
	KindUnauthenticated: "Unauthenticated",
	KindDeactivated:     "Deactivated",
	KindForbidden:       "Forbidden",
	KindValidation:      "ValidationFailed",
	KindConflict:        "Conflict",
	KindBadReference:    "BadReference",
	KindMalformedID:     "MalformedIdentifier",
	KindInvalidToken:    "InvalidToken",
	KindTokenExpired:    "TokenExpired",
	KindNotFound:        "NotFound",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Standard messages shared by the auth pipeline and the responder.
const (
	MsgTokenMissing       = "Authorization token missing or invalid"
	MsgUserNotFound       = "User not found"
	MsgDeactivated        = "Account is deactivated"
	MsgInsufficient       = "Access denied: insufficient permissions"
	MsgUnauthorizedAccess = "Unauthorized access"
	MsgInvalidToken       = "Invalid token"
	MsgTokenExpired       = "Token expired"
	MsgBadReference       = "Invalid reference to related resource"
	MsgMalformedID        = "Invalid resource ID format"
	MsgInternal           = "Internal server error"
	MsgNotFound           = "Resource not found"
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a classified application failure.
type Error struct {
	Kind    Kind
	Message string
	// Status overrides the status derived from Kind when non-zero.
	Status int
	// Field is the offending column for conflicts.
	Field string
	// Fields lists per-field validation failures.
	Fields []FieldError
	// Err is the underlying cause, never rendered outside development mode.
	Err error

	trace pkgerrors.StackTrace
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status for the error.
func (e *Error) StatusCode() int {
	if e.Status >= 400 && e.Status <= 599 {
		return e.Status
	}
	switch e.Kind {
	case KindUnauthenticated, KindInvalidToken, KindTokenExpired:
		return http.StatusUnauthorized
	case KindDeactivated, KindForbidden:
		return http.StatusForbidden
	case KindValidation, KindBadReference, KindMalformedID:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Stack renders the call stack captured when the error was constructed.
func (e *Error) Stack() string {
	if len(e.trace) == 0 {
		return ""
	}
	return strings.TrimPrefix(fmt.Sprintf("%+v", e.trace), "\n")
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// newError skips its own frame and the exported constructor that called it.
func newError(kind Kind, message string, cause error) *Error {
	var trace pkgerrors.StackTrace
	if st, ok := pkgerrors.New(message).(stackTracer); ok && len(st.StackTrace()) > 2 {
		trace = st.StackTrace()[2:]
	}
	return &Error{Kind: kind, Message: message, Err: cause, trace: trace}
}

// New builds an application error carrying its own status code.
func New(status int, message string) *Error {
	e := newError(KindUnexpected, message, nil)
	e.Status = status
	return e
}

// Unauthenticated reports a missing, invalid or unresolvable credential.
func Unauthenticated(message string, cause error) *Error {
	return newError(KindUnauthenticated, message, cause)
}

// Deactivated reports a valid credential for an inactive account.
func Deactivated() *Error {
	return newError(KindDeactivated, MsgDeactivated, nil)
}

// Forbidden reports insufficient role or permission.
func Forbidden(message string) *Error {
	if message == "" {
		message = MsgInsufficient
	}
	return newError(KindForbidden, message, nil)
}

// Validation reports one or more invalid input fields.
func Validation(fields ...FieldError) *Error {
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f.Message)
	}
	e := newError(KindValidation, strings.Join(msgs, ", "), nil)
	e.Fields = fields
	return e
}

// Conflict reports a uniqueness violation on field.
func Conflict(field string, cause error) *Error {
	e := newError(KindConflict, "", cause)
	e.Field = field
	return e
}

// BadReference reports a foreign-key violation.
func BadReference(cause error) *Error {
	return newError(KindBadReference, MsgBadReference, cause)
}

// MalformedID reports an identifier that could not be parsed.
func MalformedID(cause error) *Error {
	return newError(KindMalformedID, MsgMalformedID, cause)
}

// InvalidToken reports a credential whose signature or encoding is invalid.
func InvalidToken(cause error) *Error {
	return newError(KindInvalidToken, MsgInvalidToken, cause)
}

// TokenExpired reports a credential past its expiry.
func TokenExpired(cause error) *Error {
	return newError(KindTokenExpired, MsgTokenExpired, cause)
}

// NotFound reports a missing resource.
func NotFound(message string) *Error {
	if message == "" {
		message = MsgNotFound
	}
	return newError(KindNotFound, message, nil)
}

// Unexpected wraps an unclassified failure.
func Unexpected(cause error) *Error {
	return newError(KindUnexpected, "", cause)
}
