package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes handled by From.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextRepr     = "22P02"
)

// From classifies err into the taxonomy. An *Error anywhere in the chain is
// returned as is; known driver and library errors are mapped to their kind;
// anything else becomes KindUnexpected. From(nil) returns nil.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return fromValidation(verrs)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return Conflict(conflictField(pgErr), err)
		case pgForeignKeyViolation:
			return BadReference(err)
		case pgInvalidTextRepr:
			return MalformedID(err)
		}
	}

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return TokenExpired(err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenInvalidClaims):
		return InvalidToken(err)
	case uuid.IsInvalidLengthError(err):
		return MalformedID(err)
	case errors.Is(err, pgx.ErrNoRows):
		return NotFound("")
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		return Validation(FieldError{Field: "body", Message: "Request body is not valid JSON"})
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return Validation(FieldError{Field: field, Message: fmt.Sprintf("%s has an invalid type", field)})
	}

	return Unexpected(err)
}

func fromValidation(verrs validator.ValidationErrors) *Error {
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	e := Validation(fields...)
	e.Err = verrs
	return e
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return name + " must be a valid email address"
	case "uuid", "uuid4":
		return name + " must be a valid UUID"
	case "url":
		return name + " must be a valid URL"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", name, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	default:
		return name + " is invalid"
	}
}

// conflictField extracts the column from a unique violation detail such as
// `Key (email)=(a@b.org) already exists.` Expression indexes report
// `Key (lower(email))=...`; the innermost argument is used.
func conflictField(pgErr *pgconn.PgError) string {
	detail := pgErr.Detail
	if start := strings.Index(detail, "Key ("); start >= 0 {
		rest := detail[start+len("Key ("):]
		if end := strings.Index(rest, ")=("); end > 0 {
			col := strings.TrimSpace(strings.Split(rest[:end], ",")[0])
			if open := strings.LastIndex(col, "("); open >= 0 {
				col = strings.TrimRight(col[open+1:], ")")
			}
			return strings.TrimSpace(col)
		}
	}
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	return "resource"
}
