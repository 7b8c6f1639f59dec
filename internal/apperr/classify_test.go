package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	Email string `validate:"required,email"`
	Name  string `validate:"required,min=3"`
}

func TestFromNil(t *testing.T) {
	assert.Nil(t, From(nil))
}

func TestFromKeepsClassifiedError(t *testing.T) {
	original := Forbidden("nope")
	wrapped := fmt.Errorf("handler: %w", original)

	got := From(wrapped)
	assert.Same(t, original, got)
	assert.Equal(t, http.StatusForbidden, got.StatusCode())
}

func TestFromValidationErrors(t *testing.T) {
	err := validator.New().Struct(signupForm{Email: "not-an-email"})
	require.Error(t, err)

	got := From(err)
	require.Equal(t, KindValidation, got.Kind)
	assert.Equal(t, http.StatusBadRequest, got.StatusCode())
	require.Len(t, got.Fields, 2)
	assert.Equal(t, "Email must be a valid email address, Name is required", got.Message)
}

func TestFromPostgresErrors(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", Detail: "Key (email)=(a@harapan.org) already exists."}
	got := From(fmt.Errorf("insert account: %w", unique))
	assert.Equal(t, KindConflict, got.Kind)
	assert.Equal(t, "email", got.Field)
	assert.Equal(t, http.StatusConflict, got.StatusCode())

	composite := &pgconn.PgError{Code: "23505", Detail: "Key (slug, locale)=(a, en) already exists."}
	assert.Equal(t, "slug", From(composite).Field)

	expression := &pgconn.PgError{Code: "23505", Detail: "Key (lower(email))=(a@harapan.org) already exists."}
	got = From(expression)
	assert.Equal(t, "email", got.Field)

	byColumn := &pgconn.PgError{Code: "23505", ColumnName: "title"}
	assert.Equal(t, "title", From(byColumn).Field)

	fk := &pgconn.PgError{Code: "23503"}
	got = From(fk)
	assert.Equal(t, KindBadReference, got.Kind)
	assert.Equal(t, MsgBadReference, got.Message)
	assert.Equal(t, http.StatusBadRequest, got.StatusCode())

	cast := &pgconn.PgError{Code: "22P02"}
	assert.Equal(t, KindMalformedID, From(cast).Kind)

	other := &pgconn.PgError{Code: "40001"}
	assert.Equal(t, KindUnexpected, From(other).Kind)
}

func TestFromTokenErrors(t *testing.T) {
	expired := fmt.Errorf("%w: %w", jwt.ErrTokenInvalidClaims, jwt.ErrTokenExpired)
	assert.Equal(t, KindTokenExpired, From(expired).Kind)
	assert.Equal(t, MsgTokenExpired, From(expired).Message)

	sig := fmt.Errorf("%w: %w", jwt.ErrTokenSignatureInvalid, errors.New("bad mac"))
	got := From(sig)
	assert.Equal(t, KindInvalidToken, got.Kind)
	assert.Equal(t, http.StatusUnauthorized, got.StatusCode())

	assert.Equal(t, KindInvalidToken, From(jwt.ErrTokenMalformed).Kind)
}

func TestFromMiscErrors(t *testing.T) {
	_, err := uuid.Parse("1234")
	require.Error(t, err)
	assert.Equal(t, KindMalformedID, From(err).Kind)

	assert.Equal(t, KindNotFound, From(pgx.ErrNoRows).Kind)

	got := From(errors.New("disk on fire"))
	assert.Equal(t, KindUnexpected, got.Kind)
	assert.Equal(t, http.StatusInternalServerError, got.StatusCode())
}

func TestExplicitStatus(t *testing.T) {
	err := New(http.StatusTooManyRequests, "slow down")
	assert.Equal(t, http.StatusTooManyRequests, err.StatusCode())
	assert.Equal(t, "slow down", err.Error())
	assert.NotEmpty(t, err.Stack())
	assert.Contains(t, strings.SplitN(err.Stack(), "\n", 2)[0], "TestExplicitStatus")
	assert.NotContains(t, err.Stack(), "newError")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "Conflict", KindConflict.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}
