package users

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harapan-ngo/harapan-cms/internal/audit"
	"github.com/harapan-ngo/harapan-cms/internal/platform/httpx"
)

type memoryRepo struct {
	accounts map[uuid.UUID]*Account
}

func (m *memoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	acc, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return acc, nil
}

func (m *memoryRepo) FindByEmail(ctx context.Context, email string) (*Account, error) {
	for _, acc := range m.accounts {
		if strings.EqualFold(acc.Email, email) {
			return acc, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryRepo) ListAccounts(ctx context.Context) ([]Account, error) {
	var out []Account
	for _, acc := range m.accounts {
		out = append(out, *acc)
	}
	return out, nil
}

func (m *memoryRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) (*Account, error) {
	acc, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	acc.IsActive = active
	return acc, nil
}

var adminID = uuid.New()

func fixedActor(ctx context.Context) (uuid.UUID, bool) {
	return adminID, true
}

func newUsersRouter(repo *memoryRepo, guards ...func(http.Handler) http.Handler) http.Handler {
	return newAuditedRouter(repo, nil, guards...)
}

func newAuditedRouter(repo *memoryRepo, auditor Auditor, guards ...func(http.Handler) http.Handler) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewService(repo)
	if auditor != nil {
		service.WithAudit(auditor, logger)
	}
	handler := NewHandler(logger, service, httpx.NewErrorResponder(logger, false), fixedActor, guards...)
	r := chi.NewRouter()
	r.Route("/api/users", handler.MountRoutes)
	return r
}

func patchStatus(router http.Handler, id, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodPatch, "/api/users/"+id+"/status", strings.NewReader(body))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	var payload map[string]any
	_ = json.Unmarshal(res.Body.Bytes(), &payload)
	return res, payload
}

func TestSetStatus(t *testing.T) {
	acc := &Account{ID: uuid.New(), Email: "a@harapan.org", Role: RoleEditor, IsActive: true, PasswordHash: "secret-hash"}
	repo := &memoryRepo{accounts: map[uuid.UUID]*Account{acc.ID: acc}}
	router := newUsersRouter(repo)

	res, payload := patchStatus(router, acc.ID.String(), `{"is_active":false}`)
	require.Equal(t, http.StatusOK, res.Code)
	assert.False(t, acc.IsActive)
	assert.NotContains(t, res.Body.String(), "secret-hash")
	assert.Equal(t, false, payload["data"].(map[string]any)["is_active"])

	res, payload = patchStatus(router, acc.ID.String(), `{}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "is_active is required", payload["message"])

	res, payload = patchStatus(router, uuid.NewString(), `{"is_active":true}`)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "User not found", payload["message"])

	res, _ = patchStatus(router, "nope", `{"is_active":true}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestListAccountsRendersPermissions(t *testing.T) {
	admin := &Account{ID: uuid.New(), Email: "root@harapan.org", Role: RoleAdmin, Permissions: Unrestricted()}
	editor := &Account{ID: uuid.New(), Email: "ed@harapan.org", Role: RoleEditor, Permissions: Restricted(map[string]bool{"programs": true})}
	router := newUsersRouter(&memoryRepo{accounts: map[uuid.UUID]*Account{admin.ID: admin, editor.ID: editor}})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Data []struct {
			Email       string          `json:"email"`
			Permissions json.RawMessage `json:"permissions"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Len(t, payload.Data, 2)
	byEmail := map[string]string{}
	for _, d := range payload.Data {
		byEmail[d.Email] = string(d.Permissions)
	}
	assert.Equal(t, "null", byEmail["root@harapan.org"])
	assert.JSONEq(t, `{"programs":true}`, byEmail["ed@harapan.org"])
}

func TestGuardsWrapRoutes(t *testing.T) {
	deny := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
	}
	router := newUsersRouter(&memoryRepo{accounts: map[uuid.UUID]*Account{}}, deny)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	assert.Equal(t, http.StatusForbidden, res.Code)
}

type recordingAuditor struct {
	entries []audit.Entry
	err     error
}

func (r *recordingAuditor) Record(ctx context.Context, e audit.Entry) error {
	r.entries = append(r.entries, e)
	return r.err
}

func TestSetStatusIsAudited(t *testing.T) {
	acc := &Account{ID: uuid.New(), Email: "b@harapan.org", Role: RoleViewer, IsActive: true}
	auditor := &recordingAuditor{}
	router := newAuditedRouter(&memoryRepo{accounts: map[uuid.UUID]*Account{acc.ID: acc}}, auditor)

	res, _ := patchStatus(router, acc.ID.String(), `{"is_active":false}`)
	require.Equal(t, http.StatusOK, res.Code)
	require.Len(t, auditor.entries, 1)
	assert.Equal(t, adminID, auditor.entries[0].ActorID)
	assert.Equal(t, "account.deactivate", auditor.entries[0].Action)
	assert.Equal(t, acc.ID.String(), auditor.entries[0].EntityID)

	auditor.err = errors.New("audit table missing")
	res, _ = patchStatus(router, acc.ID.String(), `{"is_active":true}`)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.True(t, acc.IsActive)
}

func TestCannotDeactivateSelf(t *testing.T) {
	self := &Account{ID: adminID, Email: "root@harapan.org", Role: RoleAdmin, IsActive: true, Permissions: Unrestricted()}
	router := newUsersRouter(&memoryRepo{accounts: map[uuid.UUID]*Account{self.ID: self}})

	res, payload := patchStatus(router, adminID.String(), `{"is_active":false}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "You cannot deactivate your own account", payload["message"])
	assert.True(t, self.IsActive)
}
