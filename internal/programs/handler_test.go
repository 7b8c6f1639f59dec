package programs

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harapan-ngo/harapan-cms/internal/auth"
	"github.com/harapan-ngo/harapan-cms/internal/platform/httpx"
	"github.com/harapan-ngo/harapan-cms/internal/rbac"
	"github.com/harapan-ngo/harapan-cms/internal/users"
)

type memoryRepo struct {
	items     map[uuid.UUID]*Program
	createErr error
	lookups   int
}

func newMemoryRepo(items ...Program) *memoryRepo {
	repo := &memoryRepo{items: make(map[uuid.UUID]*Program)}
	for i := range items {
		p := items[i]
		repo.items[p.ID] = &p
	}
	return repo
}

func (m *memoryRepo) List(ctx context.Context, f Filter) ([]Program, error) {
	out := []Program{}
	for _, p := range m.items {
		if f.Category != "" && p.Program != f.Category {
			continue
		}
		if f.Exclude != "" && p.Program == f.Exclude {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *memoryRepo) Get(ctx context.Context, id uuid.UUID) (*Program, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *memoryRepo) Discriminator(ctx context.Context, id uuid.UUID) (string, error) {
	m.lookups++
	p, ok := m.items[id]
	if !ok {
		return "", ErrNotFound
	}
	return p.Program, nil
}

func (m *memoryRepo) Create(ctx context.Context, in Input, author uuid.UUID) (*Program, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	now := time.Now()
	p := &Program{ID: uuid.New(), Title: in.Title, Slug: in.Slug, Program: in.Program, Content: in.Content, ImageURL: in.ImageURL, CreatedBy: &author, CreatedAt: now, UpdatedAt: now}
	m.items[p.ID] = p
	return p, nil
}

func (m *memoryRepo) Update(ctx context.Context, id uuid.UUID, in Input) (*Program, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.Title, p.Slug, p.Program, p.Content = in.Title, in.Slug, in.Program, in.Content
	return p, nil
}

func (m *memoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func newRouter(repo *memoryRepo) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errs := httpx.NewErrorResponder(logger, false)
	handler := NewHandler(logger, NewService(repo), errs, rbac.Middleware{Errors: errs, Logger: logger})

	r := chi.NewRouter()
	r.Route("/api/programs", handler.MountRoutes)
	return r
}

func as(acc *users.Account, req *http.Request) *http.Request {
	return req.WithContext(auth.ContextWithIdentity(req.Context(), &auth.Identity{Account: acc}))
}

func editor(pages ...string) *users.Account {
	grants := make(map[string]bool, len(pages))
	for _, p := range pages {
		grants[p] = true
	}
	return &users.Account{ID: uuid.New(), Role: users.RoleEditor, IsActive: true, Permissions: users.Restricted(grants)}
}

func do(router http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	var body map[string]any
	_ = json.Unmarshal(res.Body.Bytes(), &body)
	return res, body
}

func TestCreateProgramByCategory(t *testing.T) {
	repo := newMemoryRepo()
	router := newRouter(repo)
	author := editor(rbac.PagePrograms)

	body := `{"title":"Clean Water","slug":"Clean-Water","program":"health","content":"Wells for villages"}`
	res, payload := do(router, as(author, httptest.NewRequest(http.MethodPost, "/api/programs", strings.NewReader(body))))
	require.Equal(t, http.StatusCreated, res.Code)
	data := payload["data"].(map[string]any)
	assert.Equal(t, "clean-water", data["slug"])
	assert.Equal(t, author.ID.String(), data["created_by"])

	body = `{"title":"Gala","slug":"gala","program":"Latest","content":"Night"}`
	res, payload = do(router, as(author, httptest.NewRequest(http.MethodPost, "/api/programs", strings.NewReader(body))))
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Equal(t, "Access denied: you do not have permission to access latest", payload["message"])
	assert.Len(t, repo.items, 1)
}

func TestProgramRecordLookupSelectsPage(t *testing.T) {
	latest := Program{ID: uuid.New(), Title: "Gala", Slug: "gala", Program: LatestCategory, Content: "Night"}
	health := Program{ID: uuid.New(), Title: "Water", Slug: "water", Program: "health", Content: "Wells"}
	repo := newMemoryRepo(latest, health)
	router := newRouter(repo)
	programsOnly := editor(rbac.PagePrograms)

	res, _ := do(router, as(programsOnly, httptest.NewRequest(http.MethodGet, "/api/programs/"+health.ID.String(), nil)))
	assert.Equal(t, http.StatusOK, res.Code)

	res, _ = do(router, as(programsOnly, httptest.NewRequest(http.MethodDelete, "/api/programs/"+latest.ID.String(), nil)))
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Contains(t, repo.items, latest.ID)

	res, _ = do(router, as(editor(rbac.PageLatest), httptest.NewRequest(http.MethodDelete, "/api/programs/"+latest.ID.String(), nil)))
	assert.Equal(t, http.StatusOK, res.Code)
	assert.NotContains(t, repo.items, latest.ID)
	assert.Equal(t, 3, repo.lookups)
}

func TestListSeparatesLatest(t *testing.T) {
	repo := newMemoryRepo(
		Program{ID: uuid.New(), Program: LatestCategory},
		Program{ID: uuid.New(), Program: "health"},
		Program{ID: uuid.New(), Program: "education"},
	)
	router := newRouter(repo)

	res, payload := do(router, as(editor(rbac.PagePrograms), httptest.NewRequest(http.MethodGet, "/api/programs", nil)))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, payload["data"], 2)

	res, payload = do(router, as(editor(rbac.PagePrograms), httptest.NewRequest(http.MethodGet, "/api/programs?program=latest", nil)))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, payload["data"], 0)

	res, _ = do(router, as(editor(rbac.PagePrograms), httptest.NewRequest(http.MethodGet, "/api/programs/latest", nil)))
	assert.Equal(t, http.StatusForbidden, res.Code)

	res, payload = do(router, as(editor(rbac.PageLatest), httptest.NewRequest(http.MethodGet, "/api/programs/latest", nil)))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, payload["data"], 1)
}

func TestProgramErrorsAreNormalized(t *testing.T) {
	repo := newMemoryRepo()
	router := newRouter(repo)
	admin := &users.Account{ID: uuid.New(), Role: users.RoleAdmin, IsActive: true, Permissions: users.Unrestricted()}

	res, payload := do(router, as(admin, httptest.NewRequest(http.MethodGet, "/api/programs/not-a-uuid", nil)))
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Invalid resource ID format", payload["message"])

	res, payload = do(router, as(admin, httptest.NewRequest(http.MethodGet, "/api/programs/"+uuid.NewString(), nil)))
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "Program not found", payload["message"])

	res, payload = do(router, as(admin, httptest.NewRequest(http.MethodPost, "/api/programs", strings.NewReader(`{"title":"x"}`))))
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "slug is required, program is required, content is required", payload["message"])

	repo.createErr = &pgconn.PgError{Code: "23505", Detail: "Key (slug)=(gala) already exists."}
	body := `{"title":"Gala","slug":"gala","program":"latest","content":"Night"}`
	res, payload = do(router, as(admin, httptest.NewRequest(http.MethodPost, "/api/programs", strings.NewReader(body))))
	assert.Equal(t, http.StatusConflict, res.Code)
	assert.Equal(t, "Slug already exists", payload["message"])
}

func TestMoveIntoLatestRequiresLatestPage(t *testing.T) {
	health := Program{ID: uuid.New(), Title: "Clinic", Slug: "clinic", Program: "health", Content: "Mobile clinic"}
	repo := newMemoryRepo(health)
	router := newRouter(repo)
	body := `{"title":"Clinic","slug":"clinic","program":"latest","content":"Mobile clinic"}`
	put := func(acc *users.Account) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/api/programs/"+health.ID.String(), strings.NewReader(body))
		res, _ := do(router, as(acc, req))
		return res
	}

	res := put(editor(rbac.PagePrograms))
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Contains(t, res.Body.String(), "you do not have permission to access latest")
	assert.Equal(t, "health", repo.items[health.ID].Program)

	res = put(editor(rbac.PageLatest))
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Contains(t, res.Body.String(), "you do not have permission to access programs")

	res = put(editor(rbac.PagePrograms, rbac.PageLatest))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "latest", repo.items[health.ID].Program)
}
