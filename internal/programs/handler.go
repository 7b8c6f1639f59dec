package programs

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/harapan-ngo/harapan-cms/internal/apperr"
	"github.com/harapan-ngo/harapan-cms/internal/auth"
	"github.com/harapan-ngo/harapan-cms/internal/platform/httpx"
	"github.com/harapan-ngo/harapan-cms/internal/rbac"
)

// Handler manages program endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	errors    *httpx.ErrorResponder
	validator *validator.Validate
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, errors *httpx.ErrorResponder, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, errors: errors, validator: httpx.NewValidator(), rbac: rbac}
}

// PageRule is the dynamic page rule guarding program routes: programs in
// the latest category require the latest page, everything else programs.
func (h *Handler) PageRule() rbac.DynamicRule {
	return rbac.DynamicRule{
		DefaultPage:  rbac.PagePrograms,
		OverridePage: rbac.PageLatest,
		Sentinel:     LatestCategory,
		Field:        "program",
		Source:       h.service,
	}
}

// MountRoutes registers program routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePage(rbac.PageLatest))
		r.Get("/latest", h.errors.Handle(h.listLatest))
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireDynamicPage(h.PageRule()))
		r.Get("/", h.errors.Handle(h.list))
		r.Post("/", h.errors.Handle(h.create))
		r.Get("/{id}", h.errors.Handle(h.show))
		r.Put("/{id}", h.errors.Handle(h.update))
		r.Delete("/{id}", h.errors.Handle(h.delete))
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) error {
	items, err := h.service.List(r.Context(), Filter{Category: r.URL.Query().Get("program"), Exclude: LatestCategory})
	if err != nil {
		return err
	}
	httpx.OK(w, http.StatusOK, items)
	return nil
}

func (h *Handler) listLatest(w http.ResponseWriter, r *http.Request) error {
	items, err := h.service.List(r.Context(), Filter{Category: LatestCategory})
	if err != nil {
		return err
	}
	httpx.OK(w, http.StatusOK, items)
	return nil
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) error {
	id, err := httpx.ParseID(r, "id")
	if err != nil {
		return err
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		return err
	}
	httpx.OK(w, http.StatusOK, p)
	return nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) error {
	in, err := h.decode(r)
	if err != nil {
		return err
	}
	acc := auth.AccountFromContext(r.Context())
	if acc == nil {
		return apperr.Unauthenticated(apperr.MsgTokenMissing, nil)
	}
	p, err := h.service.Create(r.Context(), in, acc.ID)
	if err != nil {
		return err
	}
	h.logger.Info("program created", slog.String("program_id", p.ID.String()), slog.String("account_id", acc.ID.String()))
	httpx.OK(w, http.StatusCreated, p)
	return nil
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) error {
	id, err := httpx.ParseID(r, "id")
	if err != nil {
		return err
	}
	in, err := h.decode(r)
	if err != nil {
		return err
	}
	p, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		return err
	}
	httpx.OK(w, http.StatusOK, p)
	return nil
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) error {
	id, err := httpx.ParseID(r, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, httpx.Data{Success: true, Message: "Program deleted"})
	return nil
}

func (h *Handler) decode(r *http.Request) (Input, error) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		return in, err
	}
	if err := h.validator.Struct(in); err != nil {
		return in, err
	}
	return in, nil
}
