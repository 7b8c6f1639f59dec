package announcements

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/harapan-ngo/harapan-cms/internal/apperr"
	"github.com/harapan-ngo/harapan-cms/internal/auth"
	"github.com/harapan-ngo/harapan-cms/internal/platform/httpx"
	"github.com/harapan-ngo/harapan-cms/internal/rbac"
	"github.com/harapan-ngo/harapan-cms/internal/users"
)

// Handler manages announcement endpoints.
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

// MountRoutes registers announcement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.rbac.RequireRole(users.RoleAdmin, users.RoleEditor))
	r.Use(h.rbac.RequirePage(rbac.PageAnnouncements))
	r.Get("/", h.errors.Handle(h.list))
	r.Post("/", h.errors.Handle(h.create))
	r.Get("/{id}", h.errors.Handle(h.show))
	r.Put("/{id}", h.errors.Handle(h.update))
	r.Delete("/{id}", h.errors.Handle(h.delete))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) error {
	items, err := h.service.List(r.Context())
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
	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		return err
	}
	httpx.OK(w, http.StatusOK, a)
	return nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) error {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		return err
	}
	if err := h.validator.Struct(in); err != nil {
		return err
	}
	acc := auth.AccountFromContext(r.Context())
	if acc == nil {
		return apperr.Unauthenticated(apperr.MsgTokenMissing, nil)
	}
	a, err := h.service.Create(r.Context(), in, acc.ID)
	if err != nil {
		return err
	}
	h.logger.Info("announcement created", slog.String("announcement_id", a.ID.String()))
	httpx.OK(w, http.StatusCreated, a)
	return nil
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) error {
	id, err := httpx.ParseID(r, "id")
	if err != nil {
		return err
	}
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		return err
	}
	if err := h.validator.Struct(in); err != nil {
		return err
	}
	a, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		return err
	}
	httpx.OK(w, http.StatusOK, a)
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
	httpx.JSON(w, http.StatusOK, httpx.Data{Success: true, Message: "Announcement deleted"})
	return nil
}
