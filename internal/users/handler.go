package users

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/harapan-ngo/harapan-cms/internal/apperr"
	"github.com/harapan-ngo/harapan-cms/internal/platform/httpx"
)

// ActorFunc returns the id of the account performing the request.
type ActorFunc func(ctx context.Context) (uuid.UUID, bool)

// Handler exposes account administration endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	errors    *httpx.ErrorResponder
	validator *validator.Validate
	actor     ActorFunc
	guards    []func(http.Handler) http.Handler
}

// NewHandler builds Handler instance. guards run before every route, in order.
func NewHandler(logger *slog.Logger, service *Service, errors *httpx.ErrorResponder, actor ActorFunc, guards ...func(http.Handler) http.Handler) *Handler {
	return &Handler{logger: logger, service: service, errors: errors, validator: httpx.NewValidator(), actor: actor, guards: guards}
}

// MountRoutes registers account routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.guards...)
	r.Get("/", h.errors.Handle(h.list))
	r.Patch("/{id}/status", h.errors.Handle(h.setStatus))
}

type statusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) error {
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		return err
	}
	if accounts == nil {
		accounts = []Account{}
	}
	httpx.OK(w, http.StatusOK, accounts)
	return nil
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) error {
	id, err := httpx.ParseID(r, "id")
	if err != nil {
		return err
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := h.validator.Struct(req); err != nil {
		return err
	}
	actor, ok := h.actor(r.Context())
	if !ok {
		return apperr.Unauthenticated(apperr.MsgTokenMissing, nil)
	}
	if actor == id && !*req.IsActive {
		return apperr.Validation(apperr.FieldError{Field: "is_active", Message: "You cannot deactivate your own account"})
	}
	acc, err := h.service.SetActive(r.Context(), actor, id, *req.IsActive)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound(apperr.MsgUserNotFound)
	}
	if err != nil {
		return err
	}
	h.logger.Info("account status changed",
		slog.String("account_id", acc.ID.String()),
		slog.Bool("is_active", acc.IsActive),
	)
	httpx.OK(w, http.StatusOK, acc)
	return nil
}
