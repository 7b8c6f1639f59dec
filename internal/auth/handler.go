package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/harapan-ngo/harapan-cms/internal/platform/httpx"
	"github.com/harapan-ngo/harapan-cms/internal/users"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger        *slog.Logger
	service       *Service
	errors        *httpx.ErrorResponder
	validator     *validator.Validate
	authenticate  func(http.Handler) http.Handler
	secureCookies bool
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, errors *httpx.ErrorResponder, authn *Authenticator, secureCookies bool) *Handler {
	return &Handler{
		logger:        logger,
		service:       service,
		errors:        errors,
		validator:     httpx.NewValidator(),
		authenticate:  authn.Middleware,
		secureCookies: secureCookies,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.errors.Handle(h.handleLogin))
	r.Group(func(r chi.Router) {
		r.Use(h.authenticate)
		r.Post("/logout", h.errors.Handle(h.handleLogout))
		r.Get("/me", h.errors.Handle(h.handleMe))
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Account   *users.Account `json:"account"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := h.validator.Struct(req); err != nil {
		return err
	}

	token, claims, acc, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	expiresAt := claims.ExpiresAt.Time
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		Expires:  expiresAt,
	})
	if h.logger != nil {
		h.logger.Info("account signed in", slog.String("account_id", acc.ID.String()))
	}
	httpx.OK(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt, Account: acc})
	return nil
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) error {
	identity := IdentityFromContext(r.Context())
	if identity != nil {
		if err := h.service.Logout(r.Context(), identity.TokenID, identity.ExpiresAt); err != nil {
			return err
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	httpx.JSON(w, http.StatusOK, httpx.Data{Success: true, Message: "Signed out"})
	return nil
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) error {
	httpx.OK(w, http.StatusOK, AccountFromContext(r.Context()))
	return nil
}
