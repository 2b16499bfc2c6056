package auth

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/recon-portal/internal/platform/httpx"
	"github.com/odyssey-erp/recon-portal/internal/shared"
	"github.com/odyssey-erp/recon-portal/internal/view"
)

const maxLoginBody = 4 << 10

// Login outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// LoginObserver receives one observation per login attempt.
type LoginObserver interface {
	ObserveLogin(outcome string)
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	sessions  *shared.SessionManager
	validator *validator.Validate
	observer  LoginObserver
}

// NewHandler constructs a Handler instance. observer may be nil.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, observer LoginObserver) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		sessions:  sessions,
		validator: validator.New(),
		observer:  observer,
	}
}

// MountRoutes registers the login pages.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showLogin)
	r.Get(LoginPath, h.showLogin)
}

// MountAPI registers the JSON endpoints on a router mounted under /api.
// loginMW wraps only the login endpoint.
func (h *Handler) MountAPI(r chi.Router, loginMW ...func(http.Handler) http.Handler) {
	r.With(loginMW...).Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/check-session", h.checkSession)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginPageData struct {
	Next string
}

type sessionStatus struct {
	Active bool `json:"active"`
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if shared.SessionFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	viewData := view.TemplateData{
		Title:       "Login",
		CurrentPath: r.URL.Path,
		Data:        loginPageData{Next: SafeNext(r.URL.Query().Get("next"))},
	}
	if err := h.templates.Render(w, "pages/login.html", viewData); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r) {
		h.observe(OutcomeInvalid)
		httpx.RespondError(w, httpx.NewValidationError("Request must be JSON"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxLoginBody)
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.observe(OutcomeInvalid)
		httpx.RespondError(w, httpx.NewValidationError("Request must be JSON"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.observe(OutcomeInvalid)
		httpx.RespondError(w, httpx.NewValidationError("Missing credentials"))
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrInvalidCredentials):
			h.observe(OutcomeFailure)
			h.logger.Warn("login failed", slog.String("remote", r.RemoteAddr))
			httpx.RespondError(w, err)
		case errors.Is(err, shared.ErrValidation):
			h.observe(OutcomeInvalid)
			httpx.RespondError(w, httpx.NewValidationError("Missing credentials"))
		default:
			h.observe(OutcomeError)
			h.logger.Error("login", slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}

	// Rotate: a login never reuses a token the client already held.
	if prev := shared.SessionFromContext(r.Context()); prev != nil {
		if err := h.sessions.Destroy(r.Context(), prev.ID); err != nil {
			h.logger.Warn("destroy previous session", slog.Any("error", err))
		}
	}
	sess, err := h.sessions.Create(r.Context(), user.ID, user.Email)
	if err != nil {
		h.observe(OutcomeError)
		h.logger.Error("create session", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.sessions.SetCookie(w, sess)
	h.observe(OutcomeSuccess)
	h.logger.Info("login succeeded", slog.Int64("user_id", user.ID))
	httpx.Success(w)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		if err := h.sessions.Destroy(r.Context(), sess.ID); err != nil {
			h.logger.Warn("destroy session", slog.Any("error", err))
		}
	}
	h.sessions.ClearCookie(w)
	httpx.Success(w)
}

func (h *Handler) checkSession(w http.ResponseWriter, r *http.Request) {
	if shared.SessionFromContext(r.Context()) == nil {
		httpx.JSON(w, http.StatusUnauthorized, sessionStatus{Active: false})
		return
	}
	httpx.JSON(w, http.StatusOK, sessionStatus{Active: true})
}

func (h *Handler) observe(outcome string) {
	if h.observer != nil {
		h.observer.ObserveLogin(outcome)
	}
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
