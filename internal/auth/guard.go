package auth

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/odyssey-erp/recon-portal/internal/platform/httpx"
	"github.com/odyssey-erp/recon-portal/internal/shared"
)

// LoginPath is where unauthenticated page requests are sent.
const LoginPath = "/login"

// Guard gates protected routes on an active session. The session itself is
// loaded into the request context by the session middleware.
type Guard struct {
	logger *slog.Logger
}

// NewGuard constructs a Guard.
func NewGuard(logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{logger: logger}
}

// RequireSession returns the active session for the request or
// shared.ErrSessionInvalid.
func RequireSession(r *http.Request) (*shared.Session, error) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return nil, shared.ErrSessionInvalid
	}
	return sess, nil
}

// RequirePage redirects to the login page when no session is active.
func (g *Guard) RequirePage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := RequireSession(r); err != nil {
			target := LoginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAPI answers 401 when no session is active.
func (g *Guard) RequireAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := RequireSession(r); err != nil {
			g.logger.Debug("api request without session", slog.String("path", r.URL.Path))
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SafeNext keeps only local absolute paths so the login redirect cannot be
// pointed at another host.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return ""
	}
	if strings.HasPrefix(next, LoginPath) {
		return ""
	}
	return next
}
