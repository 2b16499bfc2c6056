package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/odyssey-erp/recon-portal/internal/auth"
	"github.com/odyssey-erp/recon-portal/internal/shared"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusTeapot)
})

func TestRequirePageRedirectsToLogin(t *testing.T) {
	guard := auth.NewGuard(nil)

	rec := httptest.NewRecorder()
	guard.RequirePage(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dns_info?x=1", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?next=%2Fdns_info%3Fx%3D1", rec.Header().Get("Location"))
}

func TestRequireAPIAnswersUnauthorized(t *testing.T) {
	guard := auth.NewGuard(nil)

	rec := httptest.NewRecorder()
	guard.RequireAPI(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reports/render", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"status":"error","message":"Unauthorized"}`, rec.Body.String())
}

func TestGuardPassesActiveSession(t *testing.T) {
	guard := auth.NewGuard(nil)
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), &shared.Session{ID: "s"}))

	for _, h := range []http.Handler{guard.RequirePage(okHandler), guard.RequireAPI(okHandler)} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}
}

func TestSafeNext(t *testing.T) {
	cases := map[string]string{
		"/dns_info":            "/dns_info",
		"/dashboard?tab=1":     "/dashboard?tab=1",
		"":                     "",
		"dns_info":             "",
		"//evil.example":       "",
		`/\evil.example`:       "",
		"https://evil.example": "",
		"/login?next=/x":       "",
	}
	for in, want := range cases {
		assert.Equal(t, want, auth.SafeNext(in), in)
	}
}
