package shared

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// SessionManager orchestrates cookie based sessions backed by Redis.
//
// Sessions have an absolute lifetime fixed at creation; reading a session
// never extends it.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
	now        func() time.Time
}

// Session is the server-side record bound to an authenticated user.
type Session struct {
	ID        string
	UserID    int64
	Email     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type sessionPayload struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, cookieName string, secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		secret:     []byte(secret),
		now:        time.Now,
	}
}

// WithClock replaces the time source used for expiry decisions.
func (sm *SessionManager) WithClock(now func() time.Time) *SessionManager {
	if now != nil {
		sm.now = now
	}
	return sm
}

// Create issues a new session for the user and persists it.
func (sm *SessionManager) Create(ctx context.Context, userID int64, email string) (*Session, error) {
	now := sm.now().UTC()
	sess := &Session{
		UserID:    userID,
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(sm.ttl),
	}
	data, err := json.Marshal(sessionPayload{
		UserID:    sess.UserID,
		Email:     sess.Email,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	})
	if err != nil {
		return nil, err
	}
	for attempt := 0; attempt < 3; attempt++ {
		id, err := uuid.NewRandom()
		if err != nil {
			return nil, fmt.Errorf("session: generate id: %w", err)
		}
		ok, err := sm.client.SetNX(ctx, sm.redisKey(id.String()), data, sm.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("session: store: %w", err)
		}
		if ok {
			sess.ID = id.String()
			return sess, nil
		}
	}
	return nil, errors.New("session: could not allocate unique id")
}

// Get returns the active session for id. Absent and expired sessions both
// yield ErrSessionInvalid.
func (sm *SessionManager) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrSessionInvalid
	}
	payload, err := sm.client.Get(ctx, sm.redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionInvalid
		}
		return nil, fmt.Errorf("session: load: %w", err)
	}
	var stored sessionPayload
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	sess := &Session{
		ID:        id,
		UserID:    stored.UserID,
		Email:     stored.Email,
		CreatedAt: stored.CreatedAt,
		ExpiresAt: stored.ExpiresAt,
	}
	if !sess.ActiveAt(sm.now()) {
		_ = sm.client.Del(ctx, sm.redisKey(id)).Err()
		return nil, ErrSessionInvalid
	}
	return sess, nil
}

// Load resolves the session referenced by the request cookie. It returns
// nil without error when the request has no active session.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, err
	}
	id, ok := sm.verify(cookie.Value)
	if !ok {
		return nil, nil
	}
	sess, err := sm.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionInvalid) {
			return nil, nil
		}
		return nil, err
	}
	return sess, nil
}

// Destroy revokes the session immediately.
func (sm *SessionManager) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := sm.client.Del(ctx, sm.redisKey(id)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

// PurgeAll removes every stored session and reports how many were deleted.
func (sm *SessionManager) PurgeAll(ctx context.Context) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := sm.client.Scan(ctx, cursor, sessionKeyPrefix+"*", 100).Result()
		if err != nil {
			return removed, fmt.Errorf("session: scan: %w", err)
		}
		if len(keys) > 0 {
			n, err := sm.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("session: purge: %w", err)
			}
			removed += int(n)
		}
		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}

// SetCookie writes the signed session cookie.
func (sm *SessionManager) SetCookie(w http.ResponseWriter, sess *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    sm.sign(sess.ID),
		Path:     "/",
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  sess.ExpiresAt,
	})
}

// ClearCookie instructs the client to drop the session cookie.
func (sm *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

// CookieValue returns the signed cookie value for a session id.
func (sm *SessionManager) CookieValue(id string) string {
	return sm.sign(id)
}

// ActiveAt reports whether the session is still valid at t.
func (s *Session) ActiveAt(t time.Time) bool {
	return s != nil && t.Before(s.ExpiresAt)
}

func (sm *SessionManager) redisKey(id string) string {
	return sessionKeyPrefix + id
}

func (sm *SessionManager) mac(id string) string {
	mac := hmac.New(sha256.New, sm.secret)
	_, _ = mac.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (sm *SessionManager) sign(id string) string {
	return id + "." + sm.mac(id)
}

func (sm *SessionManager) verify(value string) (string, bool) {
	id, sig, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(sm.mac(id))) {
		return "", false
	}
	return id, true
}
