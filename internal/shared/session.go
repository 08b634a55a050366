package shared

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/imobiflow/imobiflow/internal/rbac"
)

const sessionKeyPrefix = "imobiflow:session:"

// SessionManager resolves opaque session tokens to principals stored in
// Redis. It is the upstream authentication step the RBAC layer assumes:
// it only attaches a principal, it never makes authorization decisions.
// Credential verification and token issuance to end users live outside
// this service; Issue exists for the seed tool and tests.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, cookieName string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{client: client, cookieName: cookieName, ttl: ttl, secure: secure}
}

// Load resolves the request's session token to a principal. A missing or
// expired token yields (nil, nil): the request proceeds unauthenticated and
// the guards decide what that means.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*rbac.Principal, error) {
	token := sm.token(r)
	if token == "" {
		return nil, nil
	}
	payload, err := sm.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var principal rbac.Principal
	if err := json.Unmarshal(payload, &principal); err != nil {
		return nil, err
	}
	if !principal.Role.Valid() {
		// A session with a role this build does not know is not trusted.
		return nil, nil
	}
	return &principal, nil
}

// Issue stores a principal under a fresh token.
func (sm *SessionManager) Issue(ctx context.Context, principal rbac.Principal) (string, error) {
	payload, err := json.Marshal(principal)
	if err != nil {
		return "", err
	}
	token := newToken()
	if err := sm.client.Set(ctx, sessionKeyPrefix+token, payload, sm.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Revoke deletes a session token.
func (sm *SessionManager) Revoke(ctx context.Context, token string) error {
	err := sm.client.Del(ctx, sessionKeyPrefix+token).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// WriteCookie sets the session cookie on the response.
func (sm *SessionManager) WriteCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sm.ttl.Seconds()),
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// CookieName returns the configured session cookie name.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

// TTL returns the session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

func (sm *SessionManager) token(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func newToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
