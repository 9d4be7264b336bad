// Package session implements the cookie-keyed server-side session state:
// a signed session id travels in the browser cookie, the bound member
// lives in a Store. Anything wrong with the cookie (missing, tampered,
// unknown id, expired) reads as "not logged in" rather than an error.
package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"family-calendar/internal/config"
	"family-calendar/internal/models"

	"github.com/google/uuid"
)

// Store holds session state keyed by session id. Get returns (nil, nil)
// for an unknown or expired id.
type Store interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	Set(ctx context.Context, id string, sess *models.Session) error
	Delete(ctx context.Context, id string) error
}

type Manager struct {
	Store      Store
	secret     []byte
	cookieName string
	ttl        time.Duration
}

func NewManager(store Store, cfg config.SessionConfig) *Manager {
	return &Manager{
		Store:      store,
		secret:     []byte(cfg.Secret),
		cookieName: cfg.CookieName,
		ttl:        cfg.TTL,
	}
}

// Bind establishes a fresh session for the member and sets the cookie.
func (m *Manager) Bind(w http.ResponseWriter, r *http.Request, sess *models.Session) error {
	id := uuid.NewString()
	if err := m.Store.Set(r.Context(), id, sess); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    id + "." + m.sign(id),
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear drops the server-side state and expires the cookie. Idempotent:
// clearing an absent session is a no-op.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) {
	if id, ok := m.sessionID(r); ok {
		_ = m.Store.Delete(r.Context(), id)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Current resolves the caller's session. nil means not logged in.
func (m *Manager) Current(r *http.Request) *models.Session {
	id, ok := m.sessionID(r)
	if !ok {
		return nil
	}
	sess, err := m.Store.Get(r.Context(), id)
	if err != nil {
		return nil
	}
	return sess
}

func (m *Manager) sessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return "", false
	}
	id, sig, found := strings.Cut(cookie.Value, ".")
	if !found || id == "" {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(m.sign(id))) {
		return "", false
	}
	return id, true
}

func (m *Manager) sign(id string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))
}
