package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/codr1/pickup/internal/config"
)

const (
	sessionCookieName      = "pickup_session"
	sessionTokenBytes      = 32
	sessionCleanupInterval = 15 * time.Minute
)

// SessionRecord is what a session token resolves to.
type SessionRecord struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s SessionRecord) expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// SessionStore persists session records by token.
type SessionStore interface {
	Save(ctx context.Context, token string, record SessionRecord) error
	// Get reports false for unknown or expired tokens.
	Get(ctx context.Context, token string) (SessionRecord, bool, error)
	Delete(ctx context.Context, token string) error
}

// SessionManager issues and resolves the session cookie.
type SessionManager struct {
	store  SessionStore
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessionManager(store SessionStore, ttl time.Duration, secure bool) *SessionManager {
	if ttl <= 0 {
		ttl = config.DefaultSessionTTL
	}
	return &SessionManager{store: store, ttl: ttl, secure: secure, now: time.Now}
}

// NewSessionStoreFromConfig picks the backend named in cfg.
func NewSessionStoreFromConfig(ctx context.Context, cfg *config.Config) (SessionStore, error) {
	switch cfg.Auth.SessionStore {
	case config.SessionStoreRedis:
		return NewRedisStore(ctx, cfg.Auth.Redis)
	case config.SessionStoreMemory, "":
		return NewMemoryStore(), nil
	default:
		return nil, errors.New("unsupported session store: " + cfg.Auth.SessionStore)
	}
}

// Create starts a session for userID and sets the session cookie.
func (m *SessionManager) Create(ctx context.Context, w http.ResponseWriter, userID string) error {
	if w == nil {
		return errors.New("session requires response writer")
	}

	token, err := newSessionToken()
	if err != nil {
		return err
	}

	expiresAt := m.now().Add(m.ttl)
	if err := m.store.Save(ctx, token, SessionRecord{UserID: userID, ExpiresAt: expiresAt}); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
		MaxAge:   int(m.ttl.Seconds()),
	})

	return nil
}

// UserID resolves the request's session cookie. A missing or stale cookie
// is not an error; stale cookies are cleared.
func (m *SessionManager) UserID(w http.ResponseWriter, r *http.Request) (string, bool, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", false, nil
		}
		return "", false, err
	}

	record, ok, err := m.store.Get(r.Context(), cookie.Value)
	if err != nil {
		return "", false, err
	}
	if !ok {
		m.clearCookie(w)
		return "", false, nil
	}
	return record.UserID, true, nil
}

// Destroy deletes the request's session, if any, and clears the cookie.
func (m *SessionManager) Destroy(w http.ResponseWriter, r *http.Request) error {
	var err error
	if cookie, cookieErr := r.Cookie(sessionCookieName); cookieErr == nil {
		err = m.store.Delete(r.Context(), cookie.Value)
	}
	m.clearCookie(w)
	return err
}

func (m *SessionManager) clearCookie(w http.ResponseWriter) {
	if w == nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

func newSessionToken() (string, error) {
	token := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(token); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(token), nil
}

// MemoryStore keeps sessions in process. Sessions do not survive restarts.
type MemoryStore struct {
	mu          sync.RWMutex
	sessions    map[string]SessionRecord
	cleanupOnce sync.Once
	stop        chan struct{}
	stopOnce    sync.Once
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]SessionRecord),
		stop:     make(chan struct{}),
		now:      time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, token string, record SessionRecord) error {
	s.startCleanup()

	s.mu.Lock()
	s.sessions[token] = record
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (SessionRecord, bool, error) {
	s.mu.RLock()
	record, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return SessionRecord{}, false, nil
	}

	if record.expired(s.now()) {
		s.deleteToken(token)
		return SessionRecord{}, false, nil
	}

	return record, true, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.deleteToken(token)
	return nil
}

// Close stops the background pruning goroutine.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *MemoryStore) startCleanup() {
	s.cleanupOnce.Do(func() {
		// Lazy-start cleanup only when sessions are first used.
		go func() {
			ticker := time.NewTicker(sessionCleanupInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					s.pruneExpired()
				case <-s.stop:
					return
				}
			}
		}()
	})
}

func (s *MemoryStore) pruneExpired() {
	now := s.now()
	s.mu.Lock()
	for token, record := range s.sessions {
		if record.expired(now) {
			delete(s.sessions, token)
		}
	}
	s.mu.Unlock()
}

func (s *MemoryStore) deleteToken(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}
