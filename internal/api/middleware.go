// internal/api/middleware.go
package api

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codr1/pickup/internal/api/apiutil"
	"github.com/codr1/pickup/internal/api/authz"
	"github.com/codr1/pickup/internal/api/flash"
	"github.com/codr1/pickup/internal/db"
	"github.com/codr1/pickup/internal/models"
)

const (
	sessionLookupTimeout = 5 * time.Second

	MsgLoginRequired = "Please log in to access this page."
)

type Middleware func(http.Handler) http.Handler

type requestIDKey struct{}

func ChainMiddleware(h http.Handler, middleware ...Middleware) http.Handler {
	for _, m := range middleware {
		h = m(h)
	}
	return h
}

// RequestIDFromContext returns the ID assigned by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create response wrapper to capture status code
		wrapped := wrapResponseWriter(w)

		next.ServeHTTP(wrapped, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.status).
			Dur("duration", time.Since(start)).
			Str("request_id", RequestIDFromContext(r.Context())).
			Msg("Request completed")
	})
}

func WithRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger := log.Ctx(r.Context())
				// Log the full stack trace
				stack := debug.Stack()
				logger.Error().
					Interface("error", err).
					Str("stack", string(stack)).
					Msg("Panic recovered")

				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()

		// Create a logger with the request ID
		logger := log.With().Str("request_id", requestID).Logger()

		// Add both the request ID and logger to context
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		ctx = logger.WithContext(ctx)

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func WithContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Set default content type if not set
		if r.Header.Get("Accept") == "" {
			r.Header.Set("Accept", "text/html")
		}
		next.ServeHTTP(w, r)
	})
}

// SessionResolver maps a request's session cookie to a user ID.
type SessionResolver interface {
	UserID(w http.ResponseWriter, r *http.Request) (string, bool, error)
}

// UserLookup loads the account behind a session.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (models.Account, error)
}

// WithAuth attaches the signed-in user, if any, to the request context.
// Session failures degrade to an anonymous request.
func WithAuth(sessions SessionResolver, users UserLookup) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.Ctx(r.Context())

			userID, ok, err := sessions.UserID(w, r)
			if err != nil {
				logger.Warn().Err(err).Msg("Failed to load auth session")
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), sessionLookupTimeout)
			account, err := users.GetUserByID(ctx, userID)
			cancel()
			if err != nil {
				if !errors.Is(err, db.ErrNotFound) {
					logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to load session user")
				}
				next.ServeHTTP(w, r)
				return
			}

			user := &authz.AuthUser{ID: account.ID, Email: account.Email}
			next.ServeHTTP(w, r.WithContext(authz.ContextWithUser(r.Context(), user)))
		})
	}
}

// RequireAuth sends anonymous requests to the login page.
func RequireAuth(flasher *flash.Flasher) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := authz.RequireUser(r.Context()); err != nil {
				log.Ctx(r.Context()).Debug().Str("path", r.URL.Path).Msg("Login required")
				flasher.Info(w, r, MsgLoginRequired)
				apiutil.Redirect(w, r, "/login")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wrapper to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
