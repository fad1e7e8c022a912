package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/codr1/pickup/internal/api/apiutil"
	"github.com/codr1/pickup/internal/api/authz"
	"github.com/codr1/pickup/internal/api/flash"
	"github.com/codr1/pickup/internal/db"
	"github.com/codr1/pickup/internal/email"
	"github.com/codr1/pickup/internal/events"
	"github.com/codr1/pickup/internal/models"
	"github.com/codr1/pickup/internal/ratelimit"
	authtempl "github.com/codr1/pickup/internal/templates/components/auth"
	"github.com/codr1/pickup/internal/templates/layouts"
)

const authQueryTimeout = 5 * time.Second

const (
	MsgEmailAlreadyRegistered = "Email already registered."
	MsgAccountCreated         = "Account created successfully. Please log in."
	MsgLoggedIn               = "Logged in successfully!"
	MsgLoggedOut              = "You’ve logged out."
	MsgInvalidCredentials     = "Invalid email or password."
	MsgCredentialsRequired    = "Email and password are required."
	MsgTooManyAttempts        = "Too many login attempts. Please try again later."
)

// AccountStore is the account persistence the handlers need.
type AccountStore interface {
	GetUserByEmail(ctx context.Context, email string) (models.Account, error)
	CreateUser(ctx context.Context, email, passwordHash string, now time.Time) (models.Account, error)
}

// Deps are the collaborators the auth handlers are built from.
type Deps struct {
	Accounts    AccountStore
	Sessions    *SessionManager
	Flash       *flash.Flasher
	EmailDomain string
	Lockout     *ratelimit.Limiter
	TrustProxy  bool
	Mailer      email.EmailSender
	Events      events.Publisher
	AppName     string
	BaseURL     string
}

// Handlers serves signup, login and logout.
type Handlers struct {
	Deps
	throttle *rate.Limiter
	now      func() time.Time
}

func NewHandlers(deps Deps) *Handlers {
	if deps.Lockout == nil {
		deps.Lockout = ratelimit.New(nil)
	}
	if deps.Events == nil {
		deps.Events = events.NoopPublisher{}
	}
	deps.EmailDomain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(deps.EmailDomain)), "@")
	return &Handlers{
		Deps:     deps,
		throttle: rate.NewLimiter(rate.Limit(100), 10), // More restrictive for auth
		now:      time.Now,
	}
}

// DomainMessage is the rejection shown for emails outside the allowed domain.
func (h *Handlers) DomainMessage() string {
	return fmt.Sprintf("You must use an @%s email.", h.EmailDomain)
}

// GET /signup
func (h *Handlers) HandleSignupPage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "Sign up", authtempl.SignupForm(h.EmailDomain))
}

// POST /signup
func (h *Handlers) HandleSignup(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if !h.throttle.Allow() {
		http.Error(w, "Too many requests", http.StatusTooManyRequests)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	emailAddress := normalizeEmail(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")

	if emailAddress == "" || password == "" {
		h.Flash.Error(w, r, MsgCredentialsRequired)
		apiutil.Redirect(w, r, "/signup")
		return
	}

	if !strings.HasSuffix(emailAddress, "@"+h.EmailDomain) {
		h.Flash.Error(w, r, h.DomainMessage())
		apiutil.Redirect(w, r, "/signup")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), authQueryTimeout)
	defer cancel()

	// Existence check and insert are separate statements; two concurrent
	// signups for one address can both pass.
	_, err := h.Accounts.GetUserByEmail(ctx, emailAddress)
	switch {
	case err == nil:
		h.Flash.Error(w, r, MsgEmailAlreadyRegistered)
		apiutil.Redirect(w, r, "/signup")
		return
	case !errors.Is(err, db.ErrNotFound):
		logger.Error().Err(err).Msg("Failed to check existing account")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	hash, err := HashPassword(password)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to hash password")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	account, err := h.Accounts.CreateUser(ctx, emailAddress, hash, h.now())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create account")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	logger.Info().Str("user_id", account.ID).Msg("Account created")
	email.SendAsync(r.Context(), h.Mailer, account.Email, email.BuildWelcomeEmail(h.AppName, h.BaseURL), logger)
	events.Emit(r.Context(), h.Events, events.AccountCreated, events.AccountCreatedData{AccountID: account.ID})

	h.Flash.Success(w, r, MsgAccountCreated)
	apiutil.Redirect(w, r, "/login")
}

// GET /login
func (h *Handlers) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "Log in", authtempl.LoginForm())
}

// POST /login
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if !h.throttle.Allow() {
		http.Error(w, "Too many requests", http.StatusTooManyRequests)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	emailAddress := normalizeEmail(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")
	if emailAddress == "" || password == "" {
		h.Flash.Error(w, r, MsgCredentialsRequired)
		apiutil.Redirect(w, r, "/login")
		return
	}

	clientIP := ratelimit.GetClientIP(r, h.TrustProxy)
	if result := h.Lockout.CheckLogin(emailAddress, clientIP); !result.Allowed {
		ratelimit.LogRateLimitExceeded(r, emailAddress, clientIP, result.Reason)
		h.Flash.Error(w, r, MsgTooManyAttempts)
		apiutil.Redirect(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), authQueryTimeout)
	defer cancel()

	account, err := h.Accounts.GetUserByEmail(ctx, emailAddress)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		logger.Error().Err(err).Msg("Failed to load account for login")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err != nil || !VerifyPassword(account.PasswordHash, password) {
		if h.Lockout.RecordFailure(emailAddress, clientIP) {
			logger.Warn().Str("email", ratelimit.SanitizeIdentifier(emailAddress)).Msg("Login locked out after repeated failures")
		}
		h.Flash.Error(w, r, MsgInvalidCredentials)
		apiutil.Redirect(w, r, "/login")
		return
	}

	h.Lockout.Reset(emailAddress)
	if err := h.Sessions.Create(ctx, w, account.ID); err != nil {
		logger.Error().Err(err).Str("user_id", account.ID).Msg("Failed to create session")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	logger.Info().Str("user_id", account.ID).Msg("User logged in")
	h.Flash.Success(w, r, MsgLoggedIn)
	apiutil.Redirect(w, r, "/")
}

// GET /logout
func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if err := h.Sessions.Destroy(w, r); err != nil {
		logger.Warn().Err(err).Msg("Failed to delete session")
	}
	if user := authz.UserFromContext(r.Context()); user != nil {
		logger.Info().Str("user_id", user.ID).Msg("User logged out")
	}

	h.Flash.Info(w, r, MsgLoggedOut)
	apiutil.Redirect(w, r, "/")
}

func (h *Handlers) renderPage(w http.ResponseWriter, r *http.Request, title string, content templ.Component) {
	page := layouts.Base(layouts.Page{
		Title:   title,
		User:    authz.UserFromContext(r.Context()),
		Flashes: h.Flash.Pop(w, r),
	}, content)
	apiutil.RenderHTMLComponent(r.Context(), w, page, nil, "Failed to render "+strings.ToLower(title)+" page", "Failed to render page")
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
