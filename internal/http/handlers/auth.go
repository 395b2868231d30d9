package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ricmelo/menuhub/internal/config"
	"github.com/ricmelo/menuhub/internal/domain/user"
	"github.com/ricmelo/menuhub/internal/http/middlewares"
	"github.com/ricmelo/menuhub/internal/security"
	"github.com/ricmelo/menuhub/internal/session"
)

type UserReader interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, u user.User) error
}

// SessionIssuer is the slice of the session manager the auth routes need.
type SessionIssuer interface {
	Issue(ctx context.Context, userID string) (string, session.Session, error)
	Destroy(ctx context.Context, raw string) error
	TTL() time.Duration
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	sessions   SessionIssuer
	cfg        config.Config
	onIssued   func()
	onRevoked  func()
}

func NewAuthHandler(users UserReader, userWriter UserWriter, sessions SessionIssuer, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		sessions:   sessions,
		cfg:        cfg,
	}
}

// WithSessionCounters attaches metric hooks for issued/revoked sessions.
func (h *AuthHandler) WithSessionCounters(issued, revoked func()) *AuthHandler {
	h.onIssued = issued
	h.onRevoked = revoked
	return h
}

// Comparing against this when the username is unknown keeps login latency
// independent of user existence.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create account")
		return
	}

	u := user.NewFromRegisterRequest(req, hash)

	err = h.userWriter.Create(cctx, u)

	if err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			RespondConflict(ctx, "username_taken", "Username is already in use.")
			return
		}

		RespondInternal(ctx, "Could not create account")
		return
	}

	// the original flow logs a fresh registration straight in
	raw, s, err := h.sessions.Issue(cctx, u.ID)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	if h.onIssued != nil {
		h.onIssued()
	}

	h.setSessionCookie(ctx, raw, s.ExpiresAt)

	ctx.JSON(http.StatusCreated, gin.H{
		"userId":       u.ID,
		"sessionToken": raw,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByUsername(cctx, req.Username)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// burn the same bcrypt cost as the found-user path
			_ = security.CheckPassword(dummyPasswordHash, req.Password)

			RespondUnAuthorized(ctx, "invalid_credentials", "Username or password is incorrect.")
			return
		}

		RespondInternal(ctx, "Could not log in")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Username or password is incorrect.")
		return
	}

	raw, s, err := h.sessions.Issue(cctx, foundUser.ID)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	if h.onIssued != nil {
		h.onIssued()
	}

	h.setSessionCookie(ctx, raw, s.ExpiresAt)

	ctx.JSON(http.StatusOK, gin.H{
		"sessionToken": raw,
	})
}

// Logout destroys whatever token was presented; it never fails the client.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	raw := middlewares.TokenFromRequest(ctx)

	if raw != "" {
		cctx, cancel := config.WithTimeout(3 * time.Second)
		defer cancel()

		// idempotent; an already-dead token is fine
		if err := h.sessions.Destroy(cctx, raw); err == nil && h.onRevoked != nil {
			h.onRevoked()
		}
	}

	h.clearSessionCookie(ctx)
	ctx.Status(http.StatusNoContent)
}

// Cookie helpers; the browser flow rides on the same opaque token the JSON
// clients put in the Authorization header.

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, raw string, expiresAt time.Time) {
	secure := h.cfg.Env == "prod"

	maxAge := int(time.Until(expiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteStrictMode)

	ctx.SetCookie(
		middlewares.SessionCookieName,
		raw,
		maxAge,
		"/",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(
		middlewares.SessionCookieName,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}
