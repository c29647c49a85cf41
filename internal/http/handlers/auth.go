package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/finsight/gateway/internal/config"
	"github.com/finsight/gateway/internal/domain/user"
	"github.com/finsight/gateway/internal/http/middlewares"
	"github.com/finsight/gateway/internal/repo/postgres"
	"github.com/finsight/gateway/internal/security"
	"github.com/finsight/gateway/internal/session"
	"github.com/gin-gonic/gin"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, email, passwordHash, fullName string, consent bool) (user.User, error)
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	sessions   session.Store
	cfg        config.Config
}

func NewAuthHandler(users UserReader, userWriter UserWriter, sessions session.Store, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		sessions:   sessions,
		cfg:        cfg,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required,min=2,max=120"`
	Consent  bool   `json:"consent" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

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

	u, err := h.userWriter.Create(cctx, req.Email, hash, req.FullName, req.Consent)

	if err != nil {
		if errors.Is(err, postgres.ErrEmailAlreadyUsed) {
			RespondBadRequestCode(ctx, "email_taken", "Email is already in use.")
			return
		}

		RespondInternal(ctx, "Could not create account")
		return
	}

	sess, err := h.sessions.Create(cctx, u.ID, u.Email)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setSessionCookie(ctx, sess)

	ctx.JSON(http.StatusCreated, gin.H{"user": u})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	sess, err := h.sessions.Create(cctx, foundUser.ID, foundUser.Email)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setSessionCookie(ctx, sess)

	ctx.JSON(http.StatusOK, gin.H{"user": foundUser})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	id, ok := middlewares.SessionIDFromContext(ctx)

	if ok && id != "" {
		cctx, cancel := config.WithTimeout(2 * time.Second)
		defer cancel()

		// idempotent; a missing session is already logged out
		_ = h.sessions.Delete(cctx, id)
	}

	h.clearSessionCookie(ctx)
	ctx.Status(http.StatusNoContent)
}

// Cookie helpers. The value is only the opaque session id; everything
// else lives server-side.

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, sess session.Session) {
	secure := h.cfg.Env == "prod"

	maxAge := int(time.Until(sess.ExpiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteLaxMode)

	ctx.SetCookie(
		session.CookieName,
		sess.ID,
		maxAge,
		"/",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		session.CookieName,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}
