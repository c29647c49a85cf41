package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/finsight/gateway/internal/config"
	"github.com/finsight/gateway/internal/domain/user"
	"github.com/finsight/gateway/internal/gate"
	"github.com/finsight/gateway/internal/http/middlewares"
	"github.com/finsight/gateway/internal/mailer"
	"github.com/finsight/gateway/internal/observability"
	"github.com/finsight/gateway/internal/otp"
	"github.com/finsight/gateway/internal/repo/postgres"
	"github.com/finsight/gateway/internal/session"
	"github.com/gin-gonic/gin"
)

type ProfileStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdateSensitiveProfile(ctx context.Context, id string, p user.SensitiveProfile) (user.User, error)
}

// SettingsHandler owns the sensitive-settings gate endpoints. Gate state
// lives in the session record; every mutation goes through the session
// store's serialized Update.
type SettingsHandler struct {
	users    ProfileStore
	sessions session.Store
	mail     mailer.Mailer
	cfg      config.Config
	prom     *observability.Prom

	// injectable for deterministic tests
	now     func() time.Time
	newCode func() (string, error)
}

func NewSettingsHandler(users ProfileStore, sessions session.Store, mail mailer.Mailer, cfg config.Config, prom *observability.Prom) *SettingsHandler {
	return &SettingsHandler{
		users:    users,
		sessions: sessions,
		mail:     mail,
		cfg:      cfg,
		prom:     prom,
		now:      time.Now,
		newCode:  otp.NewCode,
	}
}

type gateView struct {
	Unlocked      bool       `json:"unlocked"`
	UnlockedUntil *time.Time `json:"unlockedUntil,omitempty"`
}

func viewOf(st gate.State, now time.Time) gateView {
	v := gateView{Unlocked: st.Unlocked(now)}

	if v.Unlocked {
		until := st.VerifiedUntil
		v.UnlockedUntil = &until
	}

	return v
}

// Bootstrap backs the settings page load. It relocks unconditionally
// before returning the profile: navigating to the page always demands
// fresh proof of presence, even if an unlock window was still open.
func (h *SettingsHandler) Bootstrap(ctx *gin.Context) {
	sessID, _ := middlewares.SessionIDFromContext(ctx)
	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	sess, err := h.sessions.Update(cctx, sessID, func(s *session.Session) error {
		s.Gate = s.Gate.Lock()
		return nil
	})

	if err != nil {
		RespondInternal(ctx, "Could not load settings")
		return
	}

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not load settings")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": u,
		"gate": viewOf(sess.Gate, h.now()),
	})
}

// RequestOTP issues a fresh code, overwriting any pending one, and emails
// it to the registered address.
func (h *SettingsHandler) RequestOTP(ctx *gin.Context) {
	sessID, _ := middlewares.SessionIDFromContext(ctx)
	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not send verification code")
		return
	}

	code, err := h.newCode()

	if err != nil {
		RespondInternal(ctx, "Could not send verification code")
		return
	}

	_, err = h.sessions.Update(cctx, sessID, func(s *session.Session) error {
		s.Gate = s.Gate.IssueCode(code, h.now(), h.cfg.OTPTTL)
		return nil
	})

	if err != nil {
		RespondInternal(ctx, "Could not send verification code")
		return
	}

	err = h.mail.SendOTP(cctx, mailer.SendOTPInput{
		Email: u.Email,
		Name:  u.FullName,
		Code:  code,
	})

	if err != nil {
		h.countIssued("delivery_error")
		// generic failure, no retry; the user just requests a new code
		RespondInternal(ctx, "Could not send verification code")
		return
	}

	h.countIssued("sent")

	ctx.JSON(http.StatusOK, gin.H{"message": "Verification code sent to your email."})
}

type verifyOTPRequest struct {
	OTP string `json:"otp" binding:"required"`
}

func (h *SettingsHandler) VerifyOTP(ctx *gin.Context) {
	var req verifyOTPRequest

	if !BindJSON(ctx, &req) {
		return
	}

	sessID, _ := middlewares.SessionIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	submitted := strings.TrimSpace(req.OTP)

	sess, err := h.sessions.Update(cctx, sessID, func(s *session.Session) error {
		next, err := s.Gate.Verify(submitted, h.now(), h.cfg.UnlockWindow)

		if err != nil {
			return err
		}

		s.Gate = next
		return nil
	})

	switch {
	case errors.Is(err, gate.ErrNoCodePending):
		h.countVerify("no_code")
		RespondBadRequestCode(ctx, "no_code_pending", "No verification code is pending, or it has expired. Request a new one.")
		return

	case errors.Is(err, gate.ErrInvalidCode):
		h.countVerify("invalid")
		RespondBadRequestCode(ctx, "invalid_code", "The verification code is incorrect.")
		return

	case err != nil:
		RespondInternal(ctx, "Could not verify code")
		return
	}

	h.countVerify("ok")

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Settings unlocked.",
		"gate":    viewOf(sess.Gate, h.now()),
	})
}

// Lock is total: it succeeds whatever state the gate is in.
func (h *SettingsHandler) Lock(ctx *gin.Context) {
	sessID, _ := middlewares.SessionIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	_, err := h.sessions.Update(cctx, sessID, func(s *session.Session) error {
		s.Gate = s.Gate.Lock()
		return nil
	})

	if err != nil {
		RespondInternal(ctx, "Could not lock settings")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Settings locked."})
}

// UpdateProfile writes the gated fields. The gate is checked at call
// time against the session record, regardless of how the flag was last
// set, and a successful write does not extend the unlock window.
func (h *SettingsHandler) UpdateProfile(ctx *gin.Context) {
	var req user.SensitiveProfile

	if !BindJSON(ctx, &req) {
		return
	}

	sessID, _ := middlewares.SessionIDFromContext(ctx)
	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	sess, err := h.sessions.Get(cctx, sessID)

	if err != nil {
		RespondInternal(ctx, "Could not update profile")
		return
	}

	if err := sess.Gate.CheckWrite(h.now()); err != nil {
		RespondForbidden(ctx, "gate_locked", "Sensitive settings are locked. Verify a fresh code to continue.")
		return
	}

	u, err := h.users.UpdateSensitiveProfile(cctx, userID, req)

	if err != nil {
		if errors.Is(err, postgres.ErrEmailAlreadyUsed) {
			RespondBadRequestCode(ctx, "email_taken", "Email is already in use.")
			return
		}

		RespondInternal(ctx, "Could not update profile")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Profile updated.",
		"user":    u,
	})
}

func (h *SettingsHandler) countIssued(result string) {
	if h.prom != nil {
		h.prom.OTPIssued.WithLabelValues(result).Inc()
	}
}

func (h *SettingsHandler) countVerify(result string) {
	if h.prom != nil {
		h.prom.OTPVerify.WithLabelValues(result).Inc()
	}
}
