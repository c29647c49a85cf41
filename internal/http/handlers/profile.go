package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/finsight/gateway/internal/config"
	"github.com/finsight/gateway/internal/domain/user"
	"github.com/finsight/gateway/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type ProfileReader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdatePreferences(ctx context.Context, id string, emailNotifications bool) error
	CompleteSurvey(ctx context.Context, id, riskTolerance string) error
}

// ProfileHandler covers the ungated profile surface: reads, notification
// preferences and the risk questionnaire. Only the fields behind the
// settings gate require a fresh code.
type ProfileHandler struct {
	users ProfileReader
}

func NewProfileHandler(users ProfileReader) *ProfileHandler {
	return &ProfileHandler{users: users}
}

func (h *ProfileHandler) GetProfile(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "Profile not found")
			return
		}

		RespondInternal(ctx, "Could not load profile")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *ProfileHandler) UpdatePreferences(ctx *gin.Context) {
	var req user.Preferences

	if !BindJSON(ctx, &req) {
		return
	}

	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.users.UpdatePreferences(cctx, userID, *req.EmailNotifications); err != nil {
		RespondInternal(ctx, "Could not update preferences")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Preferences updated."})
}

func (h *ProfileHandler) CompleteSurvey(ctx *gin.Context) {
	var req user.SurveyRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.users.CompleteSurvey(cctx, userID, req.RiskTolerance); err != nil {
		RespondInternal(ctx, "Could not save survey")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Survey completed."})
}
