package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/finsight/gateway/internal/config"
	"github.com/finsight/gateway/internal/domain/goal"
	"github.com/finsight/gateway/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type GoalsStore interface {
	Create(ctx context.Context, userID string, req goal.CreateGoalRequest) (goal.Goal, error)
	GetByID(ctx context.Context, userID, id string) (goal.Goal, error)
	List(ctx context.Context, userID string) ([]goal.Goal, error)
	Update(ctx context.Context, userID, id string, req goal.UpdateGoalRequest) (goal.Goal, error)
	Delete(ctx context.Context, userID, id string) error
}

type GoalsHandler struct {
	repo GoalsStore
}

func NewGoalsHandler(repo GoalsStore) *GoalsHandler {
	return &GoalsHandler{repo: repo}
}

func (h *GoalsHandler) CreateGoal(ctx *gin.Context) {
	var req goal.CreateGoalRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	g, err := h.repo.Create(cctx, userID, req)

	if err != nil {
		RespondInternal(ctx, "Could not create goal")
		return
	}

	ctx.JSON(http.StatusCreated, g)
}

func (h *GoalsHandler) ListGoals(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	goals, err := h.repo.List(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list goals")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": goals,
		"count": len(goals),
	})
}

func (h *GoalsHandler) GetGoalByID(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	g, err := h.repo.GetByID(cctx, userID, id)

	if err != nil {
		if errors.Is(err, goal.ErrNotFound) {
			RespondNotFound(ctx, "Goal not found")
			return
		}
		RespondInternal(ctx, "Could not fetch goal")
		return
	}

	ctx.JSON(http.StatusOK, g)
}

func (h *GoalsHandler) UpdateGoal(ctx *gin.Context) {
	var req goal.UpdateGoalRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, _ := middlewares.UserIDFromContext(ctx)
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	g, err := h.repo.Update(cctx, userID, id, req)

	if err != nil {
		if errors.Is(err, goal.ErrNotFound) {
			RespondNotFound(ctx, "Goal not found")
			return
		}
		RespondInternal(ctx, "Could not update goal")
		return
	}

	ctx.JSON(http.StatusOK, g)
}

func (h *GoalsHandler) DeleteGoal(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, userID, id)

	if err != nil {
		if errors.Is(err, goal.ErrNotFound) {
			RespondNotFound(ctx, "Goal not found")
			return
		}
		RespondInternal(ctx, "Could not delete goal")
		return
	}

	ctx.Status(http.StatusNoContent)
}
