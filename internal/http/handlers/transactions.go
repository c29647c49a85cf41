package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/finsight/gateway/internal/config"
	"github.com/finsight/gateway/internal/domain/goal"
	"github.com/finsight/gateway/internal/domain/transaction"
	"github.com/finsight/gateway/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type TransactionsStore interface {
	Create(ctx context.Context, userID string, req transaction.CreateTransactionRequest) (transaction.Transaction, error)
	GetByID(ctx context.Context, userID, id string) (transaction.Transaction, error)
	List(ctx context.Context, userID string, filter transaction.ListFilter) ([]transaction.Transaction, error)
	Delete(ctx context.Context, userID, id string) error
}

type GoalChecker interface {
	GetByID(ctx context.Context, userID, id string) (goal.Goal, error)
}

type TransactionsHandler struct {
	repo  TransactionsStore
	goals GoalChecker
}

func NewTransactionsHandler(repo TransactionsStore, goals GoalChecker) *TransactionsHandler {
	return &TransactionsHandler{repo: repo, goals: goals}
}

func (h *TransactionsHandler) CreateTransaction(ctx *gin.Context) {
	var req transaction.CreateTransactionRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// the goal must exist and belong to the caller
	_, err := h.goals.GetByID(cctx, userID, req.GoalID)

	if err != nil {
		if errors.Is(err, goal.ErrNotFound) {
			RespondBadRequestCode(ctx, "unknown_goal", "The referenced goal does not exist.")
			return
		}
		RespondInternal(ctx, "Could not create transaction")
		return
	}

	t, err := h.repo.Create(cctx, userID, req)

	if err != nil {
		RespondInternal(ctx, "Could not create transaction")
		return
	}

	ctx.JSON(http.StatusCreated, t)
}

func (h *TransactionsHandler) ListTransactions(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	filter, ok := parseListFilter(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	txns, err := h.repo.List(cctx, userID, filter)

	if err != nil {
		RespondInternal(ctx, "Could not list transactions")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": txns,
		"count": len(txns),
	})
}

func (h *TransactionsHandler) GetTransactionByID(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	t, err := h.repo.GetByID(cctx, userID, id)

	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			RespondNotFound(ctx, "Transaction not found")
			return
		}
		RespondInternal(ctx, "Could not fetch transaction")
		return
	}

	ctx.JSON(http.StatusOK, t)
}

func (h *TransactionsHandler) DeleteTransaction(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, userID, id)

	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			RespondNotFound(ctx, "Transaction not found")
			return
		}
		RespondInternal(ctx, "Could not delete transaction")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func parseListFilter(ctx *gin.Context) (transaction.ListFilter, bool) {
	var filter transaction.ListFilter

	if goalID := ctx.Query("goal_id"); goalID != "" {
		filter.GoalID = &goalID
	}

	for _, q := range []struct {
		name string
		dst  **time.Time
	}{
		{"from", &filter.From},
		{"to", &filter.To},
	} {
		raw := ctx.Query(q.name)

		if raw == "" {
			continue
		}

		parsed, err := time.Parse("2006-01-02", raw)

		if err != nil {
			RespondBadRequest(ctx, "Invalid "+q.name+" date", gin.H{"expected": "2006-01-02"})
			return filter, false
		}

		*q.dst = &parsed
	}

	return filter, true
}
