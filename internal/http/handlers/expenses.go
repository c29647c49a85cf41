package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/finsight/gateway/internal/config"
	"github.com/finsight/gateway/internal/domain/expense"
	"github.com/finsight/gateway/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type ExpensesStore interface {
	Create(ctx context.Context, userID string, req expense.CreateExpenseRequest) (expense.Expense, error)
	List(ctx context.Context, userID string) ([]expense.Expense, error)
	Delete(ctx context.Context, userID, id string) error
}

type ExpensesHandler struct {
	repo ExpensesStore
}

func NewExpensesHandler(repo ExpensesStore) *ExpensesHandler {
	return &ExpensesHandler{repo: repo}
}

func (h *ExpensesHandler) CreateExpense(ctx *gin.Context) {
	var req expense.CreateExpenseRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	e, err := h.repo.Create(cctx, userID, req)

	if err != nil {
		RespondInternal(ctx, "Could not record expense")
		return
	}

	ctx.JSON(http.StatusCreated, e)
}

func (h *ExpensesHandler) ListExpenses(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	expenses, err := h.repo.List(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list expenses")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": expenses,
		"count": len(expenses),
	})
}

func (h *ExpensesHandler) DeleteExpense(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, userID, id)

	if err != nil {
		if errors.Is(err, expense.ErrNotFound) {
			RespondNotFound(ctx, "Expense not found")
			return
		}
		RespondInternal(ctx, "Could not delete expense")
		return
	}

	ctx.Status(http.StatusNoContent)
}
