package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/finsight/gateway/internal/cache"
	"github.com/finsight/gateway/internal/clients/analysis"
	"github.com/finsight/gateway/internal/config"
	"github.com/finsight/gateway/internal/domain/goal"
	"github.com/finsight/gateway/internal/http/middlewares"
	"github.com/finsight/gateway/internal/observability"
	"github.com/gin-gonic/gin"
)

type AnalysisClient interface {
	AnalyseExpenses(ctx context.Context, payload any) (json.RawMessage, error)
	AssessGoal(ctx context.Context, payload any) (json.RawMessage, error)
}

// AnalysisHandler backs the dashboard calls that need the Python
// services: expense behaviour analysis and goal feasibility. Results are
// cached briefly per user so dashboard refreshes do not refire the
// models.
type AnalysisHandler struct {
	expenses ExpensesStore
	goals    GoalsStore
	client   AnalysisClient
	results  *cache.Cache
	prom     *observability.Prom
}

func NewAnalysisHandler(expenses ExpensesStore, goals GoalsStore, client AnalysisClient, results *cache.Cache, prom *observability.Prom) *AnalysisHandler {
	return &AnalysisHandler{
		expenses: expenses,
		goals:    goals,
		client:   client,
		results:  results,
		prom:     prom,
	}
}

type expensePayloadItem struct {
	Timestamp string  `json:"timestamp"`
	Category  string  `json:"category"`
	Amount    float64 `json:"amount"`
}

func (h *AnalysisHandler) AnalyseExpenses(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	cacheKey := "expenses:" + userID

	if raw, ok := h.results.Get(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", raw)
		return
	}

	cctx, cancel := config.WithTimeout(20 * time.Second)
	defer cancel()

	stored, err := h.expenses.List(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not load expenses")
		return
	}

	items := make([]expensePayloadItem, 0, len(stored))

	for _, e := range stored {
		items = append(items, expensePayloadItem{
			Timestamp: e.OccurredAt.Format("2006-01-02"),
			Category:  e.Category,
			Amount:    e.Amount,
		})
	}

	raw, err := h.client.AnalyseExpenses(cctx, gin.H{"expenses": items})

	if err != nil {
		h.respondUpstreamError(ctx, "analyse-expenses", err)
		return
	}

	h.countUpstream("analyse-expenses", "ok")
	h.results.Set(cacheKey, raw)

	ctx.Data(http.StatusOK, "application/json", raw)
}

func (h *AnalysisHandler) AssessGoalFeasibility(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(20 * time.Second)
	defer cancel()

	g, err := h.goals.GetByID(cctx, userID, id)

	if err != nil {
		if errors.Is(err, goal.ErrNotFound) {
			RespondNotFound(ctx, "Goal not found")
			return
		}
		RespondInternal(ctx, "Could not load goal")
		return
	}

	cacheKey := "feasibility:" + userID + ":" + g.ID

	if raw, ok := h.results.Get(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", raw)
		return
	}

	months := monthsUntil(g.Deadline, time.Now().UTC())

	raw, err := h.client.AssessGoal(cctx, gin.H{
		"goal_amount":     g.TargetValue,
		"timeline_months": months,
		"initial_amount":  g.InitialInvestment,
		"risk_preference": g.RiskPreference,
	})

	if err != nil {
		h.respondUpstreamError(ctx, "assess-goal", err)
		return
	}

	h.countUpstream("assess-goal", "ok")
	h.results.Set(cacheKey, raw)

	ctx.Data(http.StatusOK, "application/json", raw)
}

func (h *AnalysisHandler) respondUpstreamError(ctx *gin.Context, target string, err error) {
	var upErr *analysis.UpstreamError

	if errors.As(err, &upErr) {
		h.countUpstream(target, "error")
		RespondError(ctx, http.StatusBadGateway, "analysis_unavailable", "The analysis service rejected the request.", nil)
		return
	}

	h.countUpstream(target, "unreachable")
	RespondError(ctx, http.StatusBadGateway, "analysis_unavailable", "The analysis service could not be reached.", nil)
}

func (h *AnalysisHandler) countUpstream(target, result string) {
	if h.prom != nil {
		h.prom.UpstreamResults.WithLabelValues(target, result).Inc()
	}
}

func monthsUntil(deadline, now time.Time) int {
	months := int(deadline.Sub(now).Hours() / (24 * 30))

	if months < 1 {
		months = 1
	}

	return months
}
