package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/finsight/gateway/internal/domain/goal"
	"github.com/finsight/gateway/internal/domain/transaction"
	"github.com/finsight/gateway/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeTxStore struct {
	created []transaction.CreateTransactionRequest
	listed  transaction.ListFilter
}

func (f *fakeTxStore) Create(ctx context.Context, userID string, req transaction.CreateTransactionRequest) (transaction.Transaction, error) {
	f.created = append(f.created, req)

	return transaction.Transaction{
		ID:              uuid.NewString(),
		UserID:          userID,
		GoalID:          req.GoalID,
		StockSymbol:     req.StockSymbol,
		TransactionType: req.TransactionType,
		Quantity:        req.Quantity,
		Price:           req.Price,
		TotalValue:      float64(req.Quantity) * req.Price,
	}, nil
}

func (f *fakeTxStore) GetByID(ctx context.Context, userID, id string) (transaction.Transaction, error) {
	return transaction.Transaction{}, transaction.ErrNotFound
}

func (f *fakeTxStore) List(ctx context.Context, userID string, filter transaction.ListFilter) ([]transaction.Transaction, error) {
	f.listed = filter
	return nil, nil
}

func (f *fakeTxStore) Delete(ctx context.Context, userID, id string) error {
	return transaction.ErrNotFound
}

type fakeGoalChecker struct {
	known map[string]bool
}

func (f *fakeGoalChecker) GetByID(ctx context.Context, userID, id string) (goal.Goal, error) {
	if !f.known[id] {
		return goal.Goal{}, goal.ErrNotFound
	}
	return goal.Goal{ID: id, UserID: userID}, nil
}

func newTxRouter(store *fakeTxStore, goals *fakeGoalChecker) *gin.Engine {
	h := NewTransactionsHandler(store, goals)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middlewares.CtxUserID, "u1")
	})

	r.POST("/transactions", h.CreateTransaction)
	r.GET("/transactions", h.ListTransactions)

	return r
}

func TestCreateTransaction(t *testing.T) {
	goalID := uuid.NewString()
	store := &fakeTxStore{}
	goals := &fakeGoalChecker{known: map[string]bool{goalID: true}}
	r := newTxRouter(store, goals)

	w := postJSON(r, "/transactions", `{
		"goal_id": "`+goalID+`",
		"stock_symbol": "VTI",
		"transaction_type": "buy",
		"quantity": 10,
		"price": 250.5,
		"transaction_date": "2025-05-01"
	}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d transactions, want 1", len(store.created))
	}
}

func TestCreateTransactionUnknownGoal(t *testing.T) {
	store := &fakeTxStore{}
	goals := &fakeGoalChecker{known: map[string]bool{}}
	r := newTxRouter(store, goals)

	w := postJSON(r, "/transactions", `{
		"goal_id": "`+uuid.NewString()+`",
		"stock_symbol": "VTI",
		"transaction_type": "buy",
		"quantity": 10,
		"price": 250.5,
		"transaction_date": "2025-05-01"
	}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	assertErrorCode(t, w, "unknown_goal")

	if len(store.created) != 0 {
		t.Error("transaction stored despite unknown goal")
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	goalID := uuid.NewString()

	tests := []struct {
		name string
		body string
	}{
		{"bad type", `{"goal_id":"` + goalID + `","stock_symbol":"VTI","transaction_type":"hold","quantity":1,"price":1,"transaction_date":"2025-05-01"}`},
		{"zero quantity", `{"goal_id":"` + goalID + `","stock_symbol":"VTI","transaction_type":"buy","quantity":0,"price":1,"transaction_date":"2025-05-01"}`},
		{"non-uuid goal", `{"goal_id":"g1","stock_symbol":"VTI","transaction_type":"buy","quantity":1,"price":1,"transaction_date":"2025-05-01"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeTxStore{}
			r := newTxRouter(store, &fakeGoalChecker{known: map[string]bool{goalID: true}})

			w := postJSON(r, "/transactions", tc.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body=%s", w.Code, w.Body.String())
			}
		})
	}
}

func TestListTransactionsFilter(t *testing.T) {
	store := &fakeTxStore{}
	r := newTxRouter(store, &fakeGoalChecker{known: map[string]bool{}})

	t.Run("parses dates", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/transactions?goal_id=abc&from=2025-01-01&to=2025-06-30", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
		}

		if store.listed.GoalID == nil || *store.listed.GoalID != "abc" {
			t.Errorf("goal filter = %v", store.listed.GoalID)
		}
		if store.listed.From == nil || !store.listed.From.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("from filter = %v", store.listed.From)
		}
		if store.listed.To == nil {
			t.Error("to filter missing")
		}
	})

	t.Run("rejects bad date", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/transactions?from=yesterday", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}
