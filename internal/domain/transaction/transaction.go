package transaction

import (
	"errors"
	"time"
)

type Transaction struct {
	ID              string    `json:"id"`
	UserID          string    `json:"-"`
	GoalID          string    `json:"goalId"`
	StockSymbol     string    `json:"stockSymbol"`
	StockName       string    `json:"stockName,omitempty"`
	TransactionType string    `json:"transactionType"`
	Quantity        int       `json:"quantity"`
	Price           float64   `json:"price"`
	TotalValue      float64   `json:"totalValue"`
	TransactionDate time.Time `json:"transactionDate"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

var ErrNotFound = errors.New("transaction not found")

type CreateTransactionRequest struct {
	GoalID          string  `json:"goal_id" binding:"required,uuid"`
	StockSymbol     string  `json:"stock_symbol" binding:"required,min=1,max=20"`
	StockName       string  `json:"stock_name" binding:"omitempty,max=120"`
	TransactionType string  `json:"transaction_type" binding:"required,oneof=buy sell BUY SELL"`
	Quantity        int     `json:"quantity" binding:"required,gt=0"`
	Price           float64 `json:"price" binding:"required,gt=0"`
	TransactionDate string  `json:"transaction_date" binding:"required,datetime=2006-01-02"`
	Notes           string  `json:"notes" binding:"omitempty,max=500"`
}

// Optional listing filters, nil means no constraint.
type ListFilter struct {
	GoalID *string
	From   *time.Time
	To     *time.Time
	Limit  int
}
