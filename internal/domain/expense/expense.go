package expense

import (
	"errors"
	"time"
)

type Expense struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	Category   string    `json:"category"`
	Amount     float64   `json:"amount"`
	OccurredAt time.Time `json:"occurredAt"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

var ErrNotFound = errors.New("expense not found")

type CreateExpenseRequest struct {
	Category   string  `json:"category" binding:"required,min=2,max=60"`
	Amount     float64 `json:"amount" binding:"required,gt=0"`
	OccurredAt string  `json:"occurred_at" binding:"required,datetime=2006-01-02"`
	Note       string  `json:"note" binding:"omitempty,max=300"`
}
