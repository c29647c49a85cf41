package goal

import (
	"errors"
	"time"
)

type Goal struct {
	ID                string    `json:"id"`
	UserID            string    `json:"-"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	TargetAmount      float64   `json:"targetAmount"`
	ProfitBuffer      float64   `json:"profitBuffer"`
	TargetValue       float64   `json:"targetValue"`
	Deadline          time.Time `json:"deadline"`
	RiskPreference    string    `json:"riskPreference"`
	InitialInvestment float64   `json:"initialInvestment"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("goal not found")

type CreateGoalRequest struct {
	Name              string   `json:"name" binding:"required,min=2,max=100"`
	Description       string   `json:"description" binding:"omitempty,max=1000"`
	TargetAmount      float64  `json:"target_amount" binding:"required,gt=0"`
	ProfitBuffer      *float64 `json:"profit_buffer" binding:"omitempty,gte=0,lte=0.5"`
	Deadline          string   `json:"deadline" binding:"required,datetime=2006-01-02"`
	RiskPreference    string   `json:"risk_preference" binding:"omitempty,oneof=low moderate high"`
	InitialInvestment float64  `json:"initial_investment" binding:"omitempty,gte=0"`
}

// Partial update, nil means leave as-is.
type UpdateGoalRequest struct {
	Name           *string  `json:"name" binding:"omitempty,min=2,max=100"`
	Description    *string  `json:"description" binding:"omitempty,max=1000"`
	TargetAmount   *float64 `json:"target_amount" binding:"omitempty,gt=0"`
	ProfitBuffer   *float64 `json:"profit_buffer" binding:"omitempty,gte=0,lte=0.5"`
	Deadline       *string  `json:"deadline" binding:"omitempty,datetime=2006-01-02"`
	RiskPreference *string  `json:"risk_preference" binding:"omitempty,oneof=low moderate high"`
	Status         *string  `json:"status" binding:"omitempty,oneof=active completed abandoned"`
}

const DefaultProfitBuffer = 0.10

// TargetValue is the amount plus the configured safety margin.
func TargetValue(amount, buffer float64) float64 {
	return amount * (1 + buffer)
}
