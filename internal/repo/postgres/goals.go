package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/finsight/gateway/internal/domain/goal"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GoalsRepo struct {
	pool *pgxpool.Pool
}

func NewGoalsRepo(pool *pgxpool.Pool) *GoalsRepo {
	return &GoalsRepo{pool: pool}
}

const goalColumns = `id, user_id, name, description, target_amount, profit_buffer,
	target_value, deadline, risk_preference, initial_investment, status,
	created_at, updated_at`

func scanGoal(row pgx.Row) (goal.Goal, error) {
	var g goal.Goal

	err := row.Scan(
		&g.ID,
		&g.UserID,
		&g.Name,
		&g.Description,
		&g.TargetAmount,
		&g.ProfitBuffer,
		&g.TargetValue,
		&g.Deadline,
		&g.RiskPreference,
		&g.InitialInvestment,
		&g.Status,
		&g.CreatedAt,
		&g.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return goal.Goal{}, goal.ErrNotFound
		}

		return goal.Goal{}, err
	}
	return g, nil
}

func (r *GoalsRepo) Create(ctx context.Context, userID string, req goal.CreateGoalRequest) (goal.Goal, error) {
	deadline, err := time.Parse("2006-01-02", req.Deadline)

	if err != nil {
		return goal.Goal{}, err
	}

	buffer := goal.DefaultProfitBuffer

	if req.ProfitBuffer != nil {
		buffer = *req.ProfitBuffer
	}

	risk := req.RiskPreference

	if risk == "" {
		risk = "moderate"
	}

	return scanGoal(r.pool.QueryRow(
		ctx,
		`INSERT INTO goals (id, user_id, name, description, target_amount,
			profit_buffer, target_value, deadline, risk_preference, initial_investment)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+goalColumns,
		uuid.NewString(), userID, req.Name, req.Description, req.TargetAmount,
		buffer, goal.TargetValue(req.TargetAmount, buffer), deadline, risk,
		req.InitialInvestment,
	))
}

func (r *GoalsRepo) GetByID(ctx context.Context, userID, id string) (goal.Goal, error) {
	return scanGoal(r.pool.QueryRow(
		ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
}

func (r *GoalsRepo) List(ctx context.Context, userID string) ([]goal.Goal, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := make([]goal.Goal, 0)

	for rows.Next() {
		g, err := scanGoal(rows)

		if err != nil {
			return nil, err
		}

		goals = append(goals, g)
	}

	return goals, rows.Err()
}

func (r *GoalsRepo) Update(ctx context.Context, userID, id string, req goal.UpdateGoalRequest) (goal.Goal, error) {
	current, err := r.GetByID(ctx, userID, id)

	if err != nil {
		return goal.Goal{}, err
	}

	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Description != nil {
		current.Description = *req.Description
	}
	if req.TargetAmount != nil {
		current.TargetAmount = *req.TargetAmount
	}
	if req.ProfitBuffer != nil {
		current.ProfitBuffer = *req.ProfitBuffer
	}
	if req.Deadline != nil {
		deadline, err := time.Parse("2006-01-02", *req.Deadline)

		if err != nil {
			return goal.Goal{}, err
		}

		current.Deadline = deadline
	}
	if req.RiskPreference != nil {
		current.RiskPreference = *req.RiskPreference
	}
	if req.Status != nil {
		current.Status = *req.Status
	}

	current.TargetValue = goal.TargetValue(current.TargetAmount, current.ProfitBuffer)

	return scanGoal(r.pool.QueryRow(
		ctx,
		`UPDATE goals
		 SET name = $3, description = $4, target_amount = $5, profit_buffer = $6,
		     target_value = $7, deadline = $8, risk_preference = $9, status = $10,
		     updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+goalColumns,
		id, userID, current.Name, current.Description, current.TargetAmount,
		current.ProfitBuffer, current.TargetValue, current.Deadline,
		current.RiskPreference, current.Status,
	))
}

func (r *GoalsRepo) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(
		ctx,
		`DELETE FROM goals WHERE id = $1 AND user_id = $2`,
		id, userID,
	)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return goal.ErrNotFound
	}

	return nil
}
