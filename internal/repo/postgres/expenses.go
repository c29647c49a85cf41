package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/finsight/gateway/internal/domain/expense"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ExpensesRepo struct {
	pool *pgxpool.Pool
}

func NewExpensesRepo(pool *pgxpool.Pool) *ExpensesRepo {
	return &ExpensesRepo{pool: pool}
}

const expenseColumns = `id, user_id, category, amount, occurred_at, note, created_at`

func scanExpense(row pgx.Row) (expense.Expense, error) {
	var e expense.Expense

	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.Category,
		&e.Amount,
		&e.OccurredAt,
		&e.Note,
		&e.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return expense.Expense{}, expense.ErrNotFound
		}

		return expense.Expense{}, err
	}
	return e, nil
}

func (r *ExpensesRepo) Create(ctx context.Context, userID string, req expense.CreateExpenseRequest) (expense.Expense, error) {
	occurred, err := time.Parse("2006-01-02", req.OccurredAt)

	if err != nil {
		return expense.Expense{}, err
	}

	return scanExpense(r.pool.QueryRow(
		ctx,
		`INSERT INTO expenses (id, user_id, category, amount, occurred_at, note)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+expenseColumns,
		uuid.NewString(), userID, req.Category, req.Amount, occurred, req.Note,
	))
}

func (r *ExpensesRepo) List(ctx context.Context, userID string) ([]expense.Expense, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = $1 ORDER BY occurred_at DESC`,
		userID,
	)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]expense.Expense, 0)

	for rows.Next() {
		e, err := scanExpense(rows)

		if err != nil {
			return nil, err
		}

		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}

func (r *ExpensesRepo) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(
		ctx,
		`DELETE FROM expenses WHERE id = $1 AND user_id = $2`,
		id, userID,
	)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return expense.ErrNotFound
	}

	return nil
}
