package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/finsight/gateway/internal/domain/transaction"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TransactionsRepo struct {
	pool *pgxpool.Pool
}

func NewTransactionsRepo(pool *pgxpool.Pool) *TransactionsRepo {
	return &TransactionsRepo{pool: pool}
}

const txnColumns = `id, user_id, goal_id, stock_symbol, stock_name, transaction_type,
	quantity, price, total_value, transaction_date, notes, created_at`

func scanTxn(row pgx.Row) (transaction.Transaction, error) {
	var t transaction.Transaction

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.GoalID,
		&t.StockSymbol,
		&t.StockName,
		&t.TransactionType,
		&t.Quantity,
		&t.Price,
		&t.TotalValue,
		&t.TransactionDate,
		&t.Notes,
		&t.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return transaction.Transaction{}, transaction.ErrNotFound
		}

		return transaction.Transaction{}, err
	}
	return t, nil
}

func (r *TransactionsRepo) Create(ctx context.Context, userID string, req transaction.CreateTransactionRequest) (transaction.Transaction, error) {
	date, err := time.Parse("2006-01-02", req.TransactionDate)

	if err != nil {
		return transaction.Transaction{}, err
	}

	txnType := strings.ToLower(req.TransactionType)
	total := float64(req.Quantity) * req.Price

	return scanTxn(r.pool.QueryRow(
		ctx,
		`INSERT INTO transactions (id, user_id, goal_id, stock_symbol, stock_name,
			transaction_type, quantity, price, total_value, transaction_date, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+txnColumns,
		uuid.NewString(), userID, req.GoalID, strings.ToUpper(req.StockSymbol),
		req.StockName, txnType, req.Quantity, req.Price, total, date, req.Notes,
	))
}

func (r *TransactionsRepo) GetByID(ctx context.Context, userID, id string) (transaction.Transaction, error) {
	return scanTxn(r.pool.QueryRow(
		ctx,
		`SELECT `+txnColumns+` FROM transactions WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
}

func (r *TransactionsRepo) List(ctx context.Context, userID string, filter transaction.ListFilter) ([]transaction.Transaction, error) {
	query := `SELECT ` + txnColumns + ` FROM transactions WHERE user_id = $1`
	args := []any{userID}

	if filter.GoalID != nil {
		args = append(args, *filter.GoalID)
		query += ` AND goal_id = $` + strconv.Itoa(len(args))
	}

	if filter.From != nil {
		args = append(args, *filter.From)
		query += ` AND transaction_date >= $` + strconv.Itoa(len(args))
	}

	if filter.To != nil {
		args = append(args, *filter.To)
		query += ` AND transaction_date <= $` + strconv.Itoa(len(args))
	}

	query += ` ORDER BY transaction_date DESC, created_at DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := make([]transaction.Transaction, 0)

	for rows.Next() {
		t, err := scanTxn(rows)

		if err != nil {
			return nil, err
		}

		txns = append(txns, t)
	}

	return txns, rows.Err()
}

func (r *TransactionsRepo) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(
		ctx,
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`,
		id, userID,
	)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return transaction.ErrNotFound
	}

	return nil
}
