package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates required tables if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			full_name TEXT NOT NULL,
			dob DATE NULL,
			country TEXT NOT NULL DEFAULT '',
			occupation TEXT NOT NULL DEFAULT '',
			annual_income_range TEXT NOT NULL DEFAULT '',
			risk_tolerance TEXT NOT NULL DEFAULT '',
			consent_given BOOLEAN NOT NULL DEFAULT FALSE,
			survey_completed BOOLEAN NOT NULL DEFAULT FALSE,
			email_notifications BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS goals (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			target_amount NUMERIC NOT NULL,
			profit_buffer NUMERIC NOT NULL DEFAULT 0.10,
			target_value NUMERIC NOT NULL,
			deadline DATE NOT NULL,
			risk_preference TEXT NOT NULL DEFAULT 'moderate',
			initial_investment NUMERIC NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS goals_user_id_idx ON goals(user_id)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			goal_id UUID NOT NULL REFERENCES goals(id) ON DELETE CASCADE,
			stock_symbol TEXT NOT NULL,
			stock_name TEXT NOT NULL DEFAULT '',
			transaction_type TEXT NOT NULL,
			quantity INT NOT NULL,
			price NUMERIC NOT NULL,
			total_value NUMERIC NOT NULL,
			transaction_date DATE NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS transactions_user_id_idx ON transactions(user_id, transaction_date DESC)`,
		`CREATE TABLE IF NOT EXISTS expenses (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			category TEXT NOT NULL,
			amount NUMERIC NOT NULL,
			occurred_at DATE NOT NULL,
			note TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS expenses_user_id_idx ON expenses(user_id, occurred_at DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
