package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/finsight/gateway/internal/domain/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrEmailAlreadyUsed = errors.New("email already in use")

type UsersRepo struct {
	pool *pgxpool.Pool
}

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{pool: pool}
}

const userColumns = `id, email, password_hash, full_name, dob, country, occupation,
	annual_income_range, risk_tolerance, consent_given, survey_completed,
	email_notifications, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FullName,
		&u.DOB,
		&u.Country,
		&u.Occupation,
		&u.AnnualIncomeRange,
		&u.RiskTolerance,
		&u.ConsentGiven,
		&u.SurveyCompleted,
		&u.EmailNotifications,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash, fullName string, consent bool) (user.User, error) {
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO users (id, email, password_hash, full_name, consent_given)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		uuid.NewString(), email, passwordHash, fullName, consent,
	)

	u, err := scanUser(row)

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.User{}, ErrEmailAlreadyUsed
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return scanUser(r.pool.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	))
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return scanUser(r.pool.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
}

// UpdateSensitiveProfile persists every gated field in one statement, so
// the write is atomic. The caller has already passed the gate check.
func (r *UsersRepo) UpdateSensitiveProfile(ctx context.Context, id string, p user.SensitiveProfile) (user.User, error) {
	dob, err := time.Parse("2006-01-02", p.DOB)

	if err != nil {
		return user.User{}, err
	}

	row := r.pool.QueryRow(
		ctx,
		`UPDATE users
		 SET email = $2, dob = $3, country = $4, occupation = $5,
		     annual_income_range = $6, updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, p.Email, dob, p.Country, p.Occupation, p.AnnualIncomeRange,
	)

	u, err := scanUser(row)

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.User{}, ErrEmailAlreadyUsed
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) UpdatePreferences(ctx context.Context, id string, emailNotifications bool) error {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE users SET email_notifications = $2, updated_at = now() WHERE id = $1`,
		id, emailNotifications,
	)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}

func (r *UsersRepo) CompleteSurvey(ctx context.Context, id, riskTolerance string) error {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE users
		 SET risk_tolerance = $2, survey_completed = TRUE, updated_at = now()
		 WHERE id = $1`,
		id, riskTolerance,
	)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}
