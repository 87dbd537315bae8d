package profile

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"campus-food-ordering/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const profileColumns = `student_id, user_id::text, name, phone_number, email, password_hash, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	q := `
INSERT INTO profile (student_id, name, phone_number, email, password_hash)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + profileColumns
	return r.scanProfile(r.pool.QueryRow(
		ctx,
		q,
		strings.ToUpper(p.StudentID),
		p.Name,
		p.PhoneNumber,
		strings.ToLower(p.Email),
		p.PasswordHash,
	))
}

func (r *postgresRepo) GetByStudentID(ctx context.Context, studentID string) (*domain.Profile, error) {
	q := `SELECT ` + profileColumns + ` FROM profile WHERE student_id = upper($1) LIMIT 1`
	return r.scanProfile(r.pool.QueryRow(ctx, q, studentID))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	q := `SELECT ` + profileColumns + ` FROM profile WHERE lower(email) = lower($1) LIMIT 1`
	return r.scanProfile(r.pool.QueryRow(ctx, q, email))
}

func (r *postgresRepo) UpdatePassword(ctx context.Context, studentID, passwordHash string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE profile SET password_hash = $2 WHERE student_id = upper($1)`, studentID, passwordHash)
	if err != nil {
		r.logger.Printf("profile repo: update password student=%s error=%v", studentID, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(&p.StudentID, &p.UserID, &p.Name, &p.PhoneNumber, &p.Email, &p.PasswordHash, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("profile repo: scan error=%v", err)
		return nil, err
	}
	return &p, nil
}
