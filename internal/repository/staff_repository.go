package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/mailtrack-backend/internal/errors"
	"github.com/unclebandit/mailtrack-backend/internal/model"
)

type StaffRepositoryInterface interface {
	Create(ctx context.Context, s *model.Staff) error
	GetByEmail(ctx context.Context, email string) (*model.Staff, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Staff, error)
}

type SessionRepositoryInterface interface {
	Create(ctx context.Context, s *model.Session) error
	GetValid(ctx context.Context, tokenHash string, at time.Time) (*model.Session, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context, at time.Time) (int, error)
}

type StaffRepository struct {
	DB *sql.DB
}

func (r *StaffRepository) Create(ctx context.Context, s *model.Staff) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO staff (id, email, password_hash) VALUES ($1, $2, $3) RETURNING created_at`,
		s.ID, s.Email, s.PasswordHash,
	).Scan(&s.CreatedAt)
	if isUniqueViolation(err, "") {
		return appErrors.ErrEmailTaken
	}
	return err
}

// GetByEmail returns nil, nil for an unknown email.
func (r *StaffRepository) GetByEmail(ctx context.Context, email string) (*model.Staff, error) {
	var s model.Staff
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM staff WHERE email = $1`, email,
	).Scan(&s.ID, &s.Email, &s.PasswordHash, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StaffRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	var s model.Staff
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM staff WHERE id = $1`, id,
	).Scan(&s.ID, &s.Email, &s.PasswordHash, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, appErrors.NewNotFound("staff", id.String())
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

type SessionRepository struct {
	DB *sql.DB
}

func (r *SessionRepository) Create(ctx context.Context, s *model.Session) error {
	return r.DB.QueryRowContext(ctx,
		`INSERT INTO sessions (token_hash, staff_id, expires_at) VALUES ($1, $2, $3) RETURNING created_at`,
		s.TokenHash, s.StaffID, s.ExpiresAt,
	).Scan(&s.CreatedAt)
}

// GetValid returns the session if it exists and has not expired at the given time.
func (r *SessionRepository) GetValid(ctx context.Context, tokenHash string, at time.Time) (*model.Session, error) {
	var s model.Session
	err := r.DB.QueryRowContext(ctx,
		`SELECT token_hash, staff_id, created_at, expires_at FROM sessions WHERE token_hash = $1 AND expires_at > $2`,
		tokenHash, at,
	).Scan(&s.TokenHash, &s.StaffID, &s.CreatedAt, &s.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, appErrors.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) Delete(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	return err
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, at time.Time) (int, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, at)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

var (
	_ StaffRepositoryInterface   = (*StaffRepository)(nil)
	_ SessionRepositoryInterface = (*SessionRepository)(nil)
)
