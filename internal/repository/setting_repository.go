package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/mailtrack-backend/internal/errors"
	"github.com/unclebandit/mailtrack-backend/internal/model"
)

type SettingRepositoryInterface interface {
	List(ctx context.Context) ([]model.Setting, error)
	Get(ctx context.Context, key string) (*model.Setting, error)
	UpdateValue(ctx context.Context, key, value string) error
	Ensure(ctx context.Context, s *model.Setting) error
}

type SettingRepository struct {
	DB *sql.DB
}

func (r *SettingRepository) List(ctx context.Context) ([]model.Setting, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, key, value, description FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := []model.Setting{}
	for rows.Next() {
		var s model.Setting
		if err := rows.Scan(&s.ID, &s.Key, &s.Value, &s.Description); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

func (r *SettingRepository) Get(ctx context.Context, key string) (*model.Setting, error) {
	var s model.Setting
	err := r.DB.QueryRowContext(ctx, `SELECT id, key, value, description FROM settings WHERE key = $1`, key).
		Scan(&s.ID, &s.Key, &s.Value, &s.Description)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewNotFound("setting", key)
		}
		return nil, err
	}
	return &s, nil
}

// UpdateValue only changes existing keys.
func (r *SettingRepository) UpdateValue(ctx context.Context, key, value string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE settings SET value = $1 WHERE key = $2`, value, key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.NewNotFound("setting", key)
	}
	return nil
}

// Ensure inserts the setting when its key is missing; existing values are kept.
func (r *SettingRepository) Ensure(ctx context.Context, s *model.Setting) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	query := `
        INSERT INTO settings (id, key, value, description)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (key) DO NOTHING
    `
	_, err := r.DB.ExecContext(ctx, query, s.ID, s.Key, s.Value, s.Description)
	return err
}

var _ SettingRepositoryInterface = (*SettingRepository)(nil)
