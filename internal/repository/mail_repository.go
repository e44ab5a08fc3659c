package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	appErrors "github.com/unclebandit/mailtrack-backend/internal/errors"
	"github.com/unclebandit/mailtrack-backend/internal/model"
)

type MailRepositoryInterface interface {
	Create(ctx context.Context, m *model.Mail) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Mail, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Mail, error)
	List(ctx context.Context, offset, limit int, search, status string) ([]model.MailWithCustomer, int, error)
	MarkPickedUp(ctx context.Context, id uuid.UUID, at time.Time, method string) error
	MarkAllPickedUp(ctx context.Context, customerID uuid.UUID, at time.Time, method string) (int, error)
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)
	Stats(ctx context.Context, dayStart, dayEnd, monthStart, monthEnd time.Time) (*model.MailStats, error)
}

type MailRepository struct {
	DB *sql.DB
}

const mailColumns = `id, customer_id, sender, photos, status, pickup_time, pickup_method, created_at`

func scanMail(row rowScanner, m *model.Mail, extra ...any) error {
	dest := append([]any{
		&m.ID, &m.CustomerID, &m.Sender, pqStringArray(&m.Photos),
		&m.Status, &m.PickupTime, &m.PickupMethod, &m.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return err
	}
	if m.Photos == nil {
		m.Photos = []string{}
	}
	return nil
}

// Create stores a new pending mail. An empty photo list is stored as NULL.
func (r *MailRepository) Create(ctx context.Context, m *model.Mail) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.Status = model.MailStatusPending

	var photos any
	if len(m.Photos) > 0 {
		photos = pq.Array(m.Photos)
	}
	query := `
        INSERT INTO mails (id, customer_id, sender, photos, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at
    `
	err := r.DB.QueryRowContext(ctx, query, m.ID, m.CustomerID, m.Sender, photos, m.Status).Scan(&m.CreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == PgErrForeignKeyViolation {
		return appErrors.NewNotFound("customer", m.CustomerID.String())
	}
	if m.Photos == nil {
		m.Photos = []string{}
	}
	return err
}

func (r *MailRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Mail, error) {
	query := `SELECT ` + mailColumns + ` FROM mails WHERE id = $1`

	var m model.Mail
	if err := scanMail(r.DB.QueryRowContext(ctx, query, id), &m); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewNotFound("mail", id.String())
		}
		return nil, err
	}
	return &m, nil
}

// ListByCustomer returns all of a customer's mail, newest first.
func (r *MailRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Mail, error) {
	query := `SELECT ` + mailColumns + ` FROM mails WHERE customer_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mails := []model.Mail{}
	for rows.Next() {
		var m model.Mail
		if err := scanMail(rows, &m); err != nil {
			return nil, err
		}
		mails = append(mails, m)
	}
	return mails, rows.Err()
}

// List returns one page of mail joined with its customer, newest first.
func (r *MailRepository) List(ctx context.Context, offset, limit int, search, status string) ([]model.MailWithCustomer, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argPos := 1

	if search != "" {
		where += fmt.Sprintf(" AND (m.sender ILIKE $%d OR c.full_name ILIKE $%d OR c.phone LIKE $%d)", argPos, argPos, argPos)
		args = append(args, containsPattern(search))
		argPos++
	}
	if status != "" {
		where += fmt.Sprintf(" AND m.status = $%d", argPos)
		args = append(args, status)
		argPos++
	}

	query := `
        SELECT m.id, m.customer_id, m.sender, m.photos, m.status, m.pickup_time, m.pickup_method, m.created_at,
               c.id, c.customer_id, c.full_name, c.phone
        FROM mails m
        LEFT JOIN customers c ON c.id = m.customer_id` +
		where + `
        ORDER BY m.created_at DESC` +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", argPos, argPos+1)
	pageArgs := append(append([]any{}, args...), limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	mails := []model.MailWithCustomer{}
	for rows.Next() {
		var (
			m                    model.MailWithCustomer
			cID                  uuid.NullUUID
			cCode, cName, cPhone sql.NullString
		)
		if err := scanMail(rows, &m.Mail, &cID, &cCode, &cName, &cPhone); err != nil {
			return nil, 0, err
		}
		if cID.Valid {
			m.Customer = &model.CustomerSummary{
				ID:         cID.UUID,
				CustomerID: cCode.String,
				FullName:   cName.String,
				Phone:      cPhone.String,
			}
		}
		mails = append(mails, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQuery := `SELECT COUNT(*) FROM mails m LEFT JOIN customers c ON c.id = m.customer_id` + where
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return mails, total, nil
}

// MarkPickedUp moves a single pending mail to picked up. A mail that is
// already picked up is left untouched and reported as a conflict.
func (r *MailRepository) MarkPickedUp(ctx context.Context, id uuid.UUID, at time.Time, method string) error {
	query := `
        UPDATE mails
        SET status=$1, pickup_time=$2, pickup_method=$3
        WHERE id=$4 AND status=$5
    `
	res, err := r.DB.ExecContext(ctx, query, model.MailStatusPickedUp, at, method, id, model.MailStatusPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM mails WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return appErrors.NewNotFound("mail", id.String())
	}
	return appErrors.ErrAlreadyPickedUp
}

// MarkAllPickedUp picks up every pending mail of a customer and returns how
// many rows changed.
func (r *MailRepository) MarkAllPickedUp(ctx context.Context, customerID uuid.UUID, at time.Time, method string) (int, error) {
	query := `
        UPDATE mails
        SET status=$1, pickup_time=$2, pickup_method=$3
        WHERE customer_id=$4 AND status=$5
    `
	res, err := r.DB.ExecContext(ctx, query, model.MailStatusPickedUp, at, method, customerID, model.MailStatusPending)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Delete removes the mail and returns its photo URLs.
func (r *MailRepository) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	var photos []string
	err := r.DB.QueryRowContext(ctx, `DELETE FROM mails WHERE id = $1 RETURNING photos`, id).Scan(pqStringArray(&photos))
	if err == sql.ErrNoRows {
		return nil, appErrors.NewNotFound("mail", id.String())
	}
	if err != nil {
		return nil, err
	}
	return photos, nil
}

// Stats computes the dashboard counters in one pass. Ranges are half-open.
func (r *MailRepository) Stats(ctx context.Context, dayStart, dayEnd, monthStart, monthEnd time.Time) (*model.MailStats, error) {
	query := `
        SELECT
            COUNT(*) FILTER (WHERE created_at >= $1 AND created_at < $2),
            COUNT(*) FILTER (WHERE status = $3 AND pickup_time >= $4 AND pickup_time < $5),
            COUNT(*) FILTER (WHERE status = $6)
        FROM mails
    `
	var s model.MailStats
	err := r.DB.QueryRowContext(ctx, query,
		dayStart, dayEnd,
		model.MailStatusPickedUp, monthStart, monthEnd,
		model.MailStatusPending,
	).Scan(&s.TodayNew, &s.MonthPickedUp, &s.TotalPending)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

var _ MailRepositoryInterface = (*MailRepository)(nil)
