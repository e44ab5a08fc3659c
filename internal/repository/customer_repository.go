package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/mailtrack-backend/internal/errors"
	"github.com/unclebandit/mailtrack-backend/internal/model"
)

// CustomerRepositoryInterface defines methods used by service
type CustomerRepositoryInterface interface {
	Create(ctx context.Context, c *model.Customer) error
	Update(ctx context.Context, c *model.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	GetByPhone(ctx context.Context, phone string) (*model.Customer, error)
	List(ctx context.Context, offset, limit int, search string) ([]model.CustomerWithPending, int, error)
	Search(ctx context.Context, query string, limit int) ([]model.Customer, error)
	ListWithPending(ctx context.Context) ([]model.CustomerWithPending, error)
	DeleteWithMails(ctx context.Context, id uuid.UUID) ([]string, error)
}

// CustomerRepository is the concrete implementation
type CustomerRepository struct {
	DB *sql.DB
}

const customerColumns = `id, customer_id, full_name, phone, email, notes, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner, c *model.Customer, extra ...any) error {
	dest := append([]any{&c.ID, &c.CustomerID, &c.FullName, &c.Phone, &c.Email, &c.Notes, &c.CreatedAt}, extra...)
	return row.Scan(dest...)
}

// Create inserts c. ID is assigned when zero; customer_id and created_at
// come back from the database.
func (r *CustomerRepository) Create(ctx context.Context, c *model.Customer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	query := `
        INSERT INTO customers (id, full_name, phone, email, notes)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING customer_id, created_at
    `
	err := r.DB.QueryRowContext(ctx, query, c.ID, c.FullName, c.Phone, nullIfEmpty(c.Email), nullIfEmpty(c.Notes)).
		Scan(&c.CustomerID, &c.CreatedAt)
	if isUniqueViolation(err, "customers_phone_key") {
		return appErrors.ErrDuplicatePhone
	}
	return err
}

func (r *CustomerRepository) Update(ctx context.Context, c *model.Customer) error {
	query := `
        UPDATE customers
        SET full_name=$1, phone=$2, email=$3, notes=$4
        WHERE id=$5
        RETURNING customer_id, created_at
    `
	err := r.DB.QueryRowContext(ctx, query, c.FullName, c.Phone, nullIfEmpty(c.Email), nullIfEmpty(c.Notes), c.ID).
		Scan(&c.CustomerID, &c.CreatedAt)
	switch {
	case err == sql.ErrNoRows:
		return appErrors.NewNotFound("customer", c.ID.String())
	case isUniqueViolation(err, "customers_phone_key"):
		return appErrors.ErrDuplicatePhone
	}
	return err
}

// GetByID fetches a customer by ID
func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	var c model.Customer
	if err := scanCustomer(r.DB.QueryRowContext(ctx, query, id), &c); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewNotFound("customer", id.String())
		}
		return nil, err
	}
	return &c, nil
}

// GetByPhone returns nil, nil when no customer has that phone.
func (r *CustomerRepository) GetByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE phone = $1`

	var c model.Customer
	if err := scanCustomer(r.DB.QueryRowContext(ctx, query, phone), &c); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// List returns one page of customers, newest first, each with its pending
// mail count, plus the total number of matching customers.
func (r *CustomerRepository) List(ctx context.Context, offset, limit int, search string) ([]model.CustomerWithPending, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argPos := 1

	if search != "" {
		where += fmt.Sprintf(" AND (c.full_name ILIKE $%d OR c.phone LIKE $%d OR c.customer_id ILIKE $%d)", argPos, argPos, argPos)
		args = append(args, containsPattern(search))
		argPos++
	}

	query := `
        SELECT c.id, c.customer_id, c.full_name, c.phone, c.email, c.notes, c.created_at,
               COUNT(m.id) AS pending_count
        FROM customers c
        LEFT JOIN mails m ON m.customer_id = c.id AND m.status = '` + model.MailStatusPending + `'` +
		where + `
        GROUP BY c.id
        ORDER BY c.created_at DESC` +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", argPos, argPos+1)
	pageArgs := append(append([]any{}, args...), limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	customers := []model.CustomerWithPending{}
	for rows.Next() {
		var c model.CustomerWithPending
		if err := scanCustomer(rows, &c.Customer, &c.PendingCount); err != nil {
			return nil, 0, err
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// Count total
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers c`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// Search is the picker lookup used when registering mail.
func (r *CustomerRepository) Search(ctx context.Context, query string, limit int) ([]model.Customer, error) {
	q := `
        SELECT ` + customerColumns + `
        FROM customers
        WHERE full_name ILIKE $1 OR phone ILIKE $1 OR customer_id ILIKE $1
        ORDER BY full_name
        LIMIT $2
    `
	rows, err := r.DB.QueryContext(ctx, q, containsPattern(query), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []model.Customer{}
	for rows.Next() {
		var c model.Customer
		if err := scanCustomer(rows, &c); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// ListWithPending returns only customers that have mail waiting, most
// pending first.
func (r *CustomerRepository) ListWithPending(ctx context.Context) ([]model.CustomerWithPending, error) {
	query := `
        SELECT c.id, c.customer_id, c.full_name, c.phone, c.email, c.notes, c.created_at,
               COUNT(m.id) AS pending_count
        FROM customers c
        JOIN mails m ON m.customer_id = c.id
        WHERE m.status = $1
        GROUP BY c.id
        ORDER BY pending_count DESC, c.full_name
    `
	rows, err := r.DB.QueryContext(ctx, query, model.MailStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []model.CustomerWithPending{}
	for rows.Next() {
		var c model.CustomerWithPending
		if err := scanCustomer(rows, &c.Customer, &c.PendingCount); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// DeleteWithMails removes the customer's mails and then the customer in one
// transaction. It returns the photo URLs of the removed mails.
func (r *CustomerRepository) DeleteWithMails(ctx context.Context, id uuid.UUID) ([]string, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `DELETE FROM mails WHERE customer_id = $1 RETURNING photos`, id)
	if err != nil {
		return nil, err
	}
	photos := []string{}
	for rows.Next() {
		var p []string
		if err := rows.Scan(pqStringArray(&p)); err != nil {
			rows.Close()
			return nil, err
		}
		photos = append(photos, p...)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, appErrors.NewNotFound("customer", id.String())
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return photos, nil
}

var _ CustomerRepositoryInterface = (*CustomerRepository)(nil)
