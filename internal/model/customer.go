// internal/model/customer.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID         uuid.UUID `db:"id" json:"id"`
	CustomerID string    `db:"customer_id" json:"customer_id"`
	FullName   string    `db:"full_name" json:"full_name"`
	Phone      string    `db:"phone" json:"phone"`
	Email      *string   `db:"email" json:"email"`
	Notes      *string   `db:"notes" json:"notes"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// CustomerWithPending is a customer row annotated with its count of mail
// still waiting for pickup.
type CustomerWithPending struct {
	Customer
	PendingCount int `db:"pending_count" json:"pending_count"`
}

// CustomerSummary is the subset of a customer exposed on public and
// joined views.
type CustomerSummary struct {
	ID         uuid.UUID `json:"id"`
	CustomerID string    `json:"customer_id"`
	FullName   string    `json:"full_name"`
	Phone      string    `json:"phone"`
}

func (c *Customer) Summary() CustomerSummary {
	return CustomerSummary{
		ID:         c.ID,
		CustomerID: c.CustomerID,
		FullName:   c.FullName,
		Phone:      c.Phone,
	}
}
