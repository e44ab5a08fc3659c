// internal/model/mail.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Mail status labels as stored in the database.
const (
	MailStatusPending  = "待取"
	MailStatusPickedUp = "已取"
)

// Pickup methods offered by the staff UI. Any non-empty text is accepted.
const (
	PickupInPerson = "上門"
	PickupCourier  = "速遞"
)

const PhotoBucket = "mail-photos"

type Mail struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	CustomerID   uuid.UUID  `db:"customer_id" json:"customer_id"`
	Sender       string     `db:"sender" json:"sender"`
	Photos       []string   `db:"photos" json:"photos"`
	Status       string     `db:"status" json:"status"`
	PickupTime   *time.Time `db:"pickup_time" json:"pickup_time"`
	PickupMethod *string    `db:"pickup_method" json:"pickup_method"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

func (m *Mail) IsPending() bool { return m.Status == MailStatusPending }

type MailWithCustomer struct {
	Mail
	Customer *CustomerSummary `json:"customer,omitempty"`
}

func ValidMailStatus(s string) bool {
	return s == MailStatusPending || s == MailStatusPickedUp
}

// MailStats holds the dashboard counters.
type MailStats struct {
	TodayNew      int `json:"today_new"`
	MonthPickedUp int `json:"month_picked_up"`
	TotalPending  int `json:"total_pending"`
}
