// internal/model/event.go
package model

import (
	"time"

	"github.com/google/uuid"
)

const TopicMailRegistered = "mail_registered"

// MailRegisteredEvent is published once a new mail row has been stored.
type MailRegisteredEvent struct {
	MailID       uuid.UUID `json:"mail_id"`
	CustomerID   uuid.UUID `json:"customer_id"`
	CustomerCode string    `json:"customer_code"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	Sender       string    `json:"sender"`
	PhotoCount   int       `json:"photo_count"`
	CreatedAt    time.Time `json:"created_at"`
}
