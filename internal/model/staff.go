// internal/model/staff.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type Staff struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Session struct {
	TokenHash string    `db:"token_hash" json:"-"`
	StaffID   uuid.UUID `db:"staff_id" json:"staff_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
}
