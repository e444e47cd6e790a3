package models

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	Token  string    `db:"token" json:"-"`
	UserID uuid.UUID `db:"user_id" json:"user_id"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
