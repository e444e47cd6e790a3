package models

import (
	"time"

	"github.com/google/uuid"
)

// File is immutable once inserted: there is no update or delete path.
type File struct {
	ID      uuid.UUID `db:"id" json:"id"`
	OwnerID uuid.UUID `db:"owner_id" json:"owner_id"`

	Name      string `db:"name" json:"name"`
	MediaType string `db:"media_type" json:"media_type"`
	Data      []byte `db:"data" json:"-"`

	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}
