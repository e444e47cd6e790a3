package dto

import (
	"time"

	"github.com/google/uuid"
)

// FileListItem mirrors the /files JSON contract.
type FileListItem struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
	UploadedBy string    `json:"uploaded_by"`
}
