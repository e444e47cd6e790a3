// Package storage defines the persistence capability shared by all vault
// backends. Every engine implements the same Store interface so the service
// layer never knows which one it is talking to; backends are selected once
// at startup (see cmd/api).
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"vault-backend/internal/models"
)

var (
	// ErrDuplicateUsername is returned by CreateUser when the username is
	// already taken. The failed attempt must leave no trace in storage.
	ErrDuplicateUsername = errors.New("username already taken")

	// ErrNotFound covers missing users, missing sessions, and files that
	// either do not exist or are owned by someone else. Not-owned must be
	// indistinguishable from nonexistent.
	ErrNotFound = errors.New("not found")
)

// FileInfo is the listing projection of a stored file. Size is computed from
// the payload at query time, never stored redundantly.
type FileInfo struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	MediaType  string    `db:"media_type" json:"media_type"`
	Size       int64     `db:"size" json:"size"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
	OwnerName  string    `db:"owner_name" json:"owner_name"`
}

// Store is the vault's persistence capability: credentials, blobs, and
// (optionally persisted) sessions. Implementations must be safe for
// concurrent use; durability of individual rows is delegated to the engine.
type Store interface {
	// CreateUser persists a username/password-hash pair and returns the new
	// user's id. Fails with ErrDuplicateUsername without mutating state when
	// the username exists.
	CreateUser(ctx context.Context, username, passwordHash string) (uuid.UUID, error)

	// GetUserByUsername returns ErrNotFound for unknown usernames.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// InsertFile stores the payload verbatim (zero length allowed) together
	// with its metadata in a single atomic write, stamping uploadedAt with
	// the current time.
	InsertFile(ctx context.Context, ownerID uuid.UUID, name, mediaType string, data []byte) (uuid.UUID, error)

	// ListFiles returns only files owned by ownerID, ordered by
	// (uploaded_at, id) ascending, i.e. insertion order.
	ListFiles(ctx context.Context, ownerID uuid.UUID) ([]FileInfo, error)

	// FetchFile returns ErrNotFound unless the file exists and is owned by
	// ownerID. This double condition is the access-control enforcement
	// point for downloads.
	FetchFile(ctx context.Context, fileID, ownerID uuid.UUID) (*models.File, error)

	// PutSession records a session token for the store-backed session
	// manager.
	PutSession(ctx context.Context, session *models.Session) error

	// GetSession returns ErrNotFound for unknown tokens.
	GetSession(ctx context.Context, token string) (*models.Session, error)

	// DeleteSession is idempotent; deleting an unknown token is a no-op.
	DeleteSession(ctx context.Context, token string) error

	Close() error
}
