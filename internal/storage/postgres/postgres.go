// Package postgres implements storage.Store on PostgreSQL via sqlx. This is
// the relational-server backend; row durability and concurrent inserts are
// the engine's problem, not ours.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"vault-backend/internal/models"
	"vault-backend/internal/storage"
)

// uniqueViolation is the postgres error code for unique constraint failures.
const uniqueViolation = "23505"

type Store struct {
	db *sqlx.DB
}

// Open connects, verifies the connection, and ensures the schema.
func Open(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return NewWithDB(db), nil
}

// NewWithDB wraps an existing connection pool. The caller retains ownership
// of schema setup; tests use this with a mocked pool.
func NewWithDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (uuid.UUID, error) {
	id := uuid.New()

	query := `
		insert into users (id, username, password_hash)
		values ($1, $2, $3)
	`
	if _, err := s.db.ExecContext(ctx, query, id, username, passwordHash); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return uuid.Nil, storage.ErrDuplicateUsername
		}
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}

	return id, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	query := "select id, username, password_hash, created_at from users where username = $1"

	if err := s.db.GetContext(ctx, &user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (s *Store) InsertFile(ctx context.Context, ownerID uuid.UUID, name, mediaType string, data []byte) (uuid.UUID, error) {
	id := uuid.New()

	query := `
		insert into files (id, owner_id, name, media_type, data, uploaded_at)
		values ($1, $2, $3, $4, $5, $6)
	`
	if _, err := s.db.ExecContext(ctx, query, id, ownerID, name, mediaType, data, time.Now().UTC()); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert file: %w", err)
	}

	return id, nil
}

// ListFiles returns the owner's files ordered by (uploaded_at, id), i.e.
// insertion order. Size comes from octet_length so it can never drift from
// the payload.
func (s *Store) ListFiles(ctx context.Context, ownerID uuid.UUID) ([]storage.FileInfo, error) {
	infos := []storage.FileInfo{}
	query := `
		select f.id, f.name, f.media_type, octet_length(f.data) as size,
		       f.uploaded_at, u.username as owner_name
		from files f
		join users u on u.id = f.owner_id
		where f.owner_id = $1
		order by f.uploaded_at, f.id
	`
	if err := s.db.SelectContext(ctx, &infos, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return infos, nil
}

func (s *Store) FetchFile(ctx context.Context, fileID, ownerID uuid.UUID) (*models.File, error) {
	var file models.File
	query := `
		select id, owner_id, name, media_type, data, uploaded_at
		from files
		where id = $1 and owner_id = $2
	`
	if err := s.db.GetContext(ctx, &file, query, fileID, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch file: %w", err)
	}

	return &file, nil
}

func (s *Store) PutSession(ctx context.Context, session *models.Session) error {
	query := `
		insert into sessions (token, user_id, created_at)
		values ($1, $2, $3)
	`
	if _, err := s.db.ExecContext(ctx, query, session.Token, session.UserID, session.CreatedAt); err != nil {
		return fmt.Errorf("failed to put session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	query := "select token, user_id, created_at from sessions where token = $1"

	if err := s.db.GetContext(ctx, &session, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, "delete from sessions where token = $1", token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
