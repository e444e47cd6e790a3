package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"vault-backend/internal/models"
	"vault-backend/internal/session"
	"vault-backend/internal/storage"
)

// FileService is the composition root for blob operations. Every call gates
// on the session first and scopes the storage query to the resolved owner;
// client-supplied user ids are never trusted. Storage errors propagate
// unchanged and nothing is retried.
type FileService struct {
	store    storage.Store
	sessions session.Manager
	timeout  time.Duration
}

func NewFileService(store storage.Store, sessions session.Manager, timeout time.Duration) *FileService {
	return &FileService{store: store, sessions: sessions, timeout: timeout}
}

// require resolves the session or fails with ErrUnauthenticated, before any
// storage access happens.
func (s *FileService) require(ctx context.Context, token string) (uuid.UUID, error) {
	userID, ok := s.sessions.Resolve(ctx, token)
	if !ok {
		return uuid.Nil, ErrUnauthenticated
	}
	return userID, nil
}

func (s *FileService) storageCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *FileService) Upload(ctx context.Context, token, name, mediaType string, data []byte) (uuid.UUID, error) {
	ownerID, err := s.require(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}

	ctx, cancel := s.storageCtx(ctx)
	defer cancel()

	return s.store.InsertFile(ctx, ownerID, name, mediaType, data)
}

func (s *FileService) List(ctx context.Context, token string) ([]storage.FileInfo, error) {
	ownerID, err := s.require(ctx, token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.storageCtx(ctx)
	defer cancel()

	return s.store.ListFiles(ctx, ownerID)
}

// Download returns storage.ErrNotFound both for files that do not exist and
// for files owned by someone else.
func (s *FileService) Download(ctx context.Context, token string, fileID uuid.UUID) (*models.File, error) {
	ownerID, err := s.require(ctx, token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.storageCtx(ctx)
	defer cancel()

	return s.store.FetchFile(ctx, fileID, ownerID)
}
