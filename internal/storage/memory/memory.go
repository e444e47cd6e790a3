// Package memory implements storage.Store with mutex-guarded maps. It backs
// unit tests and the `memory` dev backend; nothing survives process exit.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"vault-backend/internal/models"
	"vault-backend/internal/storage"
)

type Store struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]*models.User
	byUsername map[string]uuid.UUID
	files      map[uuid.UUID]*models.File
	sessions   map[string]*models.Session
}

func New() *Store {
	return &Store{
		users:      make(map[uuid.UUID]*models.User),
		byUsername: make(map[string]uuid.UUID),
		files:      make(map[uuid.UUID]*models.File),
		sessions:   make(map[string]*models.Session),
	}
}

func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[username]; exists {
		return uuid.Nil, storage.ErrDuplicateUsername
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[user.ID] = user
	s.byUsername[username] = user.ID

	return user.ID, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	user := *s.users[id]
	return &user, nil
}

func (s *Store) InsertFile(ctx context.Context, ownerID uuid.UUID, name, mediaType string, data []byte) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file := &models.File{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Name:       name,
		MediaType:  mediaType,
		Data:       append([]byte(nil), data...),
		UploadedAt: time.Now().UTC(),
	}
	s.files[file.ID] = file

	return file.ID, nil
}

// ListFiles returns the owner's files in insertion order (uploaded_at, id).
func (s *Store) ListFiles(ctx context.Context, ownerID uuid.UUID) ([]storage.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ownerName := ""
	if owner, ok := s.users[ownerID]; ok {
		ownerName = owner.Username
	}

	infos := []storage.FileInfo{}
	for _, f := range s.files {
		if f.OwnerID != ownerID {
			continue
		}
		infos = append(infos, storage.FileInfo{
			ID:         f.ID,
			Name:       f.Name,
			MediaType:  f.MediaType,
			Size:       int64(len(f.Data)),
			UploadedAt: f.UploadedAt,
			OwnerName:  ownerName,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].UploadedAt.Equal(infos[j].UploadedAt) {
			return infos[i].UploadedAt.Before(infos[j].UploadedAt)
		}
		return infos[i].ID.String() < infos[j].ID.String()
	})

	return infos, nil
}

func (s *Store) FetchFile(ctx context.Context, fileID, ownerID uuid.UUID) (*models.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[fileID]
	if !ok || f.OwnerID != ownerID {
		return nil, storage.ErrNotFound
	}

	file := *f
	file.Data = append([]byte(nil), f.Data...)
	return &file, nil
}

func (s *Store) PutSession(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *session
	s.sessions[session.Token] = &copied
	return nil
}

func (s *Store) GetSession(ctx context.Context, token string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *sess
	return &copied, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

func (s *Store) Close() error {
	return nil
}
