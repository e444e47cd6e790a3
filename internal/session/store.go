package session

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"vault-backend/internal/models"
	"vault-backend/internal/storage"
)

// StoreManager persists sessions through the same storage engine as the
// blobs, so logins survive a restart. Semantics match MemoryManager.
type StoreManager struct {
	store storage.Store
	ttl   time.Duration

	now func() time.Time
}

func NewStoreManager(store storage.Store, ttl time.Duration) *StoreManager {
	return &StoreManager{store: store, ttl: ttl, now: time.Now}
}

func (m *StoreManager) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	sess := &models.Session{Token: token, UserID: userID, CreatedAt: m.now().UTC()}
	if err := m.store.PutSession(ctx, sess); err != nil {
		return "", err
	}

	return token, nil
}

// Resolve treats any storage fault as "not authenticated"; a broken session
// table must never grant access.
func (m *StoreManager) Resolve(ctx context.Context, token string) (uuid.UUID, bool) {
	sess, err := m.store.GetSession(ctx, token)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("session lookup failed: %v", err)
		}
		return uuid.Nil, false
	}

	if m.ttl > 0 && m.now().Sub(sess.CreatedAt) > m.ttl {
		if err := m.store.DeleteSession(ctx, token); err != nil {
			log.Printf("expired session cleanup failed: %v", err)
		}
		return uuid.Nil, false
	}

	return sess.UserID, true
}

func (m *StoreManager) Destroy(ctx context.Context, token string) error {
	return m.store.DeleteSession(ctx, token)
}
