// Package session issues and resolves the opaque tokens that gate every
// vault operation. Tokens are 32 bytes from crypto/rand, hex-encoded; they
// carry no information and are only meaningful against the manager's state.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager maps opaque tokens to user ids.
//
// Resolve deliberately reports absence as a bool, not an error: an unknown,
// expired, or destroyed token simply means "not authenticated" and callers
// must never treat it as a fault.
type Manager interface {
	Create(ctx context.Context, userID uuid.UUID) (string, error)
	Resolve(ctx context.Context, token string) (uuid.UUID, bool)

	// Destroy is idempotent; destroying an unknown token is a no-op.
	Destroy(ctx context.Context, token string) error
}

func newToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

type memoryEntry struct {
	userID    uuid.UUID
	createdAt time.Time
}

// MemoryManager keeps the token table in process memory: empty at startup,
// discarded at shutdown. A TTL of zero disables expiry.
type MemoryManager struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration

	now func() time.Time
}

func NewMemoryManager(ttl time.Duration) *MemoryManager {
	return &MemoryManager{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryManager) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.sessions[token] = memoryEntry{userID: userID, createdAt: m.now()}
	m.mu.Unlock()

	return token, nil
}

func (m *MemoryManager) Resolve(ctx context.Context, token string) (uuid.UUID, bool) {
	m.mu.RLock()
	entry, ok := m.sessions[token]
	m.mu.RUnlock()

	if !ok {
		return uuid.Nil, false
	}
	if m.expired(entry.createdAt) {
		// Lazy cleanup; there is no background sweeper.
		m.Destroy(ctx, token)
		return uuid.Nil, false
	}
	return entry.userID, true
}

func (m *MemoryManager) Destroy(ctx context.Context, token string) error {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
	return nil
}

func (m *MemoryManager) expired(createdAt time.Time) bool {
	return m.ttl > 0 && m.now().Sub(createdAt) > m.ttl
}
