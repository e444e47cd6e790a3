// Package badgerstore implements storage.Store on BadgerDB, an embedded
// key-value engine. It is the file-backed alternative to the postgres
// backend: same interface, same invariants, no external server to run.
//
// Key schema (namespaced prefixes, values are JSON-encoded records unless
// noted):
//
//	user:<user-id>             -> models.User
//	username:<username>        -> user id string (uniqueness + login lookup)
//	file:<file-id>             -> models.File (payload included)
//	owner:<owner-id>:<file-id> -> empty (listing index, prefix-scanned)
//	session:<token>            -> models.Session
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"vault-backend/internal/models"
	"vault-backend/internal/storage"
)

const (
	userPrefix     = "user:"
	usernamePrefix = "username:"
	filePrefix     = "file:"
	ownerPrefix    = "owner:"
	sessionPrefix  = "session:"
)

// Stored records carry their own JSON tags instead of reusing the model
// tags, which hide credential and payload fields from API encoding.
type userRecord struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

type fileRecord struct {
	ID         uuid.UUID `json:"id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	Name       string    `json:"name"`
	MediaType  string    `json:"media_type"`
	Data       []byte    `json:"data"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type sessionRecord struct {
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Store struct {
	db *badger.DB
}

// New opens (or creates) the database directory at path.
func New(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	return &Store{db: db}, nil
}

func userKey(id uuid.UUID) []byte        { return []byte(userPrefix + id.String()) }
func usernameKey(username string) []byte { return []byte(usernamePrefix + username) }
func fileKey(id uuid.UUID) []byte        { return []byte(filePrefix + id.String()) }
func ownerKey(owner, file uuid.UUID) []byte {
	return []byte(ownerPrefix + owner.String() + ":" + file.String())
}
func sessionKey(token string) []byte { return []byte(sessionPrefix + token) }

func setJSON(txn *badger.Txn, key []byte, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	return txn.Set(key, raw)
}

func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(raw []byte) error {
		return json.Unmarshal(raw, v)
	})
}

func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (uuid.UUID, error) {
	user := &userRecord{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		// Uniqueness check and both writes happen in one transaction, so a
		// losing duplicate leaves no partial state behind.
		if _, err := txn.Get(usernameKey(username)); err == nil {
			return storage.ErrDuplicateUsername
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(usernameKey(username), []byte(user.ID.String())); err != nil {
			return err
		}
		return setJSON(txn, userKey(user.ID), user)
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateUsername) {
			return uuid.Nil, storage.ErrDuplicateUsername
		}
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user.ID, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var rec userRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(usernameKey(username))
		if err != nil {
			return err
		}
		return item.Value(func(raw []byte) error {
			id, err := uuid.Parse(string(raw))
			if err != nil {
				return err
			}
			return getJSON(txn, userKey(id), &rec)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &models.User{
		ID:           rec.ID,
		Username:     rec.Username,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    rec.CreatedAt,
	}, nil
}

func (s *Store) InsertFile(ctx context.Context, ownerID uuid.UUID, name, mediaType string, data []byte) (uuid.UUID, error) {
	file := &fileRecord{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Name:       name,
		MediaType:  mediaType,
		Data:       data,
		UploadedAt: time.Now().UTC(),
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := setJSON(txn, fileKey(file.ID), file); err != nil {
			return err
		}
		return txn.Set(ownerKey(ownerID, file.ID), nil)
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert file: %w", err)
	}

	return file.ID, nil
}

// ListFiles scans the owner's index prefix and returns the files in
// insertion order (uploaded_at, id).
func (s *Store) ListFiles(ctx context.Context, ownerID uuid.UUID) ([]storage.FileInfo, error) {
	infos := []storage.FileInfo{}

	err := s.db.View(func(txn *badger.Txn) error {
		ownerName := ""
		var owner userRecord
		if err := getJSON(txn, userKey(ownerID), &owner); err == nil {
			ownerName = owner.Username
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		prefix := []byte(ownerPrefix + ownerID.String() + ":")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			fileID, err := uuid.Parse(string(it.Item().Key()[len(prefix):]))
			if err != nil {
				return fmt.Errorf("malformed owner index key %q: %w", it.Item().Key(), err)
			}
			var file fileRecord
			if err := getJSON(txn, fileKey(fileID), &file); err != nil {
				return err
			}
			infos = append(infos, storage.FileInfo{
				ID:         file.ID,
				Name:       file.Name,
				MediaType:  file.MediaType,
				Size:       int64(len(file.Data)),
				UploadedAt: file.UploadedAt,
				OwnerName:  ownerName,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
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
	var rec fileRecord
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, fileKey(fileID), &rec)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch file: %w", err)
	}

	// Not-owned is reported exactly like nonexistent.
	if rec.OwnerID != ownerID {
		return nil, storage.ErrNotFound
	}

	return &models.File{
		ID:         rec.ID,
		OwnerID:    rec.OwnerID,
		Name:       rec.Name,
		MediaType:  rec.MediaType,
		Data:       rec.Data,
		UploadedAt: rec.UploadedAt,
	}, nil
}

func (s *Store) PutSession(ctx context.Context, session *models.Session) error {
	rec := &sessionRecord{UserID: session.UserID, CreatedAt: session.CreatedAt}
	err := s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, sessionKey(session.Token), rec)
	})
	if err != nil {
		return fmt.Errorf("failed to put session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, token string) (*models.Session, error) {
	var rec sessionRecord
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, sessionKey(token), &rec)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &models.Session{Token: token, UserID: rec.UserID, CreatedAt: rec.CreatedAt}, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey(token))
	})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
