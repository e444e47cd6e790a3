// Package storetest is a conformance suite shared by every storage backend.
// Each engine's tests call Run with a factory; the suite covers the
// contracts the service layer relies on: username uniqueness, exact byte
// round-trip, owner isolation, insertion-order listing, and session
// persistence.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vault-backend/internal/models"
	"vault-backend/internal/storage"
)

// Run executes the suite against a fresh store per subtest.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	ctx := context.Background()

	t.Run("DuplicateUsername", func(t *testing.T) {
		store := newStore(t)

		id, err := store.CreateUser(ctx, "alice", "hash-1")
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, id)

		_, err = store.CreateUser(ctx, "alice", "hash-2")
		require.ErrorIs(t, err, storage.ErrDuplicateUsername)

		// The losing attempt must not have touched the original row.
		user, err := store.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "hash-1", user.PasswordHash)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		store := newStore(t)

		_, err := store.GetUserByUsername(ctx, "nobody")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("FileRoundTrip", func(t *testing.T) {
		store := newStore(t)

		ownerID, err := store.CreateUser(ctx, "alice", "hash")
		require.NoError(t, err)

		payload := []byte("hello")
		fileID, err := store.InsertFile(ctx, ownerID, "notes.txt", "text/plain", payload)
		require.NoError(t, err)

		file, err := store.FetchFile(ctx, fileID, ownerID)
		require.NoError(t, err)
		assert.Equal(t, fileID, file.ID)
		assert.Equal(t, ownerID, file.OwnerID)
		assert.Equal(t, "notes.txt", file.Name)
		assert.Equal(t, "text/plain", file.MediaType)
		assert.Equal(t, payload, file.Data)
		assert.False(t, file.UploadedAt.IsZero())
	})

	t.Run("EmptyPayload", func(t *testing.T) {
		store := newStore(t)

		ownerID, err := store.CreateUser(ctx, "alice", "hash")
		require.NoError(t, err)

		fileID, err := store.InsertFile(ctx, ownerID, "empty.bin", "application/octet-stream", nil)
		require.NoError(t, err)

		file, err := store.FetchFile(ctx, fileID, ownerID)
		require.NoError(t, err)
		assert.Len(t, file.Data, 0)

		infos, err := store.ListFiles(ctx, ownerID)
		require.NoError(t, err)
		require.Len(t, infos, 1)
		assert.Equal(t, int64(0), infos[0].Size)
	})

	t.Run("FetchNotOwned", func(t *testing.T) {
		store := newStore(t)

		aliceID, err := store.CreateUser(ctx, "alice", "hash")
		require.NoError(t, err)
		bobID, err := store.CreateUser(ctx, "bob", "hash")
		require.NoError(t, err)

		fileID, err := store.InsertFile(ctx, aliceID, "secret.txt", "text/plain", []byte("private"))
		require.NoError(t, err)

		// Someone else's file must look exactly like a missing one.
		_, err = store.FetchFile(ctx, fileID, bobID)
		require.ErrorIs(t, err, storage.ErrNotFound)

		_, err = store.FetchFile(ctx, uuid.New(), aliceID)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("ListIsolationAndOrder", func(t *testing.T) {
		store := newStore(t)

		aliceID, err := store.CreateUser(ctx, "alice", "hash")
		require.NoError(t, err)
		bobID, err := store.CreateUser(ctx, "bob", "hash")
		require.NoError(t, err)

		for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
			_, err := store.InsertFile(ctx, aliceID, name, "text/plain", []byte(name))
			require.NoError(t, err)
			// Distinct timestamps keep the insertion order unambiguous.
			time.Sleep(2 * time.Millisecond)
		}
		_, err = store.InsertFile(ctx, bobID, "x.txt", "text/plain", []byte("x"))
		require.NoError(t, err)

		infos, err := store.ListFiles(ctx, aliceID)
		require.NoError(t, err)
		require.Len(t, infos, 3)
		for i, name := range []string{"a.txt", "b.txt", "c.txt"} {
			assert.Equal(t, name, infos[i].Name)
			assert.Equal(t, int64(len(name)), infos[i].Size)
			assert.Equal(t, "text/plain", infos[i].MediaType)
			assert.Equal(t, "alice", infos[i].OwnerName)
		}

		bobInfos, err := store.ListFiles(ctx, bobID)
		require.NoError(t, err)
		require.Len(t, bobInfos, 1)
		assert.Equal(t, "x.txt", bobInfos[0].Name)
	})

	t.Run("ListEmpty", func(t *testing.T) {
		store := newStore(t)

		ownerID, err := store.CreateUser(ctx, "alice", "hash")
		require.NoError(t, err)

		infos, err := store.ListFiles(ctx, ownerID)
		require.NoError(t, err)
		assert.Empty(t, infos)
	})

	t.Run("Sessions", func(t *testing.T) {
		store := newStore(t)

		userID, err := store.CreateUser(ctx, "alice", "hash")
		require.NoError(t, err)

		sess := &models.Session{
			Token:     "deadbeef",
			UserID:    userID,
			CreatedAt: time.Now().UTC().Truncate(time.Second),
		}
		require.NoError(t, store.PutSession(ctx, sess))

		got, err := store.GetSession(ctx, "deadbeef")
		require.NoError(t, err)
		assert.Equal(t, "deadbeef", got.Token)
		assert.Equal(t, userID, got.UserID)

		_, err = store.GetSession(ctx, "unknown")
		require.ErrorIs(t, err, storage.ErrNotFound)

		require.NoError(t, store.DeleteSession(ctx, "deadbeef"))
		_, err = store.GetSession(ctx, "deadbeef")
		require.ErrorIs(t, err, storage.ErrNotFound)

		// Deleting again is a no-op.
		require.NoError(t, store.DeleteSession(ctx, "deadbeef"))
	})
}
