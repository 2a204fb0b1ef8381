// Package repotest holds behavior shared by every SessionRepository backend.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/memo/domain"
	"github.com/fastygo/memo/repository"
)

// RunSessionRepository exercises repo against the SessionRepository contract.
func RunSessionRepository(t *testing.T, newRepo func(t *testing.T) repository.SessionRepository) {
	t.Helper()
	ctx := context.Background()

	t.Run("save then get", func(t *testing.T) {
		repo := newRepo(t)
		session := &domain.Session{
			ID:            "s-1",
			UserID:        7,
			Username:      "alice",
			UpstreamToken: "upstream",
			ExpiresAt:     time.Now().Add(time.Hour),
		}
		require.NoError(t, repo.Save(ctx, session))
		assert.False(t, session.CreatedAt.IsZero())

		got, err := repo.Get(ctx, "s-1")
		require.NoError(t, err)
		assert.Equal(t, int64(7), got.UserID)
		assert.Equal(t, "alice", got.Username)
		assert.Equal(t, "upstream", got.UpstreamToken)
	})

	t.Run("last write wins", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, &domain.Session{ID: "s-1", UserID: 1, Username: "a", ExpiresAt: time.Now().Add(time.Hour)}))
		require.NoError(t, repo.Save(ctx, &domain.Session{ID: "s-1", UserID: 2, Username: "b", ExpiresAt: time.Now().Add(time.Hour)}))

		got, err := repo.Get(ctx, "s-1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.UserID)
	})

	t.Run("missing", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Get(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, &domain.Session{ID: "s-1", UserID: 1, ExpiresAt: time.Now().Add(time.Hour)}))
		require.NoError(t, repo.Delete(ctx, "s-1"))
		require.NoError(t, repo.Delete(ctx, "s-1"))

		_, err := repo.Get(ctx, "s-1")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("expired sessions are hidden and purged", func(t *testing.T) {
		repo := newRepo(t)
		past := time.Now().Add(-2 * time.Hour)
		require.NoError(t, repo.Save(ctx, &domain.Session{ID: "old", UserID: 1, CreatedAt: past, ExpiresAt: past.Add(time.Hour)}))
		require.NoError(t, repo.Save(ctx, &domain.Session{ID: "new", UserID: 1, ExpiresAt: time.Now().Add(time.Hour)}))

		_, err := repo.Get(ctx, "old")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)

		purged, err := repo.PurgeExpired(ctx, time.Now())
		require.NoError(t, err)
		assert.Equal(t, 1, purged)

		_, err = repo.Get(ctx, "new")
		assert.NoError(t, err)
	})

	t.Run("rejects empty id", func(t *testing.T) {
		repo := newRepo(t)
		assert.ErrorIs(t, repo.Save(ctx, &domain.Session{}), domain.ErrInvalidPayload)
		assert.ErrorIs(t, repo.Save(ctx, nil), domain.ErrInvalidPayload)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, newRepo(t).Ping(ctx))
	})
}
