package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/memo/domain"
	boltInfra "github.com/fastygo/memo/internal/infrastructure/bolt"
	"github.com/fastygo/memo/repository"
	"github.com/fastygo/memo/repository/repotest"
)

func openDB(t *testing.T) *bbolt.DB {
	t.Helper()
	db, err := boltInfra.Open(filepath.Join(t.TempDir(), "nested", "sessions.db"), "sessions")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSessionRepository(t *testing.T) {
	repotest.RunSessionRepository(t, func(t *testing.T) repository.SessionRepository {
		return NewSessionRepository(openDB(t), "sessions", time.Hour)
	})
}

func TestPurgeDropsUnreadableEntries(t *testing.T) {
	db := openDB(t)
	require.NoError(t, db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte("sessions")).Put([]byte("junk"), []byte("{"))
	}))

	purged, err := NewSessionRepository(db, "sessions", time.Hour).PurgeExpired(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, purged)
}

func TestMissingBucket(t *testing.T) {
	repo := NewSessionRepository(openDB(t), "other", time.Hour)
	ctx := context.Background()

	assert.ErrorIs(t, repo.Ping(ctx), bbolt.ErrBucketNotFound)

	_, err := repo.Get(ctx, "s-1")
	assert.ErrorIs(t, err, bbolt.ErrBucketNotFound)

	err = repo.Save(ctx, &domain.Session{ID: "s-1", UserID: 1, ExpiresAt: time.Now().Add(time.Hour)})
	assert.ErrorIs(t, err, bbolt.ErrBucketNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "s-1"), bbolt.ErrBucketNotFound)

	_, err = repo.PurgeExpired(ctx, time.Now())
	assert.ErrorIs(t, err, bbolt.ErrBucketNotFound)
}
