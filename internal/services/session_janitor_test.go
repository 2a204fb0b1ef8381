package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/fastygo/memo/domain"
	"github.com/fastygo/memo/repository/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type staticHealth bool

func (h staticHealth) IsOnline() bool { return bool(h) }

func seed(t *testing.T, repo *memory.SessionRepository, id string, expires time.Time) {
	t.Helper()
	require.NoError(t, repo.Save(context.Background(), &domain.Session{
		ID:        id,
		UserID:    1,
		Username:  "alice",
		CreatedAt: expires.Add(-time.Hour),
		ExpiresAt: expires,
	}))
}

func TestRunOncePurgesOnlyExpired(t *testing.T) {
	repo := memory.NewSessionRepository(time.Hour)
	now := time.Now()
	seed(t, repo, "old", now.Add(-time.Minute))
	seed(t, repo, "live", now.Add(time.Hour))

	j := NewSessionJanitor(repo, nil, nil, JanitorConfig{Interval: time.Minute})
	removed, err := j.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, repo.Len())

	_, err = repo.Get(context.Background(), "old")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRunOnceSkipsWhileOffline(t *testing.T) {
	repo := memory.NewSessionRepository(time.Hour)
	seed(t, repo, "old", time.Now().Add(-time.Minute))

	j := NewSessionJanitor(repo, staticHealth(false), nil, JanitorConfig{})
	removed, err := j.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Equal(t, 1, repo.Len())
}

type failingStore struct {
	*memory.SessionRepository
}

func (failingStore) PurgeExpired(context.Context, time.Time) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestRunOnceReturnsStoreError(t *testing.T) {
	j := NewSessionJanitor(failingStore{memory.NewSessionRepository(time.Hour)}, staticHealth(true), nil, JanitorConfig{})
	_, err := j.RunOnce(context.Background())
	assert.EqualError(t, err, "disk on fire")
}

func TestStartStopLeavesNoGoroutines(t *testing.T) {
	j := NewSessionJanitor(memory.NewSessionRepository(time.Hour), nil, nil, JanitorConfig{Interval: time.Second})
	j.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	j.Stop(ctx)
}
