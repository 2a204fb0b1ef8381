package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fastygo/memo/domain"
	"github.com/fastygo/memo/internal/config"
	"github.com/fastygo/memo/internal/services/lifecycle"
)

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
	assert.True(t, names["sessions"])

	purge, _, err := rootCmd.Find([]string{"sessions", "purge"})
	require.NoError(t, err)
	assert.Equal(t, "purge", purge.Name())
}

func testConfig(t *testing.T, backend string) *config.Config {
	return &config.Config{
		Session: config.SessionConfig{Backend: backend, TTL: time.Hour},
		Bolt: config.BoltConfig{
			Path:   filepath.Join(t.TempDir(), "sessions.db"),
			Bucket: "sessions",
		},
	}
}

func TestOpenSessionStoreBolt(t *testing.T) {
	cfg := testConfig(t, config.BackendBolt)
	manager := lifecycle.New(time.Second, nil)

	store, err := openSessionStore(context.Background(), cfg, zap.NewNop(), manager)
	require.NoError(t, err)

	session := &domain.Session{ID: "s1", UserID: 1, Username: "alice", CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Save(context.Background(), session))
	for name, check := range storeChecks(cfg, store) {
		assert.Equal(t, "sessions:bolt", name)
		assert.NoError(t, check(context.Background()))
	}

	require.NoError(t, manager.Shutdown(context.Background()))
}

func TestOpenSessionStoreRejectsUnknownBackend(t *testing.T) {
	_, err := openSessionStore(context.Background(), testConfig(t, "etcd"), zap.NewNop(), lifecycle.New(time.Second, nil))
	assert.Error(t, err)
}
