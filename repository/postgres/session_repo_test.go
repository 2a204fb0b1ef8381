package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/memo/domain"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *int64:
			*p = r.values[i].(int64)
		case *bool:
			*p = r.values[i].(bool)
		case *time.Time:
			*p = r.values[i].(time.Time)
		}
	}
	return nil
}

type fakePool struct {
	row      fakeRow
	tag      pgconn.CommandTag
	execErr  error
	lastSQL  string
	lastArgs []any
}

func (p *fakePool) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	p.lastSQL, p.lastArgs = sql, args
	return p.row
}

func (p *fakePool) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.lastSQL, p.lastArgs = sql, args
	return p.tag, p.execErr
}

func (p *fakePool) Ping(context.Context) error { return nil }

func TestGetMapsNoRows(t *testing.T) {
	repo := NewSessionRepository(&fakePool{row: fakeRow{err: pgx.ErrNoRows}}, time.Hour)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestGetScansSession(t *testing.T) {
	created := time.Now().Add(-time.Minute)
	expires := time.Now().Add(time.Hour)
	pool := &fakePool{row: fakeRow{values: []any{"s-1", int64(3), "bob", "", true, created, expires}}}

	session, err := NewSessionRepository(pool, time.Hour).Get(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, "s-1", session.ID)
	assert.Equal(t, int64(3), session.UserID)
	assert.True(t, session.Remember)
	assert.Equal(t, []any{"s-1"}, pool.lastArgs)
}

func TestSaveFillsExpiry(t *testing.T) {
	created := time.Now()
	pool := &fakePool{row: fakeRow{values: []any{created}}}
	session := &domain.Session{ID: "s-1", UserID: 1, Username: "a"}

	require.NoError(t, NewSessionRepository(pool, time.Hour).Save(context.Background(), session))
	assert.WithinDuration(t, session.CreatedAt.Add(time.Hour), session.ExpiresAt, time.Second)
	assert.Nil(t, pool.lastArgs[3], "empty upstream token is stored as NULL")
}

func TestPurgeExpiredReportsRows(t *testing.T) {
	pool := &fakePool{tag: pgconn.NewCommandTag("DELETE 3")}

	n, err := NewSessionRepository(pool, time.Hour).PurgeExpired(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	pool.execErr = errors.New("down")
	_, err = NewSessionRepository(pool, time.Hour).PurgeExpired(context.Background(), time.Now())
	assert.Error(t, err)
}
