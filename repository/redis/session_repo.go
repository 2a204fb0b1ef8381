package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/memo/domain"
	"github.com/fastygo/memo/repository"
)

const defaultPrefix = "session:"

// Option tunes the repository.
type Option func(*sessionRepository)

// WithPrefix namespaces session keys, e.g. when several deployments share
// one Redis database.
func WithPrefix(prefix string) Option {
	return func(r *sessionRepository) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

type sessionRepository struct {
	client redislib.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionRepository stores sessions as JSON under session:<id>. Each key
// expires with its session, so PurgeExpired has nothing to do.
func NewSessionRepository(client redislib.UniversalClient, ttl time.Duration, opts ...Option) repository.SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	r := &sessionRepository{
		client: client,
		prefix: defaultPrefix,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redislib.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, err
	}
	// key expiry has second granularity
	if session.IsExpired(r.now()) {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

// Save writes the session with a key expiry at ExpiresAt. Saving an already
// expired session removes it instead.
func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	now := r.now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}
	if session.IsExpired(now) {
		return r.Delete(ctx, session.ID)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.SetArgs(ctx, r.key(session.ID), payload, redislib.SetArgs{ExpireAt: session.ExpiresAt}).Err()
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return r.client.Del(ctx, r.key(id)).Err()
}

func (r *sessionRepository) PurgeExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}

func (r *sessionRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *sessionRepository) key(id string) string {
	return r.prefix + id
}
