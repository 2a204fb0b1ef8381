package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastygo/memo/domain"
	"github.com/fastygo/memo/repository"
)

// Pool is the subset of *pgxpool.Pool the repository needs.
type Pool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

type sessionRepository struct {
	pool Pool
	ttl  time.Duration
}

// NewSessionRepository returns a Postgres-backed implementation of SessionRepository.
func NewSessionRepository(pool Pool, ttl time.Duration) repository.SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &sessionRepository{pool: pool, ttl: ttl}
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	const query = `
	SELECT id, user_id, username, COALESCE(upstream_token, ''), remember, created_at, expires_at
	FROM sessions
	WHERE id = $1 AND expires_at > NOW()
	`
	var session domain.Session
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.UserID,
		&session.Username,
		&session.UpstreamToken,
		&session.Remember,
		&session.CreatedAt,
		&session.ExpiresAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}

	const query = `
	INSERT INTO sessions (id, user_id, username, upstream_token, remember, created_at, expires_at)
	VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()), $7)
	ON CONFLICT (id) DO UPDATE
	SET user_id = EXCLUDED.user_id,
		username = EXCLUDED.username,
		upstream_token = EXCLUDED.upstream_token,
		remember = EXCLUDED.remember,
		expires_at = EXCLUDED.expires_at
	RETURNING created_at
	`
	return r.pool.QueryRow(ctx, query,
		session.ID,
		session.UserID,
		session.Username,
		nullString(session.UpstreamToken),
		session.Remember,
		nullTime(session.CreatedAt),
		session.ExpiresAt,
	).Scan(&session.CreatedAt)
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM sessions WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *sessionRepository) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	const query = `DELETE FROM sessions WHERE expires_at <= $1`
	tag, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *sessionRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
