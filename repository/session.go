package repository

import (
	"context"
	"time"

	"github.com/fastygo/memo/domain"
)

// SessionRepository is the credential store behind the session cookie.
// Get reports domain.ErrSessionNotFound for missing and expired sessions.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
	Ping(ctx context.Context) error
}
