package bolt

import (
	"context"
	"encoding/json"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/memo/domain"
	"github.com/fastygo/memo/repository"
)

type sessionRepository struct {
	db     *bbolt.DB
	bucket []byte
	ttl    time.Duration
}

// NewSessionRepository stores sessions as JSON values keyed by session id.
// The bucket must already exist.
func NewSessionRepository(db *bbolt.DB, bucket string, ttl time.Duration) repository.SessionRepository {
	if bucket == "" {
		bucket = "sessions"
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &sessionRepository{db: db, bucket: []byte(bucket), ttl: ttl}
}

func (r *sessionRepository) sessions(tx *bbolt.Tx) (*bbolt.Bucket, error) {
	b := tx.Bucket(r.bucket)
	if b == nil {
		return nil, bbolt.ErrBucketNotFound
	}
	return b, nil
}

func (r *sessionRepository) Get(_ context.Context, id string) (*domain.Session, error) {
	if r.db == nil {
		return nil, bbolt.ErrDatabaseNotOpen
	}
	var session *domain.Session
	err := r.db.View(func(tx *bbolt.Tx) error {
		b, err := r.sessions(tx)
		if err != nil {
			return err
		}
		raw := b.Get([]byte(id))
		if raw == nil {
			return nil
		}
		var s domain.Session
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		session = &s
		return nil
	})
	if err != nil {
		return nil, err
	}
	if session == nil || session.IsExpired(time.Now()) {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (r *sessionRepository) Save(_ context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	if r.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		b, err := r.sessions(tx)
		if err != nil {
			return err
		}
		return b.Put([]byte(session.ID), payload)
	})
}

func (r *sessionRepository) Delete(_ context.Context, id string) error {
	if r.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		b, err := r.sessions(tx)
		if err != nil {
			return err
		}
		return b.Delete([]byte(id))
	})
}

// PurgeExpired removes sessions that expired at or before now.
func (r *sessionRepository) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	if r.db == nil {
		return 0, bbolt.ErrDatabaseNotOpen
	}
	var purged int
	err := r.db.Update(func(tx *bbolt.Tx) error {
		b, err := r.sessions(tx)
		if err != nil {
			return err
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var s domain.Session
			if err := json.Unmarshal(v, &s); err != nil {
				// unreadable entries can never authenticate anyone
				if err := c.Delete(); err != nil {
					return err
				}
				purged++
				continue
			}
			if s.IsExpired(now) {
				if err := c.Delete(); err != nil {
					return err
				}
				purged++
			}
		}
		return nil
	})
	return purged, err
}

func (r *sessionRepository) Ping(context.Context) error {
	if r.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	return r.db.View(func(tx *bbolt.Tx) error {
		_, err := r.sessions(tx)
		return err
	})
}
