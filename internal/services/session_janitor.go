package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/memo/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// JanitorConfig controls how frequently expired sessions are purged.
type JanitorConfig struct {
	Interval time.Duration
}

// SessionJanitor periodically removes expired sessions from stores that do
// not expire entries on their own.
type SessionJanitor struct {
	sessions repository.SessionRepository
	monitor  ConnectionHealth
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      JanitorConfig
	now      func() time.Time
}

func NewSessionJanitor(
	sessions repository.SessionRepository,
	monitor ConnectionHealth,
	logger *zap.Logger,
	cfg JanitorConfig,
) *SessionJanitor {
	if cfg.Interval < time.Second {
		cfg.Interval = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	j := &SessionJanitor{
		sessions: sessions,
		monitor:  monitor,
		logger:   logger,
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds()),
		now:      time.Now,
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = j.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.Error("session purge failed", zap.Error(err))
		}
	})

	return j
}

// Start launches the cron scheduler.
func (j *SessionJanitor) Start() {
	if j == nil || j.cron == nil {
		return
	}
	j.cron.Start()
	j.logger.Info("session janitor started", zap.Duration("interval", j.cfg.Interval))
}

// Stop waits for a running purge to finish or ctx to expire.
func (j *SessionJanitor) Stop(ctx context.Context) {
	if j == nil || j.cron == nil {
		return
	}
	stopCtx := j.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	j.logger.Info("session janitor stopped")
}

// RunOnce purges expired sessions synchronously and reports how many went.
func (j *SessionJanitor) RunOnce(ctx context.Context) (int, error) {
	if j == nil || j.sessions == nil {
		return 0, nil
	}
	if j.monitor != nil && !j.monitor.IsOnline() {
		j.logger.Debug("skipping session purge (offline)")
		return 0, nil
	}

	removed, err := j.sessions.PurgeExpired(ctx, j.now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		j.logger.Info("expired sessions purged", zap.Int("count", removed))
	}
	return removed, nil
}
