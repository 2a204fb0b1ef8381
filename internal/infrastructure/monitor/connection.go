package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// Monitor runs registered checks on an interval and caches the result.
type Monitor struct {
	checks   map[string]Check
	timeout  time.Duration
	interval time.Duration
	logger   *zap.Logger

	status   Status
	mu       sync.RWMutex
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func New(checks map[string]Check, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	copied := make(map[string]Check, len(checks))
	for name, check := range checks {
		if check != nil {
			copied[name] = check
		}
	}
	return &Monitor{
		checks:   copied,
		timeout:  3 * time.Second,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

// Stop halts the loop and waits for it to exit. Safe to call more than once,
// but only after Start.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	<-m.done
}

func (m *Monitor) IsOnline() bool {
	return m.GetStatus().Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	checks := make(map[string]bool, len(m.status.Checks))
	for k, v := range m.status.Checks {
		checks[k] = v
	}
	return Status{Checks: checks, LastCheck: m.status.LastCheck}
}

func (m *Monitor) loop() {
	defer close(m.done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every check once.
func (m *Monitor) Refresh() {
	results := make(map[string]bool, len(m.checks))
	for name, check := range m.checks {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		err := check(ctx)
		cancel()
		if err != nil {
			m.logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
		}
		results[name] = err == nil
	}

	m.mu.Lock()
	m.status = Status{Checks: results, LastCheck: time.Now()}
	m.mu.Unlock()
}
