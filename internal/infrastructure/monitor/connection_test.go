package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRefreshRecordsEachCheck(t *testing.T) {
	mon := New(map[string]Check{
		"sessions": func(context.Context) error { return nil },
		"broken":   func(context.Context) error { return errors.New("down") },
		"skipped":  nil,
	}, time.Minute, nil)

	assert.False(t, mon.IsOnline(), "nothing checked yet")

	mon.Refresh()
	status := mon.GetStatus()
	assert.Equal(t, map[string]bool{"sessions": true, "broken": false}, status.Checks)
	assert.False(t, status.LastCheck.IsZero())
	assert.False(t, mon.IsOnline())
}

func TestStartStop(t *testing.T) {
	mon := New(map[string]Check{
		"sessions": func(context.Context) error { return nil },
	}, 5*time.Millisecond, nil)

	mon.Start()
	assert.Eventually(t, mon.IsOnline, time.Second, 5*time.Millisecond)
	mon.Stop()
	mon.Stop()
}
