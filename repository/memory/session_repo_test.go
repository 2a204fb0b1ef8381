package memory

import (
	"testing"
	"time"

	"github.com/fastygo/memo/repository"
	"github.com/fastygo/memo/repository/repotest"
)

func TestSessionRepository(t *testing.T) {
	repotest.RunSessionRepository(t, func(t *testing.T) repository.SessionRepository {
		return NewSessionRepository(time.Hour)
	})
}
