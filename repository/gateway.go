package repository

import (
	"context"

	"github.com/fastygo/memo/domain"
)

// TaskGateway is the remote task service as seen by the use cases.
type TaskGateway interface {
	List(ctx context.Context, userID int64) ([]domain.Task, error)
	Create(ctx context.Context, task domain.Task) (domain.Task, error)
	Update(ctx context.Context, task domain.Task) (domain.Task, error)
	Delete(ctx context.Context, taskID int64) error
}

// AuthGateway is the remote auth service as seen by the use cases.
type AuthGateway interface {
	Login(ctx context.Context, creds domain.Credentials) (*LoginResult, error)
	Register(ctx context.Context, creds domain.Credentials) error
}

// LoginResult is what a successful login yields. Token is empty when the
// auth service only returns the user record.
type LoginResult struct {
	Identity domain.Identity
	Token    string
}
