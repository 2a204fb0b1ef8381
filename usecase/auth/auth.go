package auth

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/memo/domain"
	"github.com/fastygo/memo/pkg/logger"
	"github.com/fastygo/memo/pkg/token"
	"github.com/fastygo/memo/repository"
)

const (
	MinUsernameLength = 2
	MinPasswordLength = 6
)

// LoginForm is the submitted login form. RememberMe is recorded on the
// session but does not change its lifetime.
type LoginForm struct {
	Username   string
	Password   string
	RememberMe bool
}

type RegisterForm struct {
	Username        string
	Password        string
	PasswordConfirm string
}

func (f LoginForm) Validate() error {
	var vErr domain.ValidationError
	validateCredentials(&vErr, f.Username, f.Password)
	return vErr.OrNil()
}

func (f RegisterForm) Validate() error {
	var vErr domain.ValidationError
	validateCredentials(&vErr, f.Username, f.Password)
	if f.PasswordConfirm != f.Password {
		vErr.Add("password_confirm", "passwords do not match")
	}
	return vErr.OrNil()
}

func validateCredentials(vErr *domain.ValidationError, username, password string) {
	if utf8.RuneCountInString(username) < MinUsernameLength {
		vErr.Add("username", "username must be at least 2 characters")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		vErr.Add("password", "password must be at least 6 characters")
	}
}

type UseCase struct {
	gateway  repository.AuthGateway
	sessions repository.SessionRepository
	signer   *token.Signer
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func New(gateway repository.AuthGateway, sessions repository.SessionRepository, signer *token.Signer, ttl time.Duration, logger *zap.Logger) *UseCase {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		gateway:  gateway,
		sessions: sessions,
		signer:   signer,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// TTL is how long a new session and its cookie live.
func (uc *UseCase) TTL() time.Duration {
	return uc.ttl
}

// Login checks the form, authenticates against the auth service and opens
// a session. The returned token is the cookie value.
func (uc *UseCase) Login(ctx context.Context, form LoginForm) (*domain.Session, string, error) {
	if err := form.Validate(); err != nil {
		return nil, "", err
	}

	result, err := uc.gateway.Login(ctx, domain.Credentials{Username: form.Username, Password: form.Password})
	if err != nil {
		return nil, "", err
	}

	now := uc.now()
	session := &domain.Session{
		ID:            uuid.NewString(),
		UserID:        result.Identity.ID,
		Username:      result.Identity.Username,
		UpstreamToken: result.Token,
		Remember:      form.RememberMe,
		CreatedAt:     now,
		ExpiresAt:     now.Add(uc.ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, "", domain.WrapError(domain.ErrCodeInternal, "failed to store session", err)
	}

	raw, err := uc.signer.Sign(session.ID, session.UserID, session.Username, session.ExpiresAt)
	if err != nil {
		_ = uc.sessions.Delete(ctx, session.ID)
		return nil, "", domain.WrapError(domain.ErrCodeInternal, "failed to sign session", err)
	}

	logger.WithRequestID(ctx, uc.logger).Info("session opened",
		zap.Int64("user_id", session.UserID),
		zap.String("session_id", session.ID))
	return session, raw, nil
}

// Register creates the account upstream. The user still has to log in.
func (uc *UseCase) Register(ctx context.Context, form RegisterForm) error {
	if err := form.Validate(); err != nil {
		return err
	}
	return uc.gateway.Register(ctx, domain.Credentials{Username: form.Username, Password: form.Password})
}

// Logout revokes the session behind raw. An unusable token means there is
// nothing to revoke.
func (uc *UseCase) Logout(ctx context.Context, raw string) error {
	claims, err := uc.signer.Verify(raw)
	if err != nil {
		return nil
	}
	if err := uc.sessions.Delete(ctx, claims.SessionID); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "failed to revoke session", err)
	}
	logger.WithRequestID(ctx, uc.logger).Info("session closed", zap.String("session_id", claims.SessionID))
	return nil
}

// Authenticate is the single check deciding whether a cookie value is
// logged in: a valid signature plus a live session for the same user.
func (uc *UseCase) Authenticate(ctx context.Context, raw string) (*domain.Session, error) {
	claims, err := uc.signer.Verify(raw)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	session, err := uc.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if session.UserID != claims.UserID || session.IsExpired(uc.now()) {
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

// IsAuthenticated reports whether raw authenticates, treating store failures as no.
func (uc *UseCase) IsAuthenticated(ctx context.Context, raw string) bool {
	session, err := uc.Authenticate(ctx, raw)
	if err != nil && !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
		uc.logger.Warn("session lookup failed", zap.Error(err))
	}
	return session != nil
}
