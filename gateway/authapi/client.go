// Package authapi talks to the upstream auth service.
package authapi

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/memo/domain"
	"github.com/fastygo/memo/gateway"
	"github.com/fastygo/memo/repository"
)

const (
	fallbackLoginMessage    = "check your username and password"
	fallbackRegisterMessage = "registration failed, please try again later"
)

type Client struct {
	base   string
	doer   gateway.Doer
	logger *zap.Logger
}

var _ repository.AuthGateway = (*Client)(nil)

func New(base string, doer gateway.Doer, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base:   strings.TrimRight(base, "/"),
		doer:   doer,
		logger: logger,
	}
}

// loginResponse accepts both the bare user record and the {user, token}
// shape. A password field, if echoed back, is not decoded.
type loginResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	User     *struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
	Token string `json:"token"`
}

type apiError struct {
	Code    json.RawMessage `json:"code"`
	Message string          `json:"message"`
}

type registerRequest struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*repository.LoginResult, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	if err := gateway.JSONRequest(req, fasthttp.MethodPost, c.base+"/login", creds); err != nil {
		return nil, err
	}
	if err := gateway.Do(ctx, c.doer, req, resp); err != nil {
		return nil, domain.WrapError(domain.ErrCodeUpstream, "auth service unavailable", err)
	}

	if !gateway.IsSuccess(resp.StatusCode()) {
		c.logger.Debug("login rejected", zap.Int("status", resp.StatusCode()))
		return nil, decodeAuthError(resp, fallbackLoginMessage)
	}

	var body loginResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, domain.WrapError(domain.ErrCodeUpstream, "malformed login response", err)
	}

	result := &repository.LoginResult{
		Identity: domain.Identity{ID: body.ID, Username: body.Username},
		Token:    body.Token,
	}
	if body.User != nil {
		result.Identity = domain.Identity{ID: body.User.ID, Username: body.User.Username}
	}
	// Tasks are keyed by user id, so a login without one is unusable.
	if result.Identity.ID <= 0 {
		return nil, domain.NewError(domain.ErrCodeUpstream, "malformed login response: missing user id")
	}
	if result.Identity.Username == "" {
		result.Identity.Username = creds.Username
	}
	return result, nil
}

// Register creates an account. It does not log the user in.
func (c *Client) Register(ctx context.Context, creds domain.Credentials) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	payload := registerRequest{Username: creds.Username, Password: creds.Password}
	if err := gateway.JSONRequest(req, fasthttp.MethodPost, c.base+"/register", payload); err != nil {
		return err
	}
	if err := gateway.Do(ctx, c.doer, req, resp); err != nil {
		return domain.WrapError(domain.ErrCodeUpstream, "auth service unavailable", err)
	}

	if !gateway.IsSuccess(resp.StatusCode()) {
		c.logger.Debug("registration rejected", zap.Int("status", resp.StatusCode()))
		return decodeAuthError(resp, fallbackRegisterMessage)
	}
	return nil
}

func decodeAuthError(resp *fasthttp.Response, fallback string) *domain.AuthError {
	authErr := &domain.AuthError{Status: resp.StatusCode(), Message: fallback}
	var body apiError
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return authErr
	}
	if msg := strings.TrimSpace(body.Message); msg != "" {
		authErr.Message = msg
	}
	if len(body.Code) > 0 {
		authErr.Code = strings.Trim(string(body.Code), `"`)
	}
	return authErr
}
