// Package taskapi talks to the upstream task service, either through its
// single operation-tagged endpoint or through resource routes.
package taskapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/memo/domain"
	"github.com/fastygo/memo/gateway"
	"github.com/fastygo/memo/pkg/httpcontext"
	"github.com/fastygo/memo/repository"
)

// Mode selects the wire format.
type Mode string

const (
	ModeEnvelope Mode = "envelope"
	ModeREST     Mode = "rest"
)

type Client struct {
	base   string
	mode   Mode
	doer   gateway.Doer
	logger *zap.Logger
}

var _ repository.TaskGateway = (*Client)(nil)

func New(base string, mode Mode, doer gateway.Doer, logger *zap.Logger) *Client {
	if mode != ModeREST {
		mode = ModeEnvelope
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base:   strings.TrimRight(base, "/"),
		mode:   mode,
		doer:   doer,
		logger: logger,
	}
}

func (c *Client) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	op := domain.TaskOperation{Operation: domain.OperationCreate, Task: &task}
	var created domain.Task
	found, err := c.call(ctx, op, fasthttp.MethodPost, c.base, &task, &created, "failed to create task")
	if err != nil {
		return domain.Task{}, err
	}
	if !found {
		return task, nil
	}
	return created, nil
}

func (c *Client) List(ctx context.Context, userID int64) ([]domain.Task, error) {
	op := domain.TaskOperation{Operation: domain.OperationRead, UserID: userID}
	url := c.base + "?userId=" + strconv.FormatInt(userID, 10)
	var tasks []domain.Task
	if _, err := c.call(ctx, op, fasthttp.MethodGet, url, nil, &tasks, "failed to fetch tasks"); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

func (c *Client) Update(ctx context.Context, task domain.Task) (domain.Task, error) {
	op := domain.TaskOperation{Operation: domain.OperationUpdate, Task: &task}
	url := c.base + "/" + strconv.FormatInt(task.ID, 10)
	var updated domain.Task
	found, err := c.call(ctx, op, fasthttp.MethodPut, url, &task, &updated, "failed to update task")
	if err != nil {
		return domain.Task{}, err
	}
	if !found {
		return task, nil
	}
	return updated, nil
}

func (c *Client) Delete(ctx context.Context, taskID int64) error {
	op := domain.TaskOperation{Operation: domain.OperationDelete, TaskID: taskID}
	url := c.base + "/" + strconv.FormatInt(taskID, 10)
	_, err := c.call(ctx, op, fasthttp.MethodDelete, url, nil, nil, "failed to delete task")
	return err
}

// call sends one operation. In envelope mode everything is a POST of op to
// the base URL; in REST mode method, url and body are used instead. It
// reports whether a response body was decoded into out.
func (c *Client) call(
	ctx context.Context,
	op domain.TaskOperation,
	method, url string,
	body interface{},
	out interface{},
	failure string,
) (bool, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	var err error
	if c.mode == ModeEnvelope {
		err = gateway.JSONRequest(req, fasthttp.MethodPost, c.base, op)
	} else {
		err = gateway.JSONRequest(req, method, url, body)
	}
	if err != nil {
		return false, err
	}
	if session := httpcontext.SessionFromContext(ctx); session != nil && session.UpstreamToken != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+session.UpstreamToken)
	}

	if err := gateway.Do(ctx, c.doer, req, resp); err != nil {
		c.logger.Warn("task service call failed", zap.String("operation", string(op.Operation)), zap.Error(err))
		return false, domain.WrapError(domain.ErrCodeUpstream, failure, err)
	}
	if status := resp.StatusCode(); !gateway.IsSuccess(status) {
		c.logger.Warn("task service rejected call", zap.String("operation", string(op.Operation)), zap.Int("status", status))
		return false, domain.WrapError(domain.ErrCodeUpstream, failure, fmt.Errorf("unexpected status %d", status))
	}

	if out == nil || len(resp.Body()) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return false, domain.WrapError(domain.ErrCodeUpstream, failure, err)
	}
	return true, nil
}
