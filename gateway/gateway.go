// Package gateway holds the plumbing shared by the upstream service clients.
package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valyala/fasthttp"
)

// DefaultTimeout bounds calls whose context carries no deadline.
const DefaultTimeout = 30 * time.Second

// Doer sends a request. *fasthttp.Client satisfies it.
type Doer interface {
	DoDeadline(req *fasthttp.Request, resp *fasthttp.Response, deadline time.Time) error
}

// NewClient builds the fasthttp client used for upstream calls.
func NewClient(name string, maxConnsPerHost int) *fasthttp.Client {
	if maxConnsPerHost <= 0 {
		maxConnsPerHost = fasthttp.DefaultMaxConnsPerHost
	}
	return &fasthttp.Client{
		Name:                name,
		MaxConnsPerHost:     maxConnsPerHost,
		MaxIdleConnDuration: 30 * time.Second,
	}
}

// Do sends req honoring the deadline of ctx.
func Do(ctx context.Context, doer Doer, req *fasthttp.Request, resp *fasthttp.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultTimeout)
	}
	return doer.DoDeadline(req, resp, deadline)
}

// JSONRequest prepares req as a JSON call. A nil body sends no payload.
func JSONRequest(req *fasthttp.Request, method, url string, body interface{}) error {
	req.Header.SetMethod(method)
	req.SetRequestURI(url)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if body == nil {
		return nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req.Header.SetContentType("application/json")
	req.SetBodyRaw(payload)
	return nil
}

// IsSuccess reports a 2xx status.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
