// Package gatewaytest runs a fasthttp handler in-process as an upstream service.
package gatewaytest

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
)

// Request is a recorded upstream call.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	Body          []byte
}

// Decode unmarshals the recorded body into v.
func (r Request) Decode(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

// Server satisfies gateway.Doer by calling Handler directly.
type Server struct {
	Handler fasthttp.RequestHandler
	// Err, when set, is returned instead of calling Handler.
	Err error

	mu       sync.Mutex
	requests []Request
}

func New(handler fasthttp.RequestHandler) *Server {
	return &Server{Handler: handler}
}

func (s *Server) DoDeadline(req *fasthttp.Request, resp *fasthttp.Response, _ time.Time) error {
	var ctx fasthttp.RequestCtx
	req.CopyTo(&ctx.Request)

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:        string(ctx.Method()),
		Path:          string(ctx.Path()),
		Query:         string(ctx.QueryArgs().QueryString()),
		Authorization: string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization)),
		Body:          append([]byte(nil), ctx.PostBody()...),
	})
	s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}
	if s.Handler != nil {
		s.Handler(&ctx)
	}
	ctx.Response.CopyTo(resp)
	return nil
}

// Requests returns a copy of every call received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// JSON writes status and v as the response.
func JSON(ctx *fasthttp.RequestCtx, status int, v interface{}) {
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	body, _ := json.Marshal(v)
	ctx.SetBody(body)
}
