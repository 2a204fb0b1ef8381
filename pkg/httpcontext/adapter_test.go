package httpcontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/memo/domain"
	appLogger "github.com/fastygo/memo/pkg/logger"
)

func TestAttachCarriesRequestMetadata(t *testing.T) {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.Set("X-Request-ID", "abc")
	ctx.Request.Header.SetUserAgent("test-agent")
	session := &domain.Session{ID: "s1", UserID: 1}
	WithSession(&ctx, session)

	stdCtx, cancel := NewAdapter(time.Second).Attach(&ctx)
	defer cancel()

	deadline, ok := stdCtx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 200*time.Millisecond)
	assert.Equal(t, "abc", appLogger.RequestID(stdCtx))
	assert.Equal(t, "test-agent", stdCtx.Value(KeyUserAgent))
	assert.Same(t, session, SessionFromContext(stdCtx))
	assert.Equal(t, "abc", string(ctx.Response.Header.Peek("X-Request-ID")))
}

func TestRequestIDGeneratedOnce(t *testing.T) {
	var ctx fasthttp.RequestCtx

	first := RequestID(&ctx)
	second := RequestID(&ctx)

	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestSessionFromRequestEmpty(t *testing.T) {
	var ctx fasthttp.RequestCtx
	assert.Nil(t, SessionFromRequest(&ctx))
	assert.Nil(t, SessionFromContext(nil))
}
