package taskapi

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/memo/domain"
	"github.com/fastygo/memo/gateway/gatewaytest"
	"github.com/fastygo/memo/pkg/httpcontext"
)

var milk = domain.Task{UserID: 1, Title: "Buy milk", Description: "", DueDate: "2025-01-01T00:00:00.000Z"}

func TestEnvelopeCreate(t *testing.T) {
	srv := gatewaytest.New(func(ctx *fasthttp.RequestCtx) {
		var op domain.TaskOperation
		_ = jsonBody(ctx, &op)
		created := *op.Task
		created.ID = 7
		gatewaytest.JSON(ctx, http.StatusOK, created)
	})

	created, err := New("http://tasks.local/tasks", ModeEnvelope, srv, nil).Create(context.Background(), milk)
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/tasks", reqs[0].Path)
	assert.JSONEq(t, `{"operation":"CREATE","task":{"userId":1,"title":"Buy milk","description":"","dueDate":"2025-01-01T00:00:00.000Z","completed":false}}`, string(reqs[0].Body))
}

func TestEnvelopeReadDeleteUpdate(t *testing.T) {
	srv := gatewaytest.New(func(ctx *fasthttp.RequestCtx) {
		var op domain.TaskOperation
		_ = jsonBody(ctx, &op)
		switch op.Operation {
		case domain.OperationRead:
			gatewaytest.JSON(ctx, http.StatusOK, []domain.Task{{ID: 1, UserID: op.UserID, Title: "a"}})
		case domain.OperationUpdate:
			gatewaytest.JSON(ctx, http.StatusOK, op.Task)
		case domain.OperationDelete:
			ctx.SetStatusCode(http.StatusOK)
		}
	})
	client := New("http://tasks.local/tasks", ModeEnvelope, srv, nil)
	ctx := context.Background()

	tasks, err := client.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	updated, err := client.Update(ctx, domain.Task{ID: 1, UserID: 1, Title: "b", Completed: true})
	require.NoError(t, err)
	assert.True(t, updated.Completed)

	require.NoError(t, client.Delete(ctx, 1))

	reqs := srv.Requests()
	require.Len(t, reqs, 3)
	assert.JSONEq(t, `{"operation":"READ","userId":1}`, string(reqs[0].Body))
	assert.JSONEq(t, `{"operation":"DELETE","taskId":1}`, string(reqs[2].Body))
	for _, r := range reqs {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tasks", r.Path)
	}
}

func TestListNullBody(t *testing.T) {
	srv := gatewaytest.New(func(ctx *fasthttp.RequestCtx) {
		gatewaytest.JSON(ctx, http.StatusOK, nil)
	})

	tasks, err := New("http://tasks.local/tasks", ModeEnvelope, srv, nil).List(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestRESTMode(t *testing.T) {
	srv := gatewaytest.New(func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Method()) {
		case http.MethodGet:
			gatewaytest.JSON(ctx, http.StatusOK, []domain.Task{})
		case http.MethodPost:
			gatewaytest.JSON(ctx, http.StatusCreated, domain.Task{ID: 3, Title: "x"})
		default:
			ctx.SetStatusCode(http.StatusNoContent)
		}
	})
	client := New("http://tasks.local/tasks/", ModeREST, srv, nil)
	ctx := context.Background()

	_, err := client.List(ctx, 4)
	require.NoError(t, err)
	created, err := client.Create(ctx, milk)
	require.NoError(t, err)
	updated, err := client.Update(ctx, domain.Task{ID: 3, Title: "y"})
	require.NoError(t, err)
	require.NoError(t, client.Delete(ctx, 3))

	assert.Equal(t, int64(3), created.ID)
	assert.Equal(t, "y", updated.Title, "empty update response echoes the request")

	reqs := srv.Requests()
	require.Len(t, reqs, 4)
	assert.Equal(t, "GET /tasks userId=4", reqs[0].Method+" "+reqs[0].Path+" "+reqs[0].Query)
	assert.Equal(t, "POST /tasks", reqs[1].Method+" "+reqs[1].Path)
	assert.Equal(t, "PUT /tasks/3", reqs[2].Method+" "+reqs[2].Path)
	assert.Equal(t, "DELETE /tasks/3", reqs[3].Method+" "+reqs[3].Path)
	assert.Empty(t, reqs[3].Body)
}

func TestNonSuccessIsGenericError(t *testing.T) {
	srv := gatewaytest.New(func(ctx *fasthttp.RequestCtx) {
		gatewaytest.JSON(ctx, http.StatusInternalServerError, map[string]string{"message": "db down"})
	})

	_, err := New("http://tasks.local/tasks", ModeEnvelope, srv, nil).Create(context.Background(), milk)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUpstream))
	assert.Contains(t, err.Error(), "failed to create task")
	assert.NotContains(t, err.Error(), "db down")
}

func TestTransportErrorIsGenericError(t *testing.T) {
	srv := gatewaytest.New(nil)
	srv.Err = errors.New("timeout")

	err := New("http://tasks.local/tasks", ModeEnvelope, srv, nil).Delete(context.Background(), 1)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUpstream))
}

func jsonBody(ctx *fasthttp.RequestCtx, v interface{}) error {
	return gatewaytest.Request{Body: ctx.PostBody()}.Decode(v)
}

func TestForwardsUpstreamToken(t *testing.T) {
	srv := gatewaytest.New(func(ctx *fasthttp.RequestCtx) {
		gatewaytest.JSON(ctx, http.StatusOK, []domain.Task{})
	})
	ctx := context.WithValue(context.Background(), httpcontext.KeySession, &domain.Session{UserID: 1, UpstreamToken: "tok"})

	_, err := New("http://tasks.local/tasks", ModeEnvelope, srv, nil).List(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", srv.Requests()[0].Authorization)
}
