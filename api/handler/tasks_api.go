package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/memo/api/transport"
	"github.com/fastygo/memo/domain"
	"github.com/fastygo/memo/pkg/httpcontext"
	"github.com/fastygo/memo/usecase"
	taskUC "github.com/fastygo/memo/usecase/task"
)

// TaskAPIHandler accepts task operation envelopes as JSON.
type TaskAPIHandler struct {
	baseHandler
	dispatcher *usecase.Dispatcher
}

func NewTaskAPIHandler(dispatcher *usecase.Dispatcher, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskAPIHandler {
	return &TaskAPIHandler{
		baseHandler: newBaseHandler(adapter, logger),
		dispatcher:  dispatcher,
	}
}

// @Summary Run a task operation
// @Tags tasks
// @Router /api/tasks [post]
func (h *TaskAPIHandler) Execute(ctx *fasthttp.RequestCtx) {
	session := httpcontext.SessionFromRequest(ctx)
	if session == nil {
		h.respondError(ctx, domain.ErrUnauthorized)
		return
	}

	op, err := transport.DecodeTaskOperation(ctx.PostBody())
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if !op.Operation.Valid() {
		h.respondError(ctx, op.Validate())
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.dispatcher.Execute(stdCtx, string(op.Operation), taskUC.OperationRequest{
		Owner:     session.Identity(),
		Operation: op,
	})
	if err != nil {
		h.log(stdCtx).Debug("task operation failed", zap.String("operation", string(op.Operation)), zap.Error(err))
		h.respondError(ctx, err)
		return
	}

	status := http.StatusOK
	if op.Operation == domain.OperationCreate {
		status = http.StatusCreated
	}
	h.respondSuccess(ctx, status, result)
}
