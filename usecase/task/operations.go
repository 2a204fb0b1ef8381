package task

import (
	"context"
	"fmt"

	"github.com/fastygo/memo/domain"
	"github.com/fastygo/memo/usecase"
)

// OperationRequest is an operation envelope submitted on behalf of Owner.
// Owner always wins over any userId carried in the envelope.
type OperationRequest struct {
	Owner     domain.Identity
	Operation domain.TaskOperation
}

// RegisterOperations wires the four envelope operations into d.
func (uc *UseCase) RegisterOperations(d *usecase.Dispatcher) {
	d.RegisterQuery(string(domain.OperationRead), func(ctx context.Context, params interface{}) (interface{}, error) {
		req, err := operationRequest(params)
		if err != nil {
			return nil, err
		}
		return uc.ListTasks(ctx, req.Owner)
	})

	d.RegisterCommand(string(domain.OperationCreate), func(ctx context.Context, payload interface{}) (interface{}, error) {
		req, err := operationRequest(payload)
		if err != nil {
			return nil, err
		}
		return uc.CreateTask(ctx, req.Owner, FormFor(*req.Operation.Task))
	})

	d.RegisterCommand(string(domain.OperationUpdate), func(ctx context.Context, payload interface{}) (interface{}, error) {
		req, err := operationRequest(payload)
		if err != nil {
			return nil, err
		}
		task := req.Operation.Task
		return uc.UpdateTask(ctx, req.Owner, task.ID, FormFor(*task))
	})

	d.RegisterCommand(string(domain.OperationDelete), func(ctx context.Context, payload interface{}) (interface{}, error) {
		req, err := operationRequest(payload)
		if err != nil {
			return nil, err
		}
		// the API caller confirms by sending the request
		return nil, uc.DeleteTask(ctx, req.Operation.TaskID, true)
	})
}

// operationRequest validates the envelope after forcing ownership onto it.
func operationRequest(v interface{}) (OperationRequest, error) {
	req, ok := v.(OperationRequest)
	if !ok {
		return OperationRequest{}, domain.WrapError(domain.ErrCodeInternal, "unexpected payload", fmt.Errorf("%T", v))
	}
	if req.Owner.ID == 0 {
		return OperationRequest{}, domain.ErrUnauthorized
	}
	if req.Operation.Operation == domain.OperationRead {
		req.Operation.UserID = req.Owner.ID
	}
	if req.Operation.Task != nil {
		task := *req.Operation.Task
		task.UserID = req.Owner.ID
		req.Operation.Task = &task
	}
	if err := req.Operation.Validate(); err != nil {
		return OperationRequest{}, err
	}
	return req, nil
}
