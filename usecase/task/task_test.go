package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/memo/domain"
	"github.com/fastygo/memo/gateway/gatewaytest"
	"github.com/fastygo/memo/gateway/taskapi"
)

var owner = domain.Identity{ID: 1, Username: "alice"}

func newUseCase(svc *gatewaytest.TaskService) (*UseCase, *gatewaytest.Server) {
	srv := gatewaytest.New(svc.Handle)
	return New(taskapi.New("http://tasks.local/tasks", taskapi.ModeEnvelope, srv, nil), nil), srv
}

func TestCreateThenReloadContainsAssignedID(t *testing.T) {
	svc := gatewaytest.NewTaskService()
	svc.SetNextID(7)
	uc, _ := newUseCase(svc)
	ctx := context.Background()

	created, err := uc.CreateTask(ctx, owner, Form{Title: "Buy milk", DueDate: "2025-01-01T00:00:00.000Z"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)

	tasks, err := uc.ListTasks(ctx, owner)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, domain.Task{ID: 7, UserID: 1, Title: "Buy milk", DueDate: "2025-01-01T00:00:00.000Z"}, tasks[0])
}

func TestFormValidationNeverReachesNetwork(t *testing.T) {
	uc, srv := newUseCase(gatewaytest.NewTaskService())

	_, err := uc.CreateTask(context.Background(), owner, Form{Title: "   ", DueDate: ""})
	vErr, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "title is required", vErr.Fields["title"])
	assert.Equal(t, "due date is required", vErr.Fields["dueDate"])

	_, err = uc.UpdateTask(context.Background(), owner, 3, Form{Title: "x", DueDate: "tomorrow"})
	vErr, ok = domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "due date must be a valid date", vErr.Fields["dueDate"])

	assert.Empty(t, srv.Requests())
}

func TestParseDueDate(t *testing.T) {
	cases := map[string]string{
		"2025-01-01T00:00:00.000Z":  "2025-01-01T00:00:00.000Z",
		"2025-01-01":                "2025-01-01T00:00:00.000Z",
		"2025-03-04T10:30":          "2025-03-04T10:30:00.000Z",
		"2025-01-01T08:00:00+08:00": "2025-01-01T00:00:00.000Z",
	}
	for in, want := range cases {
		got, err := ParseDueDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	svc := gatewaytest.NewTaskService(domain.Task{ID: 4, UserID: 1, Title: "a"})
	uc, srv := newUseCase(svc)
	ctx := context.Background()

	err := uc.DeleteTask(ctx, 4, false)
	assert.ErrorIs(t, err, ErrDeleteNotConfirmed)
	assert.Empty(t, srv.Requests())

	require.NoError(t, uc.DeleteTask(ctx, 4, true))
	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	var op domain.TaskOperation
	require.NoError(t, reqs[0].Decode(&op))
	assert.Equal(t, domain.TaskOperation{Operation: domain.OperationDelete, TaskID: 4}, op)
}

func TestToggleEchoesEveryOtherField(t *testing.T) {
	original := domain.Task{ID: 2, UserID: 1, Title: "Walk", Description: "dog", DueDate: "2025-02-01T09:00:00.000Z"}
	uc, srv := newUseCase(gatewaytest.NewTaskService(original))

	updated, err := uc.ToggleTask(context.Background(), owner, 2)
	require.NoError(t, err)
	assert.True(t, updated.Completed)

	reqs := srv.Requests()
	require.Len(t, reqs, 2, "one READ to find the task and one UPDATE")
	var op domain.TaskOperation
	require.NoError(t, reqs[1].Decode(&op))
	assert.Equal(t, domain.OperationUpdate, op.Operation)
	want := original
	want.Completed = true
	assert.Equal(t, want, *op.Task)
}

func TestUpdateKeepsIDAndForcesOwner(t *testing.T) {
	svc := gatewaytest.NewTaskService(domain.Task{ID: 5, UserID: 1, Title: "old", DueDate: "2025-01-01T00:00:00.000Z"})
	uc, _ := newUseCase(svc)

	updated, err := uc.UpdateTask(context.Background(), owner, 5, Form{Title: "new", DueDate: "2025-01-02"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), updated.ID)
	assert.Equal(t, int64(1), updated.UserID)
	assert.Equal(t, "new", updated.Title)
}

func TestFormKeepsOriginalDueDate(t *testing.T) {
	tests := []struct {
		name string
		form Form
		want string
	}{
		{"untouched", Form{Title: "a", DueDate: "2024-12-31", OriginalDueDate: "2024-12-31T16:00:00.000Z"}, "2024-12-31T16:00:00.000Z"},
		{"untouched full timestamp", Form{Title: "a", DueDate: "2024-12-31T16:00:00.000Z", OriginalDueDate: "2024-12-31T16:00:00.000Z"}, "2024-12-31T16:00:00.000Z"},
		{"changed", Form{Title: "a", DueDate: "2025-01-02", OriginalDueDate: "2024-12-31T16:00:00.000Z"}, "2025-01-02T00:00:00.000Z"},
		{"new task", Form{Title: "a", DueDate: "2025-01-02"}, "2025-01-02T00:00:00.000Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := tt.form.Task(owner)
			require.NoError(t, err)
			assert.Equal(t, tt.want, task.DueDate)
		})
	}
}

func TestInputDate(t *testing.T) {
	assert.Equal(t, "2025-01-01", InputDate("2025-01-01T05:00:00.000Z"))
	assert.Equal(t, "2024-12-31", InputDate("2025-01-01T03:00:00+05:00"))
	assert.Equal(t, "2025-01-01", InputDate("2025-01-01"))
	assert.Equal(t, "soon", InputDate("soon"))
}

func TestUpstreamFailureIsGeneric(t *testing.T) {
	svc := gatewaytest.NewTaskService()
	svc.Fail = true
	uc, _ := newUseCase(svc)

	_, err := uc.ListTasks(context.Background(), owner)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUpstream))

	_, err = uc.ToggleTask(context.Background(), owner, 1)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUpstream))
}

func TestGetTaskNotFound(t *testing.T) {
	uc, _ := newUseCase(gatewaytest.NewTaskService())

	_, err := uc.GetTask(context.Background(), owner, 99)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}
