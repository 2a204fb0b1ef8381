package domain

import "fmt"

// Task is a to-do item owned by a single user. Field names follow the task
// service's wire format. ID is zero until the service assigns one.
type Task struct {
	ID          int64  `json:"id,omitempty"`
	UserID      int64  `json:"userId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Completed   bool   `json:"completed"`
}

// Toggled returns a copy with only the completion flag flipped.
func (t Task) Toggled() Task {
	t.Completed = !t.Completed
	return t
}

// Operation selects the behavior of the task service's single endpoint.
type Operation string

const (
	OperationCreate Operation = "CREATE"
	OperationRead   Operation = "READ"
	OperationUpdate Operation = "UPDATE"
	OperationDelete Operation = "DELETE"
)

func (o Operation) Valid() bool {
	switch o {
	case OperationCreate, OperationRead, OperationUpdate, OperationDelete:
		return true
	}
	return false
}

// TaskOperation is the request envelope understood by the task service.
type TaskOperation struct {
	Operation Operation `json:"operation"`
	Task      *Task     `json:"task,omitempty"`
	UserID    int64     `json:"userId,omitempty"`
	TaskID    int64     `json:"taskId,omitempty"`
}

// Validate checks that the envelope carries what its operation needs.
func (op TaskOperation) Validate() error {
	switch op.Operation {
	case OperationCreate:
		if op.Task == nil {
			return NewError(ErrCodeInvalid, "CREATE requires a task")
		}
	case OperationUpdate:
		if op.Task == nil || op.Task.ID == 0 {
			return NewError(ErrCodeInvalid, "UPDATE requires a task with an id")
		}
	case OperationRead:
		if op.UserID == 0 {
			return NewError(ErrCodeInvalid, "READ requires a userId")
		}
	case OperationDelete:
		if op.TaskID == 0 {
			return NewError(ErrCodeInvalid, "DELETE requires a taskId")
		}
	default:
		return NewError(ErrCodeInvalid, fmt.Sprintf("unknown operation %q", op.Operation))
	}
	return nil
}
