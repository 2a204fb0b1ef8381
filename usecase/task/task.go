package task

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/memo/domain"
	"github.com/fastygo/memo/pkg/logger"
	"github.com/fastygo/memo/repository"
)

// isoMillis is the layout browsers produce for Date.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// ErrDeleteNotConfirmed is returned when a delete arrives without the
// user's confirmation. No upstream call is made in that case.
var ErrDeleteNotConfirmed = domain.NewError(domain.ErrCodeInvalid, "delete was not confirmed")

// Form is the create/edit task form. OriginalDueDate carries the stored
// timestamp of the task being edited.
type Form struct {
	Title           string
	Description     string
	DueDate         string
	OriginalDueDate string
	Completed       bool
}

// FormFor pre-populates the edit form from an existing task.
func FormFor(t domain.Task) Form {
	return Form{
		Title:           t.Title,
		Description:     t.Description,
		DueDate:         t.DueDate,
		OriginalDueDate: t.DueDate,
		Completed:       t.Completed,
	}
}

// InputDate renders a due date the way the date input shows it.
func InputDate(value string) string {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().Format("2006-01-02")
		}
	}
	return value
}

// dueDate returns the stored timestamp unchanged while the date input still
// shows it; only a date the user actually picked is normalized.
func (f Form) dueDate() (string, error) {
	if f.OriginalDueDate != "" && strings.TrimSpace(f.DueDate) == InputDate(f.OriginalDueDate) {
		if _, err := ParseDueDate(f.OriginalDueDate); err == nil {
			return f.OriginalDueDate, nil
		}
	}
	return ParseDueDate(f.DueDate)
}

// Task builds the task the form describes for owner, normalizing the due date.
func (f Form) Task(owner domain.Identity) (domain.Task, error) {
	var vErr domain.ValidationError
	if strings.TrimSpace(f.Title) == "" {
		vErr.Add("title", "title is required")
	}
	due, err := f.dueDate()
	if err != nil {
		vErr.Add("dueDate", err.Error())
	}
	if err := vErr.OrNil(); err != nil {
		return domain.Task{}, err
	}
	return domain.Task{
		UserID:      owner.ID,
		Title:       f.Title,
		Description: f.Description,
		DueDate:     due,
		Completed:   f.Completed,
	}, nil
}

// ParseDueDate accepts an RFC 3339 timestamp or a plain YYYY-MM-DD date and
// returns it in UTC with millisecond precision.
func ParseDueDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.NewError(domain.ErrCodeInvalid, "due date is required")
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC().Format(isoMillis), nil
		}
	}
	return "", domain.NewError(domain.ErrCodeInvalid, "due date must be a valid date")
}

type UseCase struct {
	tasks  repository.TaskGateway
	logger *zap.Logger
}

func New(tasks repository.TaskGateway, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
	}
}

func (uc *UseCase) ListTasks(ctx context.Context, owner domain.Identity) ([]domain.Task, error) {
	return uc.tasks.List(ctx, owner.ID)
}

// GetTask finds one of owner's tasks. The task service has no single-read
// operation, so this reads the whole list.
func (uc *UseCase) GetTask(ctx context.Context, owner domain.Identity, id int64) (*domain.Task, error) {
	tasks, err := uc.tasks.List(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	return FindTask(tasks, id)
}

// FindTask looks id up in an already loaded list.
func FindTask(tasks []domain.Task, id int64) (*domain.Task, error) {
	for i := range tasks {
		if tasks[i].ID == id {
			found := tasks[i]
			return &found, nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

func (uc *UseCase) CreateTask(ctx context.Context, owner domain.Identity, form Form) (domain.Task, error) {
	task, err := form.Task(owner)
	if err != nil {
		return domain.Task{}, err
	}
	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return domain.Task{}, err
	}
	logger.WithRequestID(ctx, uc.logger).Debug("task created", zap.Int64("task_id", created.ID))
	return created, nil
}

// UpdateTask replaces task id with the form's values.
func (uc *UseCase) UpdateTask(ctx context.Context, owner domain.Identity, id int64, form Form) (domain.Task, error) {
	if id <= 0 {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	task, err := form.Task(owner)
	if err != nil {
		return domain.Task{}, err
	}
	task.ID = id
	return uc.tasks.Update(ctx, task)
}

// ToggleComplete sends task back with only its completion flag flipped.
func (uc *UseCase) ToggleComplete(ctx context.Context, task domain.Task) (domain.Task, error) {
	if task.ID <= 0 {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	return uc.tasks.Update(ctx, task.Toggled())
}

// ToggleTask loads task id for owner and flips its completion flag.
func (uc *UseCase) ToggleTask(ctx context.Context, owner domain.Identity, id int64) (domain.Task, error) {
	task, err := uc.GetTask(ctx, owner, id)
	if err != nil {
		return domain.Task{}, err
	}
	return uc.ToggleComplete(ctx, *task)
}

// DeleteTask removes task id once the user has confirmed.
func (uc *UseCase) DeleteTask(ctx context.Context, id int64, confirmed bool) error {
	if !confirmed {
		return ErrDeleteNotConfirmed
	}
	if id <= 0 {
		return domain.ErrTaskNotFound
	}
	if err := uc.tasks.Delete(ctx, id); err != nil {
		return err
	}
	logger.WithRequestID(ctx, uc.logger).Debug("task deleted", zap.Int64("task_id", id))
	return nil
}
