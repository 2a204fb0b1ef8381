package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/memo/domain"
	"github.com/fastygo/memo/pkg/httpcontext"
	taskUC "github.com/fastygo/memo/usecase/task"
	"github.com/fastygo/memo/web"
)

// DashboardHandler serves the task grid and its form posts. Every mutation
// ends in a redirect so the list is always reloaded from the task service.
type DashboardHandler struct {
	pageHandler
	uc *taskUC.UseCase
}

func NewDashboardHandler(uc *taskUC.UseCase, renderer *web.Renderer, cookies Cookies, adapter *httpcontext.Adapter, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		pageHandler: newPageHandler(renderer, cookies, adapter, logger),
		uc:          uc,
	}
}

// Show renders the dashboard. ?new=1 opens an empty form, ?edit=<id> opens
// it for an existing task and ?delete=<id> asks for confirmation.
func (h *DashboardHandler) Show(ctx *fasthttp.RequestCtx) {
	session := httpcontext.SessionFromRequest(ctx)
	if session == nil {
		ctx.Redirect("/auth", fasthttp.StatusSeeOther)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	page := web.DashboardPage{Username: session.Username, Notice: h.takeNotice(ctx)}
	status := h.loadTasks(stdCtx, session.Identity(), &page)
	if page.LoadError != "" {
		h.render(ctx, status, "dashboard", page)
		return
	}

	args := ctx.QueryArgs()
	switch {
	case args.Has("new"):
		page.Form = &web.TaskForm{}
	case args.Has("edit"):
		if task := lookup(page.Tasks, args.Peek("edit")); task != nil {
			form := taskUC.FormFor(*task)
			page.Form = &web.TaskForm{
				TaskID:          task.ID,
				Title:           form.Title,
				Description:     form.Description,
				DueDate:         form.DueDate,
				OriginalDueDate: form.OriginalDueDate,
				Completed:       form.Completed,
			}
		} else {
			page.Notice = notFoundNotice()
		}
	case args.Has("delete"):
		if task := lookup(page.Tasks, args.Peek("delete")); task != nil {
			page.Confirm = task
		} else {
			page.Notice = notFoundNotice()
		}
	}
	h.render(ctx, http.StatusOK, "dashboard", page)
}

func (h *DashboardHandler) Create(ctx *fasthttp.RequestCtx) {
	h.save(ctx, 0)
}

func (h *DashboardHandler) Update(ctx *fasthttp.RequestCtx) {
	id, ok := taskID(ctx)
	if !ok {
		h.redirect(ctx, "/dashboard", notFoundNotice())
		return
	}
	h.save(ctx, id)
}

func (h *DashboardHandler) save(ctx *fasthttp.RequestCtx, id int64) {
	session := httpcontext.SessionFromRequest(ctx)
	if session == nil {
		ctx.Redirect("/auth", fasthttp.StatusSeeOther)
		return
	}
	form := taskUC.Form{
		Title:       formValue(ctx, "title"),
		Description: formValue(ctx, "description"),
		DueDate:     formValue(ctx, "dueDate"),
		Completed:   formChecked(ctx, "completed"),
	}
	if id > 0 {
		form.OriginalDueDate = formValue(ctx, "dueDate_orig")
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var err error
	if id > 0 {
		_, err = h.uc.UpdateTask(stdCtx, session.Identity(), id, form)
	} else {
		_, err = h.uc.CreateTask(stdCtx, session.Identity(), form)
	}
	if err == nil {
		notice := &web.Notice{Title: "Created", Message: "Task created", Color: web.ColorSuccess}
		if id > 0 {
			notice = &web.Notice{Title: "Updated", Message: "Task updated", Color: web.ColorSuccess}
		}
		h.redirect(ctx, "/dashboard", notice)
		return
	}

	// Keep the dialog open with what the user typed.
	page := web.DashboardPage{
		Username: session.Username,
		Form: &web.TaskForm{
			TaskID:          id,
			Title:           form.Title,
			Description:     form.Description,
			DueDate:         form.DueDate,
			OriginalDueDate: form.OriginalDueDate,
			Completed:       form.Completed,
		},
	}
	status, _ := mapError(err)
	if vErr, ok := domain.AsValidation(err); ok {
		page.Form.Errors = vErr.Fields
	} else {
		h.log(stdCtx).Warn("task save failed", zap.Int64("task_id", id), zap.Error(err))
		message := "Failed to create task"
		if id > 0 {
			message = "Failed to update task"
		}
		page.Notice = &web.Notice{Title: "Operation failed", Message: message, Color: web.ColorError}
	}
	h.loadTasks(stdCtx, session.Identity(), &page)
	h.render(ctx, status, "dashboard", page)
}

// Toggle flips the completion flag of one task.
func (h *DashboardHandler) Toggle(ctx *fasthttp.RequestCtx) {
	session := httpcontext.SessionFromRequest(ctx)
	id, ok := taskID(ctx)
	if session == nil || !ok {
		h.redirect(ctx, "/dashboard", notFoundNotice())
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if _, err := h.uc.ToggleTask(stdCtx, session.Identity(), id); err != nil {
		h.log(stdCtx).Warn("task toggle failed", zap.Int64("task_id", id), zap.Error(err))
		h.redirect(ctx, "/dashboard", &web.Notice{Title: "Update failed", Message: "Could not update task status", Color: web.ColorError})
		return
	}
	h.redirect(ctx, "/dashboard", nil)
}

// Delete removes a task. Without confirm=yes nothing is sent upstream.
func (h *DashboardHandler) Delete(ctx *fasthttp.RequestCtx) {
	id, ok := taskID(ctx)
	if !ok {
		h.redirect(ctx, "/dashboard", notFoundNotice())
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	err := h.uc.DeleteTask(stdCtx, id, formValue(ctx, "confirm") == "yes")
	switch {
	case err == nil:
		h.redirect(ctx, "/dashboard", &web.Notice{Title: "Deleted", Message: "Task deleted", Color: web.ColorSuccess})
	case errors.Is(err, taskUC.ErrDeleteNotConfirmed):
		h.redirect(ctx, "/dashboard", &web.Notice{Title: "Delete cancelled", Message: "The task was kept", Color: web.ColorInfo})
	default:
		h.log(stdCtx).Warn("task delete failed", zap.Int64("task_id", id), zap.Error(err))
		h.redirect(ctx, "/dashboard", &web.Notice{Title: "Delete failed", Message: "Could not delete task", Color: web.ColorError})
	}
}

// loadTasks fills page.Tasks, or page.LoadError when the list is unavailable.
func (h *DashboardHandler) loadTasks(ctx context.Context, owner domain.Identity, page *web.DashboardPage) int {
	tasks, err := h.uc.ListTasks(ctx, owner)
	if err != nil {
		h.log(ctx).Warn("task list failed", zap.Int64("user_id", owner.ID), zap.Error(err))
		page.LoadError = "Could not load tasks"
		if page.Notice == nil {
			page.Notice = &web.Notice{Title: "Load failed", Message: "Could not load tasks", Color: web.ColorError}
		}
		status, _ := mapError(err)
		return status
	}
	page.Tasks = tasks
	return http.StatusOK
}

func lookup(tasks []domain.Task, raw []byte) *domain.Task {
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return nil
	}
	task, err := taskUC.FindTask(tasks, id)
	if err != nil {
		return nil
	}
	return task
}

func taskID(ctx *fasthttp.RequestCtx) (int64, bool) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func notFoundNotice() *web.Notice {
	return &web.Notice{Title: "Not found", Message: "That task no longer exists", Color: web.ColorError}
}
