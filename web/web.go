// Package web holds the server-rendered pages and their stylesheet.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"mime"
	"path"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/memo/domain"
	taskUC "github.com/fastygo/memo/usecase/task"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the files served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// ServeStatic answers /static/{filepath:*} from the embedded files.
func ServeStatic(ctx *fasthttp.RequestCtx) {
	name, _ := ctx.UserValue("filepath").(string)
	name = path.Clean("/" + name)[1:]
	body, err := fs.ReadFile(Static(), name)
	if err != nil {
		ctx.Error("not found", fasthttp.StatusNotFound)
		return
	}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		ctx.SetContentType(ct)
	}
	ctx.Response.Header.Set(fasthttp.HeaderCacheControl, "public, max-age=3600")
	ctx.SetBody(body)
}

// Notice is a transient message shown at the top of a page.
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Color   string `json:"color"`
}

const (
	ColorSuccess = "green"
	ColorError   = "red"
	ColorInfo    = "blue"
)

// AuthPage is the login/register page.
type AuthPage struct {
	Tab        string
	Username   string
	RememberMe bool
	Errors     map[string]string
	Notice     *Notice
}

// TaskForm is the create/edit dialog.
type TaskForm struct {
	TaskID          int64
	Title           string
	Description     string
	DueDate         string
	OriginalDueDate string
	Completed       bool
	Errors          map[string]string
}

// Editing reports whether the form edits an existing task.
func (f *TaskForm) Editing() bool {
	return f != nil && f.TaskID > 0
}

// Action is the URL the form posts to.
func (f *TaskForm) Action() string {
	if f.Editing() {
		return fmt.Sprintf("/dashboard/tasks/%d", f.TaskID)
	}
	return "/dashboard/tasks"
}

// DashboardPage is the task grid.
type DashboardPage struct {
	Username  string
	Tasks     []domain.Task
	LoadError string
	Form      *TaskForm
	Confirm   *domain.Task
	Notice    *Notice
}

// Renderer executes the page templates.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"displayDate": displayDate,
	"inputDate":   taskUC.InputDate,
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{"auth", "dashboard"} {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

// Render writes page with data to w. Output is buffered so a failing
// template never produces a half-written page.
func (r *Renderer) Render(w io.Writer, page string, data interface{}) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func parseISO(value string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// displayDate renders a due date for the task card.
func displayDate(value string) string {
	t, ok := parseISO(value)
	if !ok {
		return value
	}
	return t.Format("Jan 2, 2006")
}

