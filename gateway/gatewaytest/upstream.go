package gatewaytest

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/memo/domain"
)

// TaskService is an in-memory task service speaking the operation envelope.
type TaskService struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]domain.Task
	// Fail makes every call answer 500.
	Fail bool
}

func NewTaskService(seed ...domain.Task) *TaskService {
	s := &TaskService{nextID: 1, tasks: make(map[int64]domain.Task)}
	for _, t := range seed {
		s.tasks[t.ID] = t
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
	return s
}

// SetNextID fixes the id assigned to the next created task.
func (s *TaskService) SetNextID(id int64) {
	s.mu.Lock()
	s.nextID = id
	s.mu.Unlock()
}

func (s *TaskService) Handle(ctx *fasthttp.RequestCtx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Fail {
		ctx.SetStatusCode(http.StatusInternalServerError)
		return
	}

	var op domain.TaskOperation
	if err := json.Unmarshal(ctx.PostBody(), &op); err != nil {
		ctx.SetStatusCode(http.StatusBadRequest)
		return
	}

	switch op.Operation {
	case domain.OperationCreate:
		task := *op.Task
		task.ID = s.nextID
		s.nextID++
		s.tasks[task.ID] = task
		JSON(ctx, http.StatusOK, task)
	case domain.OperationRead:
		out := []domain.Task{}
		for _, t := range s.tasks {
			if t.UserID == op.UserID {
				out = append(out, t)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		JSON(ctx, http.StatusOK, out)
	case domain.OperationUpdate:
		if _, ok := s.tasks[op.Task.ID]; !ok {
			ctx.SetStatusCode(http.StatusNotFound)
			return
		}
		s.tasks[op.Task.ID] = *op.Task
		JSON(ctx, http.StatusOK, op.Task)
	case domain.OperationDelete:
		if _, ok := s.tasks[op.TaskID]; !ok {
			ctx.SetStatusCode(http.StatusNotFound)
			return
		}
		delete(s.tasks, op.TaskID)
		ctx.SetStatusCode(http.StatusOK)
	default:
		ctx.SetStatusCode(http.StatusBadRequest)
	}
}

// AuthService accepts one user and answers like the upstream auth service.
type AuthService struct {
	// Token, when set, switches login responses to the {user, token} shape.
	Token string

	mu     sync.Mutex
	users  map[string]string
	ids    map[string]int64
	nextID int64
}

func NewAuthService() *AuthService {
	return &AuthService{users: make(map[string]string), ids: make(map[string]int64), nextID: 1}
}

// AddUser registers username directly.
func (s *AuthService) AddUser(username, password string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(username, password)
}

func (s *AuthService) add(username, password string) int64 {
	id := s.nextID
	s.nextID++
	s.users[username] = password
	s.ids[username] = id
	return id
}

func (s *AuthService) Handle(ctx *fasthttp.RequestCtx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var creds domain.Credentials
	if err := json.Unmarshal(ctx.PostBody(), &creds); err != nil {
		JSON(ctx, http.StatusBadRequest, map[string]string{"code": "BAD_REQUEST", "message": "invalid payload"})
		return
	}

	switch string(ctx.Path()) {
	case "/auth/login":
		if pw, ok := s.users[creds.Username]; !ok || pw != creds.Password {
			JSON(ctx, http.StatusUnauthorized, map[string]string{"code": "BAD_CREDENTIALS", "message": "invalid username or password"})
			return
		}
		user := map[string]any{"id": s.ids[creds.Username], "username": creds.Username, "password": creds.Password}
		if s.Token != "" {
			JSON(ctx, http.StatusOK, map[string]any{"user": user, "token": s.Token})
			return
		}
		JSON(ctx, http.StatusOK, user)
	case "/auth/register":
		if _, exists := s.users[creds.Username]; exists {
			JSON(ctx, http.StatusConflict, map[string]string{"code": "USER_EXISTS", "message": "username already exists"})
			return
		}
		s.add(creds.Username, creds.Password)
		ctx.SetStatusCode(http.StatusNoContent)
	default:
		ctx.SetStatusCode(http.StatusNotFound)
	}
}
