package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotRegistered is returned for a name no handler was registered under.
var ErrNotRegistered = errors.New("handler not registered")

// Handler runs one named operation. Queries and commands share the shape;
// the split only records whether the operation changes state.
type Handler func(ctx context.Context, payload interface{}) (interface{}, error)

type (
	CommandHandler = Handler
	QueryHandler   = Handler
)

// Dispatcher routes named commands and queries to their handlers.
type Dispatcher struct {
	mu       sync.RWMutex
	commands map[string]Handler
	queries  map[string]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		commands: make(map[string]Handler),
		queries:  make(map[string]Handler),
	}
}

func (d *Dispatcher) RegisterCommand(name string, handler CommandHandler) {
	d.register(d.commands, name, handler)
}

func (d *Dispatcher) RegisterQuery(name string, handler QueryHandler) {
	d.register(d.queries, name, handler)
}

func (d *Dispatcher) register(table map[string]Handler, name string, handler Handler) {
	if handler == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	table[name] = handler
}

func (d *Dispatcher) ExecuteCommand(ctx context.Context, name string, payload interface{}) (interface{}, error) {
	return d.run(ctx, d.commands, "command", name, payload)
}

func (d *Dispatcher) ExecuteQuery(ctx context.Context, name string, params interface{}) (interface{}, error) {
	return d.run(ctx, d.queries, "query", name, params)
}

// Execute runs name as a query when one is registered, otherwise as a command.
func (d *Dispatcher) Execute(ctx context.Context, name string, payload interface{}) (interface{}, error) {
	d.mu.RLock()
	_, isQuery := d.queries[name]
	d.mu.RUnlock()
	if isQuery {
		return d.ExecuteQuery(ctx, name, payload)
	}
	return d.ExecuteCommand(ctx, name, payload)
}

// Names lists every registered operation, sorted.
func (d *Dispatcher) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	seen := make(map[string]struct{}, len(d.commands)+len(d.queries))
	for name := range d.commands {
		seen[name] = struct{}{}
	}
	for name := range d.queries {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Dispatcher) run(ctx context.Context, table map[string]Handler, kind, name string, payload interface{}) (interface{}, error) {
	d.mu.RLock()
	handler, ok := table[name]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", kind, name, ErrNotRegistered)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return handler(ctx, payload)
}
