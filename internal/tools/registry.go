package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medcompanion-server/internal/logger"
	"medcompanion-server/internal/metrics"
)

// ErrUnknownTool is returned when invoking a name that is not registered
var ErrUnknownTool = errors.New("unknown tool")

// unknownToolLabel is the metric label for calls to unregistered names, which
// keeps caller-chosen names out of the label set
const unknownToolLabel = "unknown"

// Registry holds tools in registration order
type Registry struct {
	tools   map[string]*Tool
	order   []string
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewRegistry(log *logger.Logger, m *metrics.Metrics) *Registry {
	if log == nil {
		log = logger.Default()
	}
	return &Registry{tools: make(map[string]*Tool), log: log, metrics: m}
}

// Register adds t, replacing any tool with the same name
func (r *Registry) Register(t *Tool) {
	if _, exists := r.tools[t.Name]; !exists {
		r.order = append(r.order, t.Name)
	}
	r.tools[t.Name] = t
}

func (r *Registry) Get(name string) (*Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

func (r *Registry) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// List returns the tools in registration order
func (r *Registry) List() []*Tool {
	out := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Invoke runs the named tool with raw JSON arguments. Every call is logged
// and counted by result status.
func (r *Registry) Invoke(ctx context.Context, name string, raw []byte) (Result, error) {
	t, ok := r.tools[name]
	if !ok {
		r.metrics.ObserveTool(unknownToolLabel, StatusError)
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	start := time.Now()
	res := t.Invoke(ctx, raw)
	r.metrics.ObserveTool(name, res.Status)

	entry := r.log.WithComponent("tools").WithField("tool", name).
		WithField("status", res.Status).
		WithField("duration_ms", time.Since(start).Milliseconds())
	if res.Status == StatusError {
		entry.WithField("error_kind", res.ErrorKind).Warn(res.ErrorMessage)
	} else {
		entry.Info("tool invoked")
	}
	return res, nil
}
