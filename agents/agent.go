// Package agents holds the three decision agents: factual (features),
// subjective (signals) and the judge that blends them.
package agents

import (
	"context"
	"sync"
	"time"

	"github.com/rustyeddy/marketmind/internal/logger"
)

// Runtime executes an agent's tool call. LocalRuntime is the only
// production implementation.
type Runtime interface {
	Invoke(ctx context.Context, agent string, call func(context.Context) error) error
}

// LocalRuntime runs the call in-process and logs how long it took.
type LocalRuntime struct{}

func (LocalRuntime) Invoke(ctx context.Context, agent string, call func(context.Context) error) error {
	start := time.Now()
	err := call(ctx)
	ms := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		logger.Debug("agent call failed", "agent", agent, "latency_ms", ms, "err", err)
		return err
	}
	logger.Debug("agent call", "agent", agent, "latency_ms", ms)
	return nil
}

// Memory is a small per-agent key/value store. Each agent owns its own.
type Memory struct {
	mu    sync.RWMutex
	state map[string]any
}

func NewMemory() *Memory {
	return &Memory{state: make(map[string]any)}
}

func (m *Memory) Set(key string, v any) {
	m.mu.Lock()
	m.state[key] = v
	m.mu.Unlock()
}

func (m *Memory) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.state[key]
	return v, ok
}

const lastResultKey = "last_result"

// Base carries what every agent shares: a name, a runtime and memory.
type Base struct {
	Name    string
	Runtime Runtime
	Memory  *Memory
}

func newBase(name string, rt Runtime) Base {
	if rt == nil {
		rt = LocalRuntime{}
	}
	return Base{Name: name, Runtime: rt, Memory: NewMemory()}
}

// LastResult returns the value produced by the most recent successful call.
func (b Base) LastResult() (any, bool) {
	return b.Memory.Get(lastResultKey)
}

// run invokes fn through the agent's runtime and remembers its result.
func run[T any](ctx context.Context, b Base, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := b.Runtime.Invoke(ctx, b.Name, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	b.Memory.Set(lastResultKey, out)
	return out, nil
}
