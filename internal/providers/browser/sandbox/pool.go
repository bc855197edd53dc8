package sandbox

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/navigation"
)

var (
	ErrPoolClosed = errors.New("sandbox pool is closed")
	ErrTimeout    = errors.New("sandbox acquisition timeout")
)

// acquireTimeout bounds how long Execute waits for a free runtime.
const acquireTimeout = 5 * time.Second

// Pool bounds concurrent script execution to size runtimes. Runtimes are
// created on demand, reset on release and dropped when a reset fails.
type Pool struct {
	config Config
	logger *zap.Logger
	size   int

	slots chan struct{}
	done  chan struct{}

	mu         sync.Mutex
	idle       []*Runtime
	closed     bool
	executions int64
	discarded  int64
}

// NewPool creates a pool of at most size runtimes. One runtime is built up
// front so a bad Config fails here rather than on the first script.
func NewPool(config Config, size int, logger *zap.Logger) (*Pool, error) {
	if size <= 0 {
		size = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	warm, err := New(config, logger)
	if err != nil {
		return nil, err
	}
	return &Pool{
		config: config,
		logger: logger,
		size:   size,
		slots:  make(chan struct{}, size),
		done:   make(chan struct{}),
		idle:   []*Runtime{warm},
	}, nil
}

// Acquire reserves a slot and returns an idle or freshly built runtime.
func (p *Pool) Acquire(ctx context.Context) (*Runtime, error) {
	timer := time.NewTimer(acquireTimeout)
	defer timer.Stop()

	select {
	case <-p.done:
		return nil, ErrPoolClosed
	default:
	}

	select {
	case p.slots <- struct{}{}:
	case <-p.done:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrTimeout
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.slots
		return nil, ErrPoolClosed
	}
	if n := len(p.idle); n > 0 {
		rt := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return rt, nil
	}
	p.mu.Unlock()

	rt, err := New(p.config, p.logger)
	if err != nil {
		<-p.slots
		return nil, err
	}
	return rt, nil
}

// Release resets rt and frees its slot. A runtime that fails to reset is
// closed and not reused.
func (p *Pool) Release(rt *Runtime) error {
	defer func() { <-p.slots }()

	resetErr := rt.Reset()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.executions++
	if p.closed {
		return rt.Close()
	}
	if resetErr != nil {
		p.discarded++
		p.logger.Warn("Discarding sandbox runtime after failed reset", zap.Error(resetErr))
		rt.Close()
		return resetErr
	}
	p.idle = append(p.idle, rt)
	return nil
}

// Execute runs script against win on a pooled runtime.
func (p *Pool) Execute(ctx context.Context, script string, win *navigation.Window) (*Result, error) {
	rt, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Release(rt)

	return rt.Execute(ctx, script, win)
}

// Close stops handing out runtimes and closes the idle ones. Runtimes still
// executing are closed when released.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	close(p.done)
	for _, rt := range p.idle {
		rt.Close()
	}
	p.idle = nil
	return nil
}

// Stats reports slot usage and lifetime counters.
func (p *Pool) Stats() map[string]any {
	inUse := len(p.slots)

	p.mu.Lock()
	defer p.mu.Unlock()
	return map[string]any{
		"size":       p.size,
		"available":  p.size - inUse,
		"in_use":     inUse,
		"idle":       len(p.idle),
		"executions": p.executions,
		"discarded":  p.discarded,
		"closed":     p.closed,
	}
}
