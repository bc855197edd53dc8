package sandbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/navigation"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/weburl"
)

var (
	// ErrScriptTimeout is returned when a script is interrupted by its deadline.
	ErrScriptTimeout = errors.New("script execution timed out")
	// ErrClosed is returned by a closed runtime.
	ErrClosed = errors.New("sandbox runtime is closed")
)

// Runtime wraps goja VM with security controls
type Runtime struct {
	vm     *goja.Runtime
	config Config
	logger *zap.Logger
	mu     sync.Mutex

	// Console output
	console   []LogEntry
	consoleMu sync.Mutex

	// params maps script-visible URLSearchParams objects to their Go view.
	params map[*goja.Object]*weburl.SearchParams

	exec *execution
}

// New creates a new sandboxed runtime
func New(config Config, logger *zap.Logger) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	r := &Runtime{
		config: config,
		logger: logger,
	}
	if err := r.reset(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Runtime) reset() error {
	r.vm = goja.New()
	r.console = []LogEntry{}
	r.params = make(map[*goja.Object]*weburl.SearchParams)
	if r.config.MaxCallStackSize > 0 {
		r.vm.SetMaxCallStackSize(r.config.MaxCallStackSize)
	}
	return r.setupGlobals()
}

// Execute runs script with timeout and resource limits. When win is set the
// script sees its location, history and document, and events raised while
// the script runs are delivered to script listeners once it returns.
func (r *Runtime) Execute(ctx context.Context, script string, win *navigation.Window) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.vm == nil {
		return nil, ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	start := time.Now()
	result := &Result{Console: []LogEntry{}}

	r.consoleMu.Lock()
	r.console = []LogEntry{}
	r.consoleMu.Unlock()

	// Setup interrupt handler
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			r.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	if win != nil {
		r.exec = newExecution(ctx, win)
		defer func() {
			r.exec.detach()
			r.exec = nil
		}()
		r.bindWindow()
	}

	r.vm.ClearInterrupt()
	val, err := r.vm.RunString(script)
	if err == nil && r.exec != nil {
		err = r.drainEvents()
		result.Events = r.exec.delivered
	}
	r.vm.ClearInterrupt()

	result.Duration = time.Since(start)
	r.consoleMu.Lock()
	result.Console = append(result.Console, r.console...)
	r.consoleMu.Unlock()
	if r.exec != nil && r.exec.dom != nil {
		result.DOMChanges = r.exec.dom.GetChanges()
	}

	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return result, fmt.Errorf("%w after %s", ErrScriptTimeout, r.config.Timeout)
		}
		return result, fmt.Errorf("script error: %w", err)
	}
	result.Value = r.exportValue(val)
	return result, nil
}

// drainEvents delivers queued navigation events to script listeners. A
// listener may navigate again, queueing more events for the next round.
func (r *Runtime) drainEvents() error {
	for round := 0; round < max(1, r.config.MaxEventRounds); round++ {
		batch := r.exec.take()
		if len(batch) == 0 {
			return nil
		}
		for _, ev := range batch {
			r.exec.delivered = append(r.exec.delivered, ev)
			if err := r.dispatch(ev); err != nil {
				return err
			}
		}
	}
	if pending := r.exec.take(); len(pending) > 0 {
		r.logger.Debug("Dropped events after max delivery rounds",
			logging.Window(r.exec.win.ID()),
			zap.Int("dropped", len(pending)))
	}
	return nil
}

// setupGlobals configures global objects and security
func (r *Runtime) setupGlobals() error {
	// Remove dangerous globals
	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := r.vm.Set(name, goja.Undefined()); err != nil {
			return err
		}
	}

	if r.config.EnableConsole {
		console := r.vm.NewObject()
		for _, level := range []string{"log", "warn", "error", "info", "debug"} {
			console.Set(level, r.makeConsoleFunc(level))
		}
		r.vm.Set("console", console)
	}

	// Timers never fire: the sandbox has no event loop beyond navigation events.
	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	r.vm.Set("setTimeout", noop)
	r.vm.Set("setInterval", noop)
	r.vm.Set("clearTimeout", noop)
	r.vm.Set("clearInterval", noop)

	global := r.vm.GlobalObject()
	r.vm.Set("window", global)
	r.vm.Set("self", global)

	if err := r.installURL(); err != nil {
		return err
	}
	if err := r.installSearchParams(); err != nil {
		return err
	}
	r.installStructuredClone()
	return nil
}

// makeConsoleFunc creates a console function
func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			parts = append(parts, arg.String())
		}
		r.log(level, strings.Join(parts, " "))
		return goja.Undefined()
	}
}

func (r *Runtime) log(level, msg string) {
	r.consoleMu.Lock()
	defer r.consoleMu.Unlock()
	if r.config.MaxLogs > 0 && len(r.console) >= r.config.MaxLogs {
		return
	}
	r.console = append(r.console, LogEntry{Level: level, Message: msg, Time: time.Now()})
}

// exportValue converts goja value to a JSON-friendly Go value. Objects go
// through JSON so toJSON methods apply.
func (r *Runtime) exportValue(val goja.Value) any {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	obj, ok := val.(*goja.Object)
	if !ok {
		return val.Export()
	}
	if _, isFunc := goja.AssertFunction(obj); isFunc {
		return nil
	}
	data, err := obj.MarshalJSON()
	if err != nil {
		return val.String()
	}
	var out any
	if err := sonic.Unmarshal(data, &out); err != nil {
		return val.String()
	}
	return out
}

// Reset clears the runtime state
func (r *Runtime) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.vm == nil {
		return ErrClosed
	}
	return r.reset()
}

// Close releases resources
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = nil
	r.console = nil
	r.params = nil
	return nil
}
