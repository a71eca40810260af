package hooks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultTimeout bounds each handler when the dispatcher has no timeout set.
const DefaultTimeout = 5 * time.Second

// Handler reacts to one hook event.
type Handler interface {
	Name() string
	Handle(ctx context.Context, in *Input) (Result, error)
}

type funcHandler struct {
	name string
	fn   func(ctx context.Context, in *Input) (Result, error)
}

func (h funcHandler) Name() string { return h.name }

func (h funcHandler) Handle(ctx context.Context, in *Input) (Result, error) {
	return h.fn(ctx, in)
}

// HandlerFunc adapts a function to a named Handler.
func HandlerFunc(name string, fn func(ctx context.Context, in *Input) (Result, error)) Handler {
	return funcHandler{name: name, fn: fn}
}

// HandlerRun records how one handler fared during a dispatch.
type HandlerRun struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
	TimedOut bool          `json:"timed_out,omitempty"`
	Blocked  bool          `json:"blocked,omitempty"`
}

// Dispatcher runs handlers per event in registration order.
// It is safe for concurrent use.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[Event][]Handler
	timeout  time.Duration
	logger   *slog.Logger
	log      *EventLog
}

// NewDispatcher creates a Dispatcher. A non-positive timeout uses DefaultTimeout
// and a nil logger discards output.
func NewDispatcher(timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{
		handlers: make(map[Event][]Handler),
		timeout:  timeout,
		logger:   logger,
	}
}

// SetEventLog records every dispatch to l. Nil disables recording.
func (d *Dispatcher) SetEventLog(l *EventLog) {
	d.mu.Lock()
	d.log = l
	d.mu.Unlock()
}

// Register appends h to the handlers of event.
func (d *Dispatcher) Register(event Event, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[event] = append(d.handlers[event], h)
}

// Handlers returns the names of the handlers registered for event.
func (d *Dispatcher) Handlers(event Event) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, len(d.handlers[event]))
	for i, h := range d.handlers[event] {
		names[i] = h.Name()
	}
	return names
}

// Dispatch runs the handlers for event and merges their results. A handler
// that errors, panics or exceeds the timeout is logged and skipped. A blocking
// result stops the remaining handlers.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event, in *Input) Result {
	d.mu.RLock()
	handlers := append([]Handler(nil), d.handlers[event]...)
	eventLog := d.log
	d.mu.RUnlock()

	if in == nil {
		in = &Input{}
	}
	start := time.Now()
	acc := Pass()
	runs := make([]HandlerRun, 0, len(handlers))

	for _, h := range handlers {
		if ctx.Err() != nil {
			break
		}
		res, run := d.run(ctx, h, in)
		runs = append(runs, run)
		if run.Error != "" {
			continue
		}
		acc.merge(res)
		if res.Block {
			break
		}
	}

	if eventLog != nil {
		if err := eventLog.Record(event, in, acc, runs, time.Since(start)); err != nil {
			d.logger.Warn("hook event not recorded", "event", event, "error", err)
		}
	}
	return acc
}

type outcome struct {
	res Result
	err error
}

func (d *Dispatcher) run(ctx context.Context, h Handler, in *Input) (Result, HandlerRun) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	run := HandlerRun{Name: h.Name()}
	start := time.Now()
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		res, err := h.Handle(ctx, in)
		done <- outcome{res: res, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out.err = ctx.Err()
		run.TimedOut = errors.Is(out.err, context.DeadlineExceeded)
	}
	run.Duration = time.Since(start)

	if out.err != nil {
		run.Error = out.err.Error()
		d.logger.Warn("hook handler failed", "handler", run.Name, "timed_out", run.TimedOut, "error", out.err)
		return Result{}, run
	}
	run.Blocked = out.res.Block
	d.logger.Debug("hook handler finished", "handler", run.Name, "duration", run.Duration)
	return out.res, run
}
