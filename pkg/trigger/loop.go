package trigger

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// Kind is the cause of a layout pass.
type Kind int

const (
	// Initial is the first pass after the diagram is shown.
	Initial Kind = iota
	// DataChanged means the diagram data was replaced.
	DataChanged
	// Resized means the viewport width changed.
	Resized
)

func (k Kind) String() string {
	switch k {
	case DataChanged:
		return "data"
	case Resized:
		return "resize"
	default:
		return "initial"
	}
}

// Event is one trigger. Width is set for [Resized] events; Path names the
// changed file for [DataChanged] events from a [FileWatcher].
type Event struct {
	Kind  Kind
	Width float64
	Path  string
}

// merge folds a later event into e. A data change wins over a resize
// because it implies a full rebuild; the newest width is kept either way.
func (e Event) merge(next Event) Event {
	out := next
	if e.Kind == DataChanged || e.Kind == Initial {
		out.Kind = e.Kind
		if next.Kind == DataChanged {
			out.Kind = DataChanged
		}
		if out.Path == "" {
			out.Path = e.Path
		}
	}
	if next.Width == 0 {
		out.Width = e.Width
	}
	return out
}

// Handler runs one layout pass.
type Handler func(ctx context.Context, ev Event) error

// Loop serializes triggers onto a handler.
type Loop struct {
	handler Handler
	logger  *log.Logger

	mu      sync.Mutex
	pending *Event
	wake    chan struct{}

	// OnError is called when the handler fails. The loop keeps running.
	// Defaults to logging the error.
	OnError func(ev Event, err error)
}

// NewLoop creates a loop. A nil logger discards output.
func NewLoop(h Handler, logger *log.Logger) *Loop {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	l := &Loop{
		handler: h,
		logger:  logger,
		wake:    make(chan struct{}, 1),
	}
	l.OnError = func(ev Event, err error) {
		l.logger.Error("layout pass failed", "trigger", ev.Kind, "error", err)
	}
	return l
}

// Trigger schedules a pass. It never blocks; if a pass is already queued
// the two are merged.
func (l *Loop) Trigger(ev Event) {
	l.mu.Lock()
	if l.pending != nil {
		merged := l.pending.merge(ev)
		l.pending = &merged
	} else {
		l.pending = &ev
	}
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) take() (Event, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending == nil {
		return Event{}, false
	}
	ev := *l.pending
	l.pending = nil
	return ev, true
}

// Run queues an [Initial] pass and processes triggers until ctx is done.
// It returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	l.Trigger(Event{Kind: Initial})
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
		for {
			ev, ok := l.take()
			if !ok {
				break
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Debug("layout pass", "trigger", ev.Kind, "width", ev.Width)
			if err := l.handler(ctx, ev); err != nil {
				l.OnError(ev, err)
			}
		}
	}
}
