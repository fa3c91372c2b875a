package irc

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Listener handles events it subscribed to.
type Listener interface {
	HandleEvent(ev *Event) error
}

// ListenerFunc adapts a function to a Listener.
type ListenerFunc func(ev *Event) error

func (f ListenerFunc) HandleEvent(ev *Event) error { return f(ev) }

// Dispatcher delivers events to listeners on its own goroutine, in the
// order they were fired. Listeners for the same kind are called in
// registration order.
type Dispatcher struct {
	logger  zerolog.Logger
	onError func(error)

	mu        sync.Mutex
	listeners map[EventKind][]Listener
	stopped   bool

	jobs *queue[func()]
	done chan struct{}
}

// NewDispatcher creates a dispatcher. onError may be nil.
func NewDispatcher(logger zerolog.Logger, onError func(error)) *Dispatcher {
	return &Dispatcher{
		logger:    logger,
		onError:   onError,
		listeners: map[EventKind][]Listener{},
		jobs:      newQueue[func()](),
		done:      make(chan struct{}),
	}
}

// AddListener subscribes l to the given kinds, or to every kind if none are
// given.
func (d *Dispatcher) AddListener(l Listener, kinds ...EventKind) error {
	if len(kinds) == 0 {
		kinds = AllEvents
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return ErrDispatcherStopped
	}
	for _, k := range kinds {
		d.listeners[k] = append(d.listeners[k], l)
	}
	return nil
}

// FireEvent queues ev for delivery. It never blocks and returns false if
// the dispatcher is stopped.
func (d *Dispatcher) FireEvent(ev *Event) bool {
	return d.jobs.push(func() { d.deliver(ev) })
}

// exec runs fn on the dispatcher goroutine, after everything already queued.
func (d *Dispatcher) exec(fn func()) bool {
	return d.jobs.push(fn)
}

// Run processes queued jobs until Stop is called and the queue is drained.
func (d *Dispatcher) Run() {
	defer close(d.done)
	for {
		job, ok := d.jobs.pop(nil)
		if !ok {
			return
		}
		job()
	}
}

// Stop refuses further listeners and events. Events already queued are
// still delivered before Run returns.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
	d.jobs.close()
}

// Done is closed once Run has returned.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) deliver(ev *Event) {
	d.mu.Lock()
	listeners := append([]Listener(nil), d.listeners[ev.Kind]...)
	d.mu.Unlock()

	for _, l := range listeners {
		if err := invoke(l, ev); err != nil {
			lerr := &ListenerError{Kind: ev.Kind, Err: err}
			d.logger.Warn().Err(err).Str("event", ev.Kind.String()).Msg("listener failed")
			if d.onError != nil {
				d.onError(lerr)
			}
		}
	}
}

func invoke(l Listener, ev *Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return l.HandleEvent(ev)
}
