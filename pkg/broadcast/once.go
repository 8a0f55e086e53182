// Package broadcast provides a single-assignment value that any number of
// receivers can wait on.
//
// A Once is owned by exactly one producer. Receivers are cheap values that
// share the result cell and may outlive the producer. Exactly one terminal
// result is ever observed: the value passed to Broadcast, or ErrDropped if
// the producer was closed or garbage collected first.
package broadcast

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/fluss-go/pkg/logger"
)

// ErrDropped is the result observed by receivers whose producer went away
// without publishing a value.
var ErrDropped = errors.New("broadcast: producer dropped without a result")

// Result is the terminal state of a Once.
type Result[T any] struct {
	Value T
	Err   error
}

type shared[T any] struct {
	mu     sync.RWMutex
	set    bool
	result Result[T]
	// done is closed after result is written; closing is the wakeup.
	done chan struct{}
}

func (s *shared[T]) peek() (Result[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result, s.set
}

// publish stores r if nothing is stored yet. The lock is released before
// waiters are woken.
func (s *shared[T]) publish(r Result[T]) bool {
	s.mu.Lock()
	if s.set {
		s.mu.Unlock()
		return false
	}
	s.result = r
	s.set = true
	s.mu.Unlock()

	close(s.done)
	return true
}

// Once is the producer side.
type Once[T any] struct {
	shared *shared[T]
	logger *zap.Logger
	onDrop func()
}

// Option configures a Once.
type Option func(*options)

type options struct {
	logger *zap.Logger
	onDrop func()
}

// WithLogger sets the logger used to report abandoned broadcasts.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithOnDrop registers fn to run once if the broadcast is abandoned unset,
// whether by Close or by collection.
func WithOnDrop(fn func()) Option {
	return func(o *options) { o.onDrop = fn }
}

// New creates an unset Once.
func New[T any](opts ...Option) *Once[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	once := &Once[T]{
		shared: &shared[T]{done: make(chan struct{})},
		logger: logger.Component(o.logger, "broadcast"),
		onDrop: o.onDrop,
	}
	// Receivers only reference the shared cell, so an unreachable producer
	// can still be collected and its receivers released.
	runtime.SetFinalizer(once, func(o *Once[T]) {
		o.abandon("collected")
	})
	return once
}

// Receiver returns a new handle on the result. It may be called at any time,
// including after the result is set.
func (o *Once[T]) Receiver() Receiver[T] {
	return Receiver[T]{shared: o.shared}
}

// Broadcast publishes v to every current and future receiver. Publishing
// twice is a programming error and panics.
func (o *Once[T]) Broadcast(v T) {
	if !o.TryBroadcast(v) {
		panic("broadcast: double publish")
	}
}

// TryBroadcast publishes v unless a result is already set. It reports
// whether v was published.
func (o *Once[T]) TryBroadcast(v T) bool {
	return o.shared.publish(Result[T]{Value: v})
}

// IsSet reports whether a terminal result exists.
func (o *Once[T]) IsSet() bool {
	_, ok := o.shared.peek()
	return ok
}

// Close abandons the broadcast. If no value was published, every receiver
// resolves to ErrDropped and Close reports true. Close is idempotent and a
// no-op after Broadcast.
func (o *Once[T]) Close() bool {
	dropped := o.abandon("closed")
	runtime.SetFinalizer(o, nil)
	return dropped
}

func (o *Once[T]) abandon(reason string) bool {
	if !o.shared.publish(Result[T]{Err: ErrDropped}) {
		return false
	}
	o.logger.Warn("broadcast dropped without producing a result", zap.String("reason", reason))
	if o.onDrop != nil {
		o.onDrop()
	}
	return true
}

// Receiver observes the result of a Once. The zero Receiver is not usable.
type Receiver[T any] struct {
	shared *shared[T]
}

// Peek returns the result if one has been set. It never blocks.
func (r Receiver[T]) Peek() (Result[T], bool) {
	return r.shared.peek()
}

// Done returns a channel that is closed once the result is set.
func (r Receiver[T]) Done() <-chan struct{} {
	return r.shared.done
}

// Receive blocks until the result is set or ctx is done. Cancelling ctx only
// affects this call.
func (r Receiver[T]) Receive(ctx context.Context) (T, error) {
	done := r.shared.done
	if res, ok := r.shared.peek(); ok {
		return res.Value, res.Err
	}

	select {
	case <-done:
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}

	res, ok := r.shared.peek()
	if !ok {
		panic("broadcast: woken without a result")
	}
	return res.Value, res.Err
}
