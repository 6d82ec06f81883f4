// Package task provides the future abstraction used to bridge asynchronous
// platform work (model loading, hit-test source acquisition) back onto the
// single-threaded frame loop.
//
// A Future may be resolved from any goroutine. Its result is never delivered
// directly: it is posted to a Queue and handed to the awaiting component only
// when the frame loop drains that queue. Every delivery carries the
// Generation the awaiting component registered with, so results that belong
// to a session that has since ended can be recognised and discarded.
package task

import (
	"errors"
	"sync"
)

// Generation identifies the session an asynchronous request belongs to.
type Generation uint64

// NoGeneration tags work that outlives sessions, such as catalog loading.
const NoGeneration Generation = 0

// ErrAlreadySettled is returned when a future is resolved or rejected twice.
var ErrAlreadySettled = errors.New("future already settled")

// Result is what a Future delivers to its awaiting component.
type Result[T any] struct {
	Value T
	Err   error
	Gen   Generation
}

// Queue collects completed results until the frame loop drains them.
type Queue struct {
	mu      sync.Mutex
	pending []func()
}

// NewQueue creates an empty completion queue.
func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) post(deliver func()) {
	q.mu.Lock()
	q.pending = append(q.pending, deliver)
	q.mu.Unlock()
}

// Drain delivers every completion posted so far, in posting order, on the
// calling goroutine. Completions posted while draining wait for the next call.
// Returns the number of deliveries made.
func (q *Queue) Drain() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, deliver := range batch {
		deliver()
	}
	return len(batch)
}

// Len returns the number of completions waiting to be drained.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Future is a single-assignment asynchronous value.
type Future[T any] struct {
	queue *Queue

	mu      sync.Mutex
	settled bool
	value   T
	err     error

	awaiting bool
	gen      Generation
	sink     func(Result[T])
}

// NewFuture creates an unsettled future whose completion is posted to q.
func NewFuture[T any](q *Queue) *Future[T] {
	return &Future[T]{queue: q}
}

// Resolved returns a future that is already settled with v.
func Resolved[T any](q *Queue, v T) *Future[T] {
	f := NewFuture[T](q)
	_ = f.Resolve(v)
	return f
}

// Rejected returns a future that is already settled with err.
func Rejected[T any](q *Queue, err error) *Future[T] {
	f := NewFuture[T](q)
	_ = f.Reject(err)
	return f
}

// Resolve settles the future with a value.
func (f *Future[T]) Resolve(v T) error {
	return f.settle(v, nil)
}

// Reject settles the future with an error.
func (f *Future[T]) Reject(err error) error {
	var zero T
	return f.settle(zero, err)
}

func (f *Future[T]) settle(v T, err error) error {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return ErrAlreadySettled
	}
	f.settled = true
	f.value = v
	f.err = err
	awaiting := f.awaiting
	f.mu.Unlock()

	if awaiting {
		f.queue.post(f.deliver)
	}
	return nil
}

// Await registers sink to receive the result, tagged with gen. Only the first
// registration counts. If the future is already settled, delivery is still
// deferred to the next queue drain.
func (f *Future[T]) Await(gen Generation, sink func(Result[T])) {
	f.mu.Lock()
	if f.awaiting {
		f.mu.Unlock()
		return
	}
	f.awaiting = true
	f.gen = gen
	f.sink = sink
	settled := f.settled
	f.mu.Unlock()

	if settled {
		f.queue.post(f.deliver)
	}
}

// Settled reports whether the future has a value or error.
func (f *Future[T]) Settled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settled
}

func (f *Future[T]) deliver() {
	f.mu.Lock()
	res := Result[T]{Value: f.value, Err: f.err, Gen: f.gen}
	sink := f.sink
	f.mu.Unlock()

	sink(res)
}
