package store

import "sync"

// Observable holds a value and notifies subscribers when it is replaced.
// Values are treated as immutable snapshots: writers build a new value
// (including new slices) instead of mutating the one they read.
//
// Subscribers run synchronously on the writer's goroutine, outside the
// observable's lock, and always receive the latest value at delivery time.
// They must not call mutating methods of the store that owns the observable.
type Observable[T any] struct {
	mu     sync.RWMutex
	value  T
	nextID int
	subs   map[int]func(T)
}

func NewObservable[T any](initial T) *Observable[T] {
	return &Observable[T]{
		value: initial,
		subs:  make(map[int]func(T)),
	}
}

func (o *Observable[T]) Get() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.value
}

func (o *Observable[T]) Set(v T) {
	o.mu.Lock()
	o.value = v
	o.mu.Unlock()

	o.notify()
}

// Update replaces the value with fn(current) atomically
func (o *Observable[T]) Update(fn func(T) T) {
	o.mu.Lock()
	o.value = fn(o.value)
	o.mu.Unlock()

	o.notify()
}

// Subscribe calls fn with the current value and on every change. The
// returned function removes the subscription.
func (o *Observable[T]) Subscribe(fn func(T)) func() {
	unsubscribe := o.Listen(fn)
	fn(o.Get())
	return unsubscribe
}

// Listen is Subscribe without the initial call
func (o *Observable[T]) Listen(fn func(T)) func() {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.subs, id)
		o.mu.Unlock()
	}
}

func (o *Observable[T]) notify() {
	o.mu.RLock()
	if len(o.subs) == 0 {
		o.mu.RUnlock()
		return
	}
	subs := make([]func(T), 0, len(o.subs))
	for _, fn := range o.subs {
		subs = append(subs, fn)
	}
	o.mu.RUnlock()

	for _, fn := range subs {
		fn(o.Get())
	}
}
