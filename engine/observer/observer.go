package observer

import (
	"sync"
)

// Handle identifies one registered listener. The zero Handle is never issued.
type Handle uint64

// Registry is an ordered set of listeners. Listeners are invoked in registration order;
// Notify iterates a snapshot, so listeners added or removed during a notification
// take effect from the next one.
type Registry[T any] struct {
	mu        sync.Mutex
	next      Handle
	listeners []entry[T]
}

type entry[T any] struct {
	handle Handle
	fn     func(T)
}

// Add appends a listener.
//
// Parameters:
//   - fn: the listener to append (nil is ignored)
//
// Returns:
//   - Handle: the handle to pass to Remove, or 0 if fn was nil
func (r *Registry[T]) Add(fn func(T)) Handle {
	if fn == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.listeners = append(r.listeners, entry[T]{handle: r.next, fn: fn})
	return r.next
}

// Remove unregisters the listener for handle.
//
// Parameters:
//   - h: the handle returned by Add
//
// Returns:
//   - bool: true if a listener was removed
func (r *Registry[T]) Remove(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.listeners {
		if e.handle == h {
			// Copy instead of shifting in place; an in-flight snapshot keeps the old backing array.
			next := make([]entry[T], 0, len(r.listeners)-1)
			next = append(next, r.listeners[:i]...)
			r.listeners = append(next, r.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// Notify calls every listener registered at the time of the call, in order.
func (r *Registry[T]) Notify(value T) {
	r.mu.Lock()
	snapshot := r.listeners
	r.mu.Unlock()

	for _, e := range snapshot {
		e.fn(value)
	}
}

// Len returns the number of registered listeners.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}

// Clear removes every listener.
func (r *Registry[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = nil
}
