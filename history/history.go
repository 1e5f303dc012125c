// Package history implements a bounded undo/redo history over caller-defined
// snapshots. Every designer surface keeps one History per open document.
//
// A History is owned by a single caller and is not safe for concurrent use.
package history

// DefaultMaxHistory is the undo depth used when none is configured.
const DefaultMaxHistory = 50

// History holds past snapshots, the current one, and undone snapshots that
// can be redone. Snapshots are stored as given; callers treat them as
// immutable once pushed.
type History[T any] struct {
	past       []T
	current    T
	future     []T
	maxHistory int
	onChange   func(current T)
}

// Option configures a History.
type Option[T any] func(*History[T])

// WithMaxHistory bounds the number of undo steps kept. Values below 1 fall
// back to DefaultMaxHistory.
func WithMaxHistory[T any](n int) Option[T] {
	return func(h *History[T]) {
		if n > 0 {
			h.maxHistory = n
		}
	}
}

// WithOnChange registers a function called with the new current snapshot
// after every Push, Undo, Redo or Reset that changes state.
func WithOnChange[T any](fn func(current T)) Option[T] {
	return func(h *History[T]) {
		h.onChange = fn
	}
}

// New creates a History whose current snapshot is initial.
//
// Example:
//
//	h := history.New(layout, history.WithMaxHistory[Layout](100))
//	h.Push(moved)
//	h.Undo() // back to layout
func New[T any](initial T, opts ...Option[T]) *History[T] {
	h := &History[T]{
		current:    initial,
		maxHistory: DefaultMaxHistory,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Push makes next the current snapshot. The previous current is appended to
// the past, the oldest entries are dropped beyond the max depth, and the
// redo stack is cleared.
func (h *History[T]) Push(next T) {
	h.past = append(h.past, h.current)
	if over := len(h.past) - h.maxHistory; over > 0 {
		// Copy so the dropped snapshots are not kept alive by the backing array.
		h.past = append([]T(nil), h.past[over:]...)
	}
	h.future = nil
	h.current = next
	h.notify()
}

// Undo restores the most recent past snapshot. It is a no-op when there is
// nothing to undo. The replaced current goes to the front of the redo stack.
func (h *History[T]) Undo() {
	if len(h.past) == 0 {
		return
	}
	last := len(h.past) - 1
	previous := h.past[last]
	var zero T
	h.past[last] = zero
	h.past = h.past[:last]

	h.future = append([]T{h.current}, h.future...)
	h.current = previous
	h.notify()
}

// Redo re-applies the first undone snapshot. It is a no-op when there is
// nothing to redo. The replaced current goes to the end of the past.
func (h *History[T]) Redo() {
	if len(h.future) == 0 {
		return
	}
	next := h.future[0]
	h.future = h.future[1:]
	if len(h.future) == 0 {
		h.future = nil
	}

	h.past = append(h.past, h.current)
	h.current = next
	h.notify()
}

// Reset discards both stacks and sets the current snapshot, for example
// after loading a saved document. The previous state cannot be undone.
func (h *History[T]) Reset(state T) {
	h.past = nil
	h.future = nil
	h.current = state
	h.notify()
}

// Current returns the current snapshot.
func (h *History[T]) Current() T {
	return h.current
}

// CanUndo reports whether Undo would change state.
func (h *History[T]) CanUndo() bool {
	return len(h.past) > 0
}

// CanRedo reports whether Redo would change state.
func (h *History[T]) CanRedo() bool {
	return len(h.future) > 0
}

// Past returns a copy of the undo stack, oldest first.
func (h *History[T]) Past() []T {
	return append([]T(nil), h.past...)
}

// Future returns a copy of the redo stack, next redo first.
func (h *History[T]) Future() []T {
	return append([]T(nil), h.future...)
}

// MaxHistory returns the configured undo depth.
func (h *History[T]) MaxHistory() int {
	return h.maxHistory
}

func (h *History[T]) notify() {
	if h.onChange != nil {
		h.onChange(h.current)
	}
}
