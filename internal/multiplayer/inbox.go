package multiplayer

import "sync/atomic"

// Inbox is a bounded, non-blocking queue between transport goroutines and
// the loop goroutine. When full, the oldest entry is dropped to make room.
// An Inbox of size 1 keeps only the latest entry.
type Inbox[T any] struct {
	ch      chan T
	dropped atomic.Uint64
}

// NewInbox creates an inbox holding up to size entries.
func NewInbox[T any](size int) *Inbox[T] {
	if size < 1 {
		size = 64 // Default buffer size
	}
	return &Inbox[T]{ch: make(chan T, size)}
}

// Push enqueues v without blocking. It reports whether an entry had to be dropped.
func (b *Inbox[T]) Push(v T) (dropped bool) {
	for {
		select {
		case b.ch <- v:
			return dropped
		default:
		}
		// Buffer full, drop oldest and retry
		select {
		case <-b.ch:
			b.dropped.Add(1)
			dropped = true
		default:
		}
	}
}

// Drain hands every queued entry to fn in arrival order and returns how many were handled.
// Entries pushed while draining may be handled in the same call.
func (b *Inbox[T]) Drain(fn func(T)) int {
	n := 0
	for {
		select {
		case v := <-b.ch:
			fn(v)
			n++
		default:
			return n
		}
	}
}

// Latest discards everything but the newest queued entry and returns it.
func (b *Inbox[T]) Latest() (T, bool) {
	var (
		last T
		ok   bool
	)
	b.Drain(func(v T) { last, ok = v, true })
	return last, ok
}

// Len returns the number of queued entries.
func (b *Inbox[T]) Len() int {
	return len(b.ch)
}

// Dropped returns how many entries were evicted since creation.
func (b *Inbox[T]) Dropped() uint64 {
	return b.dropped.Load()
}
