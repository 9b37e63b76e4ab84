// Package observe provides a process-wide observable value with subscriptions.
package observe

import "sync"

// Value holds the latest value of T and fans it out to subscribers.
// There is exactly one logical writer per Value; readers only subscribe or Get.
type Value[T comparable] struct {
	mu   sync.RWMutex
	cur  T
	subs map[*Subscription[T]]struct{}
}

// NewValue creates a Value holding initial.
func NewValue[T comparable](initial T) *Value[T] {
	return &Value[T]{
		cur:  initial,
		subs: make(map[*Subscription[T]]struct{}),
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cur
}

// Set replaces the current value and notifies subscribers.
// Setting a value equal to the current one is a no-op and returns false.
func (v *Value[T]) Set(next T) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if next == v.cur {
		return false
	}
	v.cur = next
	for sub := range v.subs {
		sub.offer(next)
	}
	return true
}

// Subscribe registers a subscriber whose channel receives the current value
// immediately and every later change. When the buffer is full the oldest
// pending value is dropped so the writer never blocks.
func (v *Value[T]) Subscribe(buffer int) *Subscription[T] {
	if buffer < 1 {
		buffer = 1
	}
	sub := &Subscription[T]{
		ch:     make(chan T, buffer),
		parent: v,
	}

	v.mu.Lock()
	sub.offer(v.cur)
	v.subs[sub] = struct{}{}
	v.mu.Unlock()

	return sub
}

func (v *Value[T]) remove(sub *Subscription[T]) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.subs[sub]; ok {
		delete(v.subs, sub)
		close(sub.ch)
	}
}

// Subscription is a registered reader of a Value.
type Subscription[T comparable] struct {
	ch     chan T
	parent *Value[T]
	once   sync.Once
}

// C returns the channel of updates. It is closed by Close.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Close unregisters the subscription. Safe to call multiple times.
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		s.parent.remove(s)
	})
}

// offer is called with the parent lock held.
func (s *Subscription[T]) offer(val T) {
	select {
	case s.ch <- val:
		return
	default:
	}
	// Full: drop the oldest pending value.
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- val:
	default:
	}
}
