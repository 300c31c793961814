package exchange

import "sync"

// NewChannel creates a connected Sender and Receiver backed by a buffered
// channel holding at most capacity goods. Capacity must be at least 1; use a
// Queue for a market without a stock limit.
func NewChannel[G any](capacity int) (*Sender[G], *Receiver[G]) {
	if capacity < 1 {
		capacity = 1
	}
	ch := make(chan G, capacity)
	return &Sender[G]{ch: ch}, &Receiver[G]{ch: ch}
}

// Sender is the producing half of a channel market.
type Sender[G any] struct {
	mu     sync.RWMutex
	ch     chan G
	closed bool
}

// Produce adds good to the channel without blocking.
func (s *Sender[G]) Produce(good G) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	select {
	case s.ch <- good:
		return nil
	default:
		return ErrFullStock
	}
}

// Close withdraws the supply. Goods already in the channel remain consumable.
func (s *Sender[G]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Receiver is the consuming half of a channel market.
type Receiver[G any] struct {
	ch chan G
}

// Consume retrieves the next good from the channel without blocking.
func (r *Receiver[G]) Consume() (G, error) {
	select {
	case good, ok := <-r.ch:
		if !ok {
			var zero G
			return zero, ErrClosed
		}
		return good, nil
	default:
		var zero G
		return zero, ErrEmptyStock
	}
}
