package exchange

import "sync"

// Queue is an unbounded multi-producer multi-consumer FIFO market.
//
// A Queue can be closed, which prevents producing new goods while allowing
// consumers to drain the goods already queued. Consuming from a closed,
// drained Queue returns ErrClosed. A Queue that is never closed cannot fail
// except with ErrEmptyStock.
type Queue[G any] struct {
	mu     sync.Mutex
	goods  []G
	closed bool
}

// NewQueue creates a new empty Queue.
func NewQueue[G any]() *Queue[G] {
	return &Queue[G]{}
}

// Produce appends good to the queue.
func (q *Queue[G]) Produce(good G) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	q.goods = append(q.goods, good)
	return nil
}

// Consume removes and returns the oldest good.
func (q *Queue[G]) Consume() (G, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.goods) == 0 {
		var zero G
		if q.closed {
			return zero, ErrClosed
		}
		return zero, ErrEmptyStock
	}
	good := q.goods[0]
	q.goods = q.goods[1:]
	return good, nil
}

// Close prevents further production. Queued goods remain consumable.
func (q *Queue[G]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

// Len returns the number of queued goods.
func (q *Queue[G]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.goods)
}
