package exchange

import (
	"sync"
	"sync/atomic"
)

// Trigger is a latch that can be activated but never deactivated.
//
// Producing any good activates the trigger. Consuming returns ErrEmptyStock
// until the trigger is activated and succeeds on every call afterwards, so a
// single activation can be observed by any number of consumers.
type Trigger struct {
	activated atomic.Bool
}

// NewTrigger creates an inactive Trigger.
func NewTrigger() *Trigger {
	return &Trigger{}
}

// Produce activates the trigger.
func (t *Trigger) Produce(struct{}) error {
	t.activated.Store(true)
	return nil
}

// Activate is shorthand for producing to the trigger.
func (t *Trigger) Activate() {
	t.activated.Store(true)
}

// Consume reports the activation.
func (t *Trigger) Consume() (struct{}, error) {
	if !t.activated.Load() {
		return struct{}{}, ErrEmptyStock
	}
	return struct{}{}, nil
}

// Delivery is a market holding at most one good, produced once and consumed
// once. Producing to an occupied delivery returns ErrFullStock; consuming
// after the good was taken returns ErrEmptyStock again.
type Delivery[G any] struct {
	mu    sync.Mutex
	good  *G
	taken bool
}

// NewDelivery creates an empty Delivery.
func NewDelivery[G any]() *Delivery[G] {
	return &Delivery[G]{}
}

// Produce stores good for the single consumption.
func (d *Delivery[G]) Produce(good G) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.good != nil || d.taken {
		return ErrFullStock
	}
	d.good = &good
	return nil
}

// Consume takes the delivered good.
func (d *Delivery[G]) Consume() (G, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.good == nil {
		var zero G
		return zero, ErrEmptyStock
	}
	good := *d.good
	d.good = nil
	d.taken = true
	return good, nil
}
