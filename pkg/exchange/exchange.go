// Package exchange provides producers and consumers of goods.
//
// A Consumer retrieves goods from a market and a Producer adds goods to one.
// Both are non-blocking: a Consumer reports ErrEmptyStock when nothing is
// available and a Producer reports ErrFullStock when there is no room. The
// blocking helpers Demand and Force poll under a context until the operation
// succeeds or fails for good.
//
// Markets come in several shapes: an unbounded Queue, a bounded channel pair
// (NewChannel), one-shot handoffs (Delivery), latches (Trigger), background
// calls (Worker), byte streams (Reader, Writer) and child processes
// (Process). Composition helpers build filtered, mapped, fanned-in and
// fanned-out consumers and producers from simpler ones.
package exchange

import (
	"context"
	"errors"
	"iter"
	"time"
)

// Consumer retrieves goods from a market.
//
// The order in which available goods are retrieved is defined by the
// implementation.
type Consumer[G any] interface {
	// Consume attempts to retrieve the next good without blocking.
	// It returns ErrEmptyStock when no good is currently available and
	// ErrClosed when the market is closed and drained. Any other error is a
	// fault of the market itself.
	Consume() (G, error)
}

// Producer adds goods to a market.
type Producer[G any] interface {
	// Produce attempts to add good without blocking.
	// It returns ErrFullStock when there is currently no room and ErrClosed
	// when the market no longer accepts goods.
	Produce(good G) error
}

// ConsumerFunc adapts a function to the Consumer interface.
type ConsumerFunc[G any] func() (G, error)

// Consume calls f.
func (f ConsumerFunc[G]) Consume() (G, error) { return f() }

// ProducerFunc adapts a function to the Producer interface.
type ProducerFunc[G any] func(G) error

// Produce calls f.
func (f ProducerFunc[G]) Produce(good G) error { return f(good) }

// pollInterval is the delay between attempts while a blocking helper waits
// out an insufficiency.
const pollInterval = time.Millisecond

// Demand retrieves the next good, blocking until one is available, the
// consumer faults, or ctx is done.
func Demand[G any](ctx context.Context, c Consumer[G]) (G, error) {
	for {
		good, err := c.Consume()
		if err == nil {
			return good, nil
		}
		if !errors.Is(err, ErrEmptyStock) {
			var zero G
			return zero, err
		}
		select {
		case <-ctx.Done():
			var zero G
			return zero, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// Force adds good, blocking until there is room, the producer faults, or ctx
// is done.
func Force[G any](ctx context.Context, p Producer[G], good G) error {
	for {
		err := p.Produce(good)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrFullStock) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// ForceAll adds every good in order, blocking as needed.
func ForceAll[G any](ctx context.Context, p Producer[G], goods []G) error {
	for _, good := range goods {
		if err := Force(ctx, p, good); err != nil {
			return err
		}
	}
	return nil
}

// Goods returns an iterator that yields consumed goods, blocking between
// goods as needed. The iterator stops when the consumer fails or ctx is done.
func Goods[G any](ctx context.Context, c Consumer[G]) iter.Seq[G] {
	return func(yield func(G) bool) {
		for {
			good, err := Demand(ctx, c)
			if err != nil {
				return
			}
			if !yield(good) {
				return
			}
		}
	}
}
