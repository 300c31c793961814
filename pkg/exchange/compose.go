package exchange

import "errors"

// FilterConsumer wraps c so that only goods accepted by valid are consumed.
// Rejected goods are discarded.
func FilterConsumer[G any](c Consumer[G], valid func(G) bool) Consumer[G] {
	return ConsumerFunc[G](func() (G, error) {
		for {
			good, err := c.Consume()
			if err != nil {
				var zero G
				return zero, err
			}
			if valid(good) {
				return good, nil
			}
		}
	})
}

// FilterProducer wraps p so that only goods accepted by valid are produced.
// Rejected goods are silently dropped.
func FilterProducer[G any](p Producer[G], valid func(G) bool) Producer[G] {
	return ProducerFunc[G](func(good G) error {
		if !valid(good) {
			return nil
		}
		return p.Produce(good)
	})
}

// MapConsumer wraps c so that every consumed good is converted by f.
func MapConsumer[A, B any](c Consumer[A], f func(A) B) Consumer[B] {
	return ConsumerFunc[B](func() (B, error) {
		good, err := c.Consume()
		if err != nil {
			var zero B
			return zero, err
		}
		return f(good), nil
	})
}

// MapProducer wraps p so that every good is converted by f before production.
func MapProducer[A, B any](p Producer[B], f func(A) B) Producer[A] {
	return ProducerFunc[A](func(good A) error {
		return p.Produce(f(good))
	})
}

// Collector consumes goods from any number of consumers, preferring the ones
// added first.
type Collector[G any] struct {
	consumers []Consumer[G]
}

// NewCollector creates an empty Collector.
func NewCollector[G any]() *Collector[G] {
	return &Collector[G]{}
}

// Push adds c to the end of the consumers held by the Collector.
func (c *Collector[G]) Push(consumer Consumer[G]) {
	c.consumers = append(c.consumers, consumer)
}

// Consume retrieves a good from the first consumer that has one. It returns
// ErrEmptyStock only when every consumer is empty; a fault from any consumer
// stops the search.
func (c *Collector[G]) Consume() (G, error) {
	var zero G
	err := error(ErrEmptyStock)
	for _, consumer := range c.consumers {
		good, consumeErr := consumer.Consume()
		if consumeErr == nil {
			return good, nil
		}
		if !errors.Is(consumeErr, ErrEmptyStock) {
			return zero, consumeErr
		}
		err = consumeErr
	}
	return zero, err
}

// Distributor produces each good to every producer it holds.
type Distributor[G any] struct {
	producers []Producer[G]
}

// NewDistributor creates an empty Distributor.
func NewDistributor[G any]() *Distributor[G] {
	return &Distributor[G]{}
}

// Push adds p to the end of the producers held by the Distributor.
func (d *Distributor[G]) Push(producer Producer[G]) {
	d.producers = append(d.producers, producer)
}

// Produce adds good to every producer, stopping at the first failure.
func (d *Distributor[G]) Produce(good G) error {
	for _, producer := range d.producers {
		if err := producer.Produce(good); err != nil {
			return err
		}
	}
	return nil
}

// Stripper consumes the parts of composite goods, one part at a time.
type Stripper[C, P any] struct {
	consumer Consumer[C]
	strip    func(C) []P
	parts    *Queue[P]
}

// NewStripper creates a Stripper that breaks the goods of c apart with strip.
func NewStripper[C, P any](c Consumer[C], strip func(C) []P) *Stripper[C, P] {
	return &Stripper[C, P]{consumer: c, strip: strip, parts: NewQueue[P]()}
}

// Consume retrieves the next part, consuming one composite when none are
// buffered. A composite whose strip yields no parts is skipped.
func (s *Stripper[C, P]) Consume() (P, error) {
	for {
		if part, err := s.parts.Consume(); err == nil {
			return part, nil
		}
		composite, err := s.consumer.Consume()
		if err != nil {
			var zero P
			return zero, err
		}
		for _, part := range s.strip(composite) {
			// The parts queue is never closed, so this cannot fail.
			_ = s.parts.Produce(part)
		}
	}
}
