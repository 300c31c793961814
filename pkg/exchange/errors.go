package exchange

import (
	"errors"
	"fmt"
)

// Sentinel failures shared by all markets.
//
// ErrEmptyStock and ErrFullStock are insufficiencies: temporary conditions
// that resolve on their own while the market operates normally. ErrClosed is
// permanent: the other side of the market has withdrawn.
var (
	// ErrEmptyStock reports that no good was available to consume.
	ErrEmptyStock = errors.New("empty stock")
	// ErrFullStock reports that there was no room to produce a good.
	ErrFullStock = errors.New("full stock")
	// ErrClosed reports that the market is closed.
	ErrClosed = errors.New("market closed")
)

// IsInsufficiency reports whether err is a temporary lack of goods or room
// rather than a fault. Callers that poll should retry on insufficiencies and
// give up on everything else.
func IsInsufficiency(err error) bool {
	return errors.Is(err, ErrEmptyStock) || errors.Is(err, ErrFullStock)
}

// PanicError wraps a recovered panic value from a Worker call.
type PanicError struct {
	// Value is the value passed to panic.
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
