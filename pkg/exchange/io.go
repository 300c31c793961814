package exchange

import (
	"context"
	"errors"
	"io"
	"sync"
)

// Reader consumes goods assembled from the bytes of an io.Reader.
//
// io.Reader.Read gives no guarantee about blocking, so the reads run on a
// background worker that queues the raw bytes. Consume drains the queue,
// feeds an Assembler and hands out the completed goods. When the stream ends
// cleanly the Reader reports ErrClosed once its goods are drained; a read
// failure is reported as a fault.
type Reader[G any] struct {
	mu      sync.Mutex
	parts   *Queue[[]byte]
	pending []byte
	goods   []G
	flushed bool
	asm     Assembler[G]
	worker  *Worker[struct{}]
}

// NewReader creates a Reader that assembles goods from r using asm.
func NewReader[G any](r io.Reader, asm Assembler[G]) *Reader[G] {
	parts := NewQueue[[]byte]()
	reader := &Reader[G]{parts: parts, asm: asm}
	reader.worker = Start(func(ctx context.Context) (struct{}, error) {
		buf := make([]byte, 1024)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				part := make([]byte, n)
				copy(part, buf[:n])
				// The parts queue is never closed, so this cannot fail.
				_ = parts.Produce(part)
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					return struct{}{}, nil
				}
				return struct{}{}, err
			}
			if ctx.Err() != nil {
				return struct{}{}, ctx.Err()
			}
		}
	})
	return reader
}

// Consume retrieves the next assembled good.
func (r *Reader[G]) Consume() (G, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.drain()
	if good, ok := r.next(); ok {
		return good, nil
	}

	var zero G
	if _, err := r.worker.Consume(); err == nil {
		// The worker may have queued its final part between the drain above
		// and finishing; pick it up before flushing the tail.
		r.drain()
		if good, ok := r.next(); ok {
			return good, nil
		}
		// Stream ended cleanly; flush any unterminated tail once.
		if !r.flushed {
			r.flushed = true
			if good, ok := r.asm.Flush(r.pending); ok {
				r.pending = nil
				return good, nil
			}
		}
		return zero, ErrClosed
	} else if !errors.Is(err, ErrEmptyStock) {
		return zero, err
	}
	return zero, ErrEmptyStock
}

// drain pulls everything the read worker has queued through the assembler.
func (r *Reader[G]) drain() {
	for {
		part, err := r.parts.Consume()
		if err != nil {
			break
		}
		r.pending = append(r.pending, part...)
	}
	n, goods := r.asm.Assemble(r.pending)
	r.pending = r.pending[n:]
	r.goods = append(r.goods, goods...)
}

func (r *Reader[G]) next() (G, bool) {
	if len(r.goods) == 0 {
		var zero G
		return zero, false
	}
	good := r.goods[0]
	r.goods = r.goods[1:]
	return good, true
}

// Cancel requests that the read worker stop after its current read.
func (r *Reader[G]) Cancel() {
	r.worker.Cancel()
}

// Writer produces goods as bytes written to an io.Writer.
//
// io.Writer.Write gives no guarantee about blocking, so the writes run on a
// background worker fed by a queue. Produce fails with ErrClosed once the
// worker has stopped and with the write fault once one has occurred.
type Writer[G any] struct {
	bytes  *Queue[[]byte]
	dis    Disassembler[G]
	worker *Worker[struct{}]
}

// NewWriter creates a Writer that disassembles goods into w using dis. If w
// is also an io.Closer it is closed when the write worker stops, so stream
// readers on the other end observe EOF.
func NewWriter[G any](w io.Writer, dis Disassembler[G]) *Writer[G] {
	queue := NewQueue[[]byte]()
	writer := &Writer[G]{bytes: queue, dis: dis}
	writer.worker = Start(func(ctx context.Context) (struct{}, error) {
		if closer, ok := w.(io.Closer); ok {
			defer closer.Close()
		}
		for {
			part, err := Demand(ctx, queue)
			if err != nil {
				if errors.Is(err, ErrClosed) || errors.Is(err, context.Canceled) {
					return struct{}{}, nil
				}
				return struct{}{}, err
			}
			if _, err := w.Write(part); err != nil {
				return struct{}{}, err
			}
		}
	})
	return writer
}

// Produce queues good for writing.
func (w *Writer[G]) Produce(good G) error {
	if _, err := w.worker.Consume(); err == nil {
		return ErrClosed
	} else if !errors.Is(err, ErrEmptyStock) {
		return err
	}
	return w.bytes.Produce(w.dis.Disassemble(good))
}

// Close stops the write worker once the queued bytes are written.
func (w *Writer[G]) Close() {
	w.bytes.Close()
}

// Cancel stops the write worker without draining the queue.
func (w *Writer[G]) Cancel() {
	w.worker.Cancel()
}
