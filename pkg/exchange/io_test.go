package exchange

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a goroutine-safe bytes.Buffer for observing async writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestReader_ConsumesLines(t *testing.T) {
	r := NewReader[string](strings.NewReader("one\ntwo\nthree\n"), LineAssembler{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for _, want := range []string{"one", "two", "three"} {
		good, err := Demand(ctx, r)
		require.NoError(t, err)
		assert.Equal(t, want, good)
	}

	require.Eventually(t, func() bool {
		_, err := r.Consume()
		return errors.Is(err, ErrClosed)
	}, time.Second, time.Millisecond)
}

func TestReader_FlushesUnterminatedTail(t *testing.T) {
	r := NewReader[string](strings.NewReader("complete\ntail"), LineAssembler{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	good, err := Demand(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, "complete", good)

	good, err = Demand(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, "tail", good)

	require.Eventually(t, func() bool {
		_, err := r.Consume()
		return errors.Is(err, ErrClosed)
	}, time.Second, time.Millisecond)
}

// hookedAssembler runs a side effect on the first Assemble call.
type hookedAssembler struct {
	LineAssembler
	once sync.Once
	hook func()
}

func (h *hookedAssembler) Assemble(buf []byte) (int, []string) {
	h.once.Do(h.hook)
	return h.LineAssembler.Assemble(buf)
}

func TestReader_AssemblesPartQueuedAtStreamEnd(t *testing.T) {
	// A part can land in the queue after Consume has drained it but before
	// the read worker's completion is observed; it must still reach the
	// assembler before the tail is flushed.
	asm := &hookedAssembler{}
	r := NewReader[string](strings.NewReader("ta"), asm)
	asm.hook = func() { _ = r.parts.Produce([]byte("il")) }

	require.Eventually(t, func() bool {
		_, err := r.worker.Consume()
		return !errors.Is(err, ErrEmptyStock)
	}, time.Second, time.Millisecond)

	good, err := r.Consume()
	require.NoError(t, err)
	assert.Equal(t, "tail", good)

	_, err = r.Consume()
	assert.ErrorIs(t, err, ErrClosed)
}

// faultReader fails after yielding its content.
type faultReader struct {
	content []byte
	fault   error
}

func (f *faultReader) Read(p []byte) (int, error) {
	if len(f.content) == 0 {
		return 0, f.fault
	}
	n := copy(p, f.content)
	f.content = f.content[n:]
	return n, nil
}

func TestReader_PropagatesFault(t *testing.T) {
	fault := errors.New("stream fault")
	r := NewReader[string](&faultReader{content: []byte("line\n"), fault: fault}, LineAssembler{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	good, err := Demand(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, "line", good)

	require.Eventually(t, func() bool {
		_, err := r.Consume()
		return err != nil && !errors.Is(err, ErrEmptyStock)
	}, time.Second, time.Millisecond)

	_, err = r.Consume()
	assert.ErrorIs(t, err, fault)
}

func TestWriter_WritesLines(t *testing.T) {
	buf := &syncBuffer{}
	w := NewWriter[string](buf, LineDisassembler{})

	require.NoError(t, w.Produce("one"))
	require.NoError(t, w.Produce("two"))
	w.Close()

	require.Eventually(t, func() bool {
		return errors.Is(w.Produce("late"), ErrClosed)
	}, time.Second, time.Millisecond)

	assert.Equal(t, "one\ntwo\n", buf.String())
}

func TestWriter_PropagatesFault(t *testing.T) {
	fault := errors.New("write fault")
	w := NewWriter[string](failWriter{fault}, LineDisassembler{})

	_ = w.Produce("doomed")

	require.Eventually(t, func() bool {
		err := w.Produce("after fault")
		return err != nil && !errors.Is(err, ErrClosed)
	}, time.Second, time.Millisecond)

	assert.ErrorIs(t, w.Produce("again"), fault)
}

type failWriter struct {
	fault error
}

func (f failWriter) Write([]byte) (int, error) {
	return 0, f.fault
}

var _ io.Writer = failWriter{}
