// Package output renders command output in text or JSON, with styling that
// adapts to the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
)

// Mode selects the output format.
type Mode string

const (
	// ModeAuto picks text on a terminal and plain text without styling
	// otherwise.
	ModeAuto Mode = "auto"
	// ModeText forces human-readable text output.
	ModeText Mode = "text"
	// ModeJSON forces machine-readable JSON output.
	ModeJSON Mode = "json"
)

// Renderer writes command output in the selected mode.
type Renderer struct {
	w      io.Writer
	errW   io.Writer
	mode   Mode
	styles *Styles
	isTTY  bool
}

// NewRenderer creates a Renderer writing to w and errW. Nil writers mean
// stdout and stderr.
func NewRenderer(w, errW io.Writer, mode Mode) *Renderer {
	if w == nil {
		w = os.Stdout
	}
	if errW == nil {
		errW = os.Stderr
	}
	isTTY := false
	if f, ok := w.(*os.File); ok {
		isTTY = termenv.NewOutput(f).EnvColorProfile() != termenv.Ascii
	}
	return &Renderer{
		w:      w,
		errW:   errW,
		mode:   mode,
		styles: newStyles(isTTY),
		isTTY:  isTTY,
	}
}

// Writer returns the underlying writer.
func (r *Renderer) Writer() io.Writer {
	return r.w
}

// ErrWriter returns the error writer.
func (r *Renderer) ErrWriter() io.Writer {
	return r.errW
}

// EffectiveMode resolves ModeAuto against the terminal.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	return ModeText
}

// Styles returns the lipgloss styles of this renderer. On a non-terminal
// writer the styles render plain text.
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Println writes a line.
func (r *Renderer) Println(a ...any) {
	fmt.Fprintln(r.w, a...)
}

// Printf writes formatted text.
func (r *Renderer) Printf(format string, a ...any) {
	fmt.Fprintf(r.w, format, a...)
}

// Errorln writes a line to the error writer.
func (r *Renderer) Errorln(a ...any) {
	fmt.Fprintln(r.errW, a...)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
