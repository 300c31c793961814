package exchange

import (
	"bytes"
	"strings"
)

// Assembler builds goods of type G from a byte stream.
type Assembler[G any] interface {
	// Assemble inspects buf and returns the number of leading bytes it
	// consumed along with any goods completed by them. Bytes beyond n are
	// offered again, with more data appended, on the next call.
	Assemble(buf []byte) (n int, goods []G)
	// Flush returns a final good, if any, from bytes that Assemble left
	// unconsumed when the stream ended.
	Flush(rest []byte) (G, bool)
}

// Disassembler breaks goods of type G into bytes.
type Disassembler[G any] interface {
	Disassemble(good G) []byte
}

// LineAssembler assembles one string per newline-terminated line. A trailing
// carriage return is stripped. A final unterminated line is produced on
// Flush.
type LineAssembler struct{}

// Assemble splits buf at newlines.
func (LineAssembler) Assemble(buf []byte) (int, []string) {
	var goods []string
	n := 0
	for {
		i := bytes.IndexByte(buf[n:], '\n')
		if i < 0 {
			return n, goods
		}
		line := string(buf[n : n+i])
		goods = append(goods, strings.TrimSuffix(line, "\r"))
		n += i + 1
	}
}

// Flush produces the final unterminated line, if any.
func (LineAssembler) Flush(rest []byte) (string, bool) {
	if len(rest) == 0 {
		return "", false
	}
	return strings.TrimSuffix(string(rest), "\r"), true
}

// LineDisassembler writes each string as a newline-terminated line.
type LineDisassembler struct{}

// Disassemble appends a newline to good.
func (LineDisassembler) Disassemble(good string) []byte {
	return append([]byte(good), '\n')
}
