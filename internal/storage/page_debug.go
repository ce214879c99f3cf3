package storage

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"unicode"
)

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Fprintf(format string, a ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, a...)
}

// printable -> itself, else '.'
func asciiPreview(b []byte) string {
	var buf bytes.Buffer
	for _, c := range b {
		r := rune(c)
		if c < utf8RuneSelf && unicode.IsPrint(r) {
			buf.WriteRune(r)
		} else {
			buf.WriteByte('.')
		}
	}
	return buf.String()
}

const (
	utf8RuneSelf = 0x80
	dumpWidth    = 16
)

// Dump writes n bytes starting at off as hex rows of 16 bytes with an ASCII
// column, prefixed by the in-page offset.
func (p *Page) Dump(w io.Writer, off, n int) error {
	if n < 0 {
		return ErrOffsetOutOfRange
	}
	if err := p.bounds(off, n); err != nil {
		return err
	}
	ew := &errWriter{w: w}
	data := p.Data()[off : off+n]
	for i := 0; i < len(data) && ew.err == nil; i += dumpWidth {
		end := min(i+dumpWidth, len(data))
		row := data[i:end]
		ew.Fprintf("%04x  %-*s  |%s|\n", off+i, dumpWidth*2, hex.EncodeToString(row), asciiPreview(row))
	}
	return ew.err
}

// DumpString is Dump into a string; errors are rendered inline.
func (p *Page) DumpString(off, n int) string {
	var b bytes.Buffer
	if err := p.Dump(&b, off, n); err != nil {
		_, _ = b.WriteString("<dump error: " + err.Error() + ">\n")
	}
	return b.String()
}
