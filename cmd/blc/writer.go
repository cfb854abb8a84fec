package main

import (
	"bufio"
	"io"
)

// lineWriter buffers output but flushes at every newline, so interactive
// programs show each line as soon as it is complete.
type lineWriter struct {
	*bufio.Writer
}

func newLineWriter(w io.Writer) *lineWriter {
	return &lineWriter{Writer: bufio.NewWriter(w)}
}

func (w *lineWriter) WriteByte(b byte) error {
	if err := w.Writer.WriteByte(b); err != nil {
		return err
	}
	if b == '\n' {
		return w.Flush()
	}
	return nil
}
