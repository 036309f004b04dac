// Package output writes file content and the final summary to stdout.
package output

import (
	"os"

	"golang.org/x/sys/unix"
)

// Writer streams chunks to a descriptor using writev. It implements
// io.Writer so it can serve as the read loop's sink; chunks are written
// verbatim, in arrival order, never buffered until end.
type Writer struct {
	fd int
}

// NewWriter creates a Writer that writes to stdout.
func NewWriter() *Writer {
	return &Writer{fd: int(os.Stdout.Fd())}
}

// NewWriterFd creates a Writer for an arbitrary descriptor.
func NewWriterFd(fd int) *Writer {
	return &Writer{fd: fd}
}

// Write writes all of p, retrying short writes.
func (w *Writer) Write(p []byte) (int, error) {
	total := len(p)
	for len(p) > 0 {
		iovs := [][]byte{p}
		n, err := unix.Writev(w.fd, iovs)
		if err != nil {
			return total - len(p), err
		}
		p = p[n:]
	}
	return total, nil
}
