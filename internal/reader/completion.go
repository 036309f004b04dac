// Package reader drives sequential file reads over io_uring: one request
// in flight, completions decoded and consumed in submission order, offset
// advanced only on successful transfers.
package reader

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// CompletionKind classifies a decoded completion result.
type CompletionKind uint8

const (
	KindData CompletionKind = iota // positive result: bytes transferred
	KindEOF                        // zero result: no more data
	KindError                      // negative result: negated errno
)

// Completion is the decoded outcome of one read request.
type Completion struct {
	Kind CompletionKind
	N    int   // bytes transferred, valid for KindData
	Err  error // valid for KindError
}

// ReadError is a completion that reported a negated errno. The no-buffer-
// space condition is flagged separately so diagnostics can name it; it is
// not a recovery distinction — both are fatal.
type ReadError struct {
	Errno         syscall.Errno
	NoBufferSpace bool
}

func (e *ReadError) Error() string {
	if e.NoBufferSpace {
		return "read completion: no buffer space: " + e.Errno.Error()
	}
	return "read completion: " + e.Errno.Error()
}

func (e *ReadError) Unwrap() error {
	return e.Errno
}

// Decode classifies a raw signed completion result code.
func Decode(res int32) Completion {
	switch {
	case res > 0:
		return Completion{Kind: KindData, N: int(res)}
	case res == 0:
		return Completion{Kind: KindEOF}
	default:
		errno := syscall.Errno(-res)
		return Completion{
			Kind: KindError,
			Err:  &ReadError{Errno: errno, NoBufferSpace: errno == unix.ENOBUFS},
		}
	}
}
