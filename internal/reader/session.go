package reader

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Session tracks one file's scan: the open descriptor, the next read
// offset, the running byte total, and the single reusable buffer. At most
// one read is ever in flight, so the buffer is never aliased — the kernel
// write and the caller's consumption are sequenced by the blocking wait.
type Session struct {
	fd     int
	offset uint64
	total  int64
	buf    []byte
}

// Open opens path read-only and returns a session positioned at offset 0.
func Open(path string, bufSize int) (*Session, error) {
	fd, err := openFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Session{
		fd:  fd,
		buf: make([]byte, bufSize),
	}, nil
}

// openFile opens a file with O_NOATIME, falling back without it.
func openFile(path string) (int, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NOATIME, 0)
	if err != nil {
		fd, err = unix.Open(path, unix.O_RDONLY, 0)
	}
	return fd, err
}

// advance moves the offset past n successfully read bytes and adds them to
// the total. Called only on a data completion, never on EOF or error.
func (s *Session) advance(n int) {
	s.offset += uint64(n)
	s.total += int64(n)
}

// Offset returns the file position of the next read.
func (s *Session) Offset() uint64 {
	return s.offset
}

// Total returns the bytes read so far.
func (s *Session) Total() int64 {
	return s.total
}

// Close releases the descriptor. Safe to call more than once; only the
// first call closes.
func (s *Session) Close() error {
	if s.fd < 0 {
		return nil
	}
	err := unix.Close(s.fd)
	s.fd = -1
	return err
}
