// Package watch blocks until a single watched file changes, using raw
// inotify + epoll. It backs follow mode: after EOF the reader parks here
// until the file grows, then resumes from its current offset.
package watch

import (
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Watcher watches one file for modification.
type Watcher struct {
	inotifyFd int
	epollFd   int
	path      string
}

// Watch registers path for modification events.
func Watch(path string) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	ifd, err := unix.InotifyInit1(unix.IN_CLOEXEC | unix.IN_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("inotify_init1: %w", err)
	}

	mask := uint32(unix.IN_MODIFY | unix.IN_MOVE_SELF | unix.IN_DELETE_SELF)
	if _, err := unix.InotifyAddWatch(ifd, absPath, mask); err != nil {
		unix.Close(ifd)
		return nil, fmt.Errorf("inotify_add_watch %s: %w", absPath, err)
	}

	efd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		unix.Close(ifd)
		return nil, fmt.Errorf("epoll_create1: %w", err)
	}

	event := unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(ifd),
	}
	if err := unix.EpollCtl(efd, unix.EPOLL_CTL_ADD, ifd, &event); err != nil {
		unix.Close(efd)
		unix.Close(ifd)
		return nil, fmt.Errorf("epoll_ctl: %w", err)
	}

	return &Watcher{
		inotifyFd: ifd,
		epollFd:   efd,
		path:      absPath,
	}, nil
}

// WaitModify blocks until the file is modified, the context is cancelled,
// or the file is removed or moved away (reported as an error — the reader
// cannot resume a file that no longer exists at its path).
func (w *Watcher) WaitModify(ctx context.Context) error {
	buf := make([]byte, 4096)
	events := make([]unix.EpollEvent, 1)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		// 100ms timeout so context cancellation is noticed promptly.
		n, err := unix.EpollWait(w.epollFd, events, 100)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("epoll_wait: %w", err)
		}
		if n == 0 {
			continue
		}

		nbytes, err := unix.Read(w.inotifyFd, buf)
		if err != nil {
			if err == unix.EAGAIN {
				continue
			}
			return fmt.Errorf("read inotify: %w", err)
		}

		modified, gone := parseEvents(buf[:nbytes])
		if gone {
			return fmt.Errorf("watched file removed: %s", w.path)
		}
		if modified {
			return nil
		}
	}
}

// inotify event header layout:
//   int32  wd       (offset 0)
//   uint32 mask     (offset 4)
//   uint32 cookie   (offset 8)
//   uint32 len      (offset 12)
//   char   name[]   (offset 16)
const inotifyEventSize = 16

func parseEvents(buf []byte) (modified, gone bool) {
	offset := 0
	for offset+inotifyEventSize <= len(buf) {
		mask := binary.LittleEndian.Uint32(buf[offset+4:])
		nameLen := int(binary.LittleEndian.Uint32(buf[offset+12:]))
		offset += inotifyEventSize + nameLen

		if mask&unix.IN_MODIFY != 0 {
			modified = true
		}
		if mask&(unix.IN_DELETE_SELF|unix.IN_MOVE_SELF) != 0 {
			gone = true
		}
	}
	return modified, gone
}

// Close releases the inotify and epoll descriptors.
func (w *Watcher) Close() error {
	unix.Close(w.epollFd)
	return unix.Close(w.inotifyFd)
}
