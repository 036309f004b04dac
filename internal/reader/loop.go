package reader

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/dl/uringcat/internal/uring"
	"github.com/dl/uringcat/internal/watch"
)

const (
	defaultBufferSize = 4096
	defaultQueueDepth = 1
)

// Options configures a Loop.
type Options struct {
	BufferSize int  // read buffer capacity; default 4096
	ChunkSize  int  // bytes requested per read; default BufferSize
	QueueDepth int  // ring entries; default 1 (single request in flight)
	Follow     bool // after EOF, wait for modifications and keep reading
	Logger     *log.Logger
}

// Loop owns one io_uring instance for its lifetime and runs file read
// sessions over it, one request in flight at a time.
type Loop struct {
	ring  *uring.Ring
	opts  Options
	chunk int
}

// New creates a Loop and its ring. The caller must Close it.
func New(opts Options) (*Loop, error) {
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaultBufferSize
	}
	if opts.ChunkSize <= 0 || opts.ChunkSize > opts.BufferSize {
		opts.ChunkSize = opts.BufferSize
	}
	if opts.QueueDepth <= 0 {
		opts.QueueDepth = defaultQueueDepth
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	ring, err := uring.NewRing(uint32(opts.QueueDepth))
	if err != nil {
		return nil, fmt.Errorf("ring setup: %w", err)
	}

	return &Loop{
		ring:  ring,
		opts:  opts,
		chunk: opts.ChunkSize,
	}, nil
}

// Close tears down the ring.
func (l *Loop) Close() {
	l.ring.Close()
}

// ReadFile streams path to sink chunk by chunk, strictly in offset order,
// and returns the total bytes read. On a fatal error the total covers the
// bytes successfully emitted before the failure. The session descriptor is
// released on every exit path.
func (l *Loop) ReadFile(ctx context.Context, path string, sink io.Writer) (int64, error) {
	s, err := Open(path, l.opts.BufferSize)
	if err != nil {
		return 0, err
	}
	defer s.Close()

	var w *watch.Watcher
	if l.opts.Follow {
		w, err = watch.Watch(path)
		if err != nil {
			return 0, fmt.Errorf("watch %s: %w", path, err)
		}
		defer w.Close()
	}

	handlers := &handlerArena{}
	if err := handlers.register(KindData, &dataHandler{s: s, sink: sink, logger: l.opts.Logger}); err != nil {
		return 0, err
	}
	if err := handlers.register(KindEOF, eofHandler{}); err != nil {
		return 0, err
	}
	if err := handlers.register(KindError, &errorHandler{logger: l.opts.Logger}); err != nil {
		return 0, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return s.Total(), err
		}

		done, err := runCycle(l.ring, s, l.chunk, handlers)
		if err != nil {
			return s.Total(), err
		}
		if !done {
			continue
		}
		if !l.opts.Follow {
			return s.Total(), nil
		}

		// Follow mode: EOF re-arms instead of terminating.
		l.opts.Logger.Debug("eof, waiting for changes", "path", path, "offset", s.Offset())
		if err := w.WaitModify(ctx); err != nil {
			return s.Total(), err
		}
	}
}

// dataHandler emits the chunk to the sink and advances the offset. The
// buffer slice is only valid until the next submission, so the sink must
// consume it synchronously.
type dataHandler struct {
	s      *Session
	sink   io.Writer
	logger *log.Logger
}

func (h *dataHandler) HandleCompletion(c Completion) (bool, error) {
	if _, err := h.sink.Write(h.s.buf[:c.N]); err != nil {
		return true, fmt.Errorf("write output: %w", err)
	}
	h.s.advance(c.N)
	h.logger.Debug("chunk", "n", c.N, "offset", h.s.Offset())
	return false, nil
}

// eofHandler terminates the loop normally.
type eofHandler struct{}

func (eofHandler) HandleCompletion(Completion) (bool, error) {
	return true, nil
}

// errorHandler surfaces a fatal completion error, logging the no-buffer-
// space condition distinctly from other errnos.
type errorHandler struct {
	logger *log.Logger
}

func (h *errorHandler) HandleCompletion(c Completion) (bool, error) {
	var re *ReadError
	if errors.As(c.Err, &re) && re.NoBufferSpace {
		h.logger.Error("kernel reported no buffer space", "err", c.Err)
	} else {
		h.logger.Error("read completion failed", "err", c.Err)
	}
	return true, &PhaseError{Phase: PhaseCompletion, Err: c.Err}
}
