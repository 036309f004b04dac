package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/unix"

	"github.com/dl/uringcat/internal/output"
	"github.com/dl/uringcat/internal/reader"
)

// Run executes the read with the given config.
// Returns exit code: 0 = success, 1 = fatal error.
func Run(cfg Config) int {
	level := log.WarnLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level: level,
	})

	// Determine color mode
	useColor := false
	switch cfg.Color {
	case ColorAlways:
		useColor = true
	case ColorNever:
		useColor = false
	case ColorAuto:
		useColor = output.StdoutIsTerminal()
	}
	var styles output.Styles
	if useColor {
		styles = output.NewStyles()
	} else {
		styles = output.NoStyles()
	}

	loop, err := reader.New(reader.Options{
		BufferSize: cfg.BufferSize,
		ChunkSize:  cfg.ChunkSize,
		QueueDepth: cfg.QueueDepth,
		Follow:     cfg.Follow,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("io_uring setup failed", "err", err)
		return 1
	}
	defer loop.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	defer stop()

	w := output.NewWriter()
	for _, path := range cfg.Paths {
		total, err := loop.ReadFile(ctx, path, w)
		if err != nil && !errors.Is(err, context.Canceled) {
			var pe *reader.PhaseError
			if errors.As(err, &pe) {
				logger.Error("read failed", "path", path, "phase", pe.Phase, "err", pe.Err)
			} else {
				logger.Error("read failed", "path", path, "err", err)
			}
			// Partial progress is still reported.
			w.Write([]byte(output.Summary(styles, total)))
			return 1
		}
		w.Write([]byte(output.Summary(styles, total)))
		if err != nil {
			// Interrupted (follow mode): normal termination.
			return 0
		}
	}

	return 0
}
