package cli

import "fmt"

// ColorMode controls when the summary line is styled.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // color when stdout is a terminal
	ColorAlways                  // always use color
	ColorNever                   // never use color
)

// Config holds all configuration for a uringcat run.
type Config struct {
	Paths      []string
	BufferSize int
	ChunkSize  int // 0 means read up to BufferSize per request
	QueueDepth int
	Follow     bool
	Verbose    bool
	Color      ColorMode
}

// Validate checks that the config is valid, normalizing the chunk size.
func (c *Config) Validate() error {
	if len(c.Paths) == 0 {
		return fmt.Errorf("no input file specified")
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("invalid buffer size: %d", c.BufferSize)
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = c.BufferSize
	}
	if c.ChunkSize < 1 || c.ChunkSize > c.BufferSize {
		return fmt.Errorf("chunk size %d out of range [1, %d]", c.ChunkSize, c.BufferSize)
	}
	if c.QueueDepth < 1 {
		return fmt.Errorf("invalid queue depth: %d", c.QueueDepth)
	}
	if c.Follow && len(c.Paths) != 1 {
		return fmt.Errorf("cannot follow more than one file")
	}
	return nil
}
