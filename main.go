// Command uringcat streams files to stdout through io_uring, one read
// request in flight at a time, and reports the total bytes read.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dl/uringcat/internal/cli"
)

func main() {
	var cfg cli.Config
	var colorFlag string

	root := &cobra.Command{
		Use:           "uringcat [flags] <file>...",
		Short:         "sequential file reader built on io_uring",
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Paths = args

			switch colorFlag {
			case "auto":
				cfg.Color = cli.ColorAuto
			case "always":
				cfg.Color = cli.ColorAlways
			case "never":
				cfg.Color = cli.ColorNever
			default:
				return fmt.Errorf("invalid --color value %q (auto|always|never)", colorFlag)
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			cmd.SilenceUsage = true
			os.Exit(cli.Run(cfg))
			return nil
		},
	}

	flags := root.Flags()
	flags.IntVar(&cfg.BufferSize, "buffer-size", 4096, "read buffer capacity in bytes")
	flags.IntVar(&cfg.ChunkSize, "chunk-size", 0, "bytes requested per read (default: buffer size)")
	flags.IntVar(&cfg.QueueDepth, "queue-depth", 1, "io_uring submission queue entries")
	flags.BoolVarP(&cfg.Follow, "follow", "f", false, "keep reading as the file grows")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "debug logging to stderr")
	flags.StringVar(&colorFlag, "color", "auto", "summary coloring: auto, always, never")

	// Config file flags come first so the command line overrides them.
	root.SetArgs(append(cli.LoadConfigArgs(), os.Args[1:]...))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "uringcat:", err)
		os.Exit(2)
	}
}
