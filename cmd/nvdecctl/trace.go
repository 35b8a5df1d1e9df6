package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var traceCmd = &cobra.Command{
	Use:   "trace <path>",
	Short: "Tail an NVD_LOG trace file, following new lines as they're appended",
	Long: `trace follows the fixed trace-line format the driver writes when NVD_LOG
names a file path (the "1" → stdout form has nothing to tail). Ctrl-C stops it.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runTrace(args[0])
	},
}

// runTrace is a minimal follow-mode tail: read what's there, then poll for
// appended bytes until interrupted. The driver's log format is one line per
// call and always flushed, so a fixed-interval poll never misses a line.
func runTrace(path string) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open %s: %v\n", path, err)
		os.Exit(1)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	if _, err := io.Copy(os.Stdout, reader); err != nil {
		fmt.Fprintf(os.Stderr, "read error: %v\n", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sigChan:
			return
		case <-ticker.C:
			if _, err := io.Copy(os.Stdout, reader); err != nil {
				fmt.Fprintf(os.Stderr, "read error: %v\n", err)
				return
			}
		}
	}
}
