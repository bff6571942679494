package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/erichutchins/fstsed/internal/adapters/vellum"
	"github.com/erichutchins/fstsed/internal/app"
	"github.com/erichutchins/fstsed/internal/ports"
)

// runBuild constructs the index artifact from one NDJSON source: the first
// file argument, or stdin.
func runBuild(args []string) error {
	if len(args) > 1 {
		fmt.Fprintln(os.Stderr, "fstsed: build mode takes a single input source")
		return exitErr{2}
	}

	var in io.Reader = os.Stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "fstsed: %v\n", err)
			return exitErr{1}
		}
		defer f.Close()
		in = bufio.NewReaderSize(f, 64*1024)
	}

	w, err := vellum.NewWriter(flagIndex, flagZstd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fstsed: %v\n", err)
		return exitErr{1}
	}

	n, err := app.Build(in, w, ports.BuildOptions{
		OutputPath:   flagIndex,
		KeyField:     flagKey,
		AssumeSorted: flagSorted,
		Zstd:         flagZstd,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "fstsed: build: %v\n", err)
		return exitErr{1}
	}

	fmt.Fprintf(os.Stderr, "fstsed: wrote %d entries to %s\n", n, flagIndex)
	return nil
}
