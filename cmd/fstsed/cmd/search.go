package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/erichutchins/fstsed/internal/adapters/vellum"
	"github.com/erichutchins/fstsed/internal/app"
	"github.com/erichutchins/fstsed/internal/ports"
)

// runSearch loads the index once and streams every input source through it
// sequentially, in argument order. Output lines keep input order.
func runSearch(args []string) error {
	idx, err := vellum.Open(flagIndex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fstsed: %v\n", err)
		return exitErr{1}
	}
	defer idx.Close()

	opts := ports.SearchOptions{
		IndexPath:    flagIndex,
		Template:     flagTemplate,
		JSONMode:     flagJSON,
		OnlyMatching: flagOnly,
		Color:        resolveColor(flagColor),
	}
	eng, err := app.NewEngine(idx.NewWalker(), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fstsed: %v\n", err)
		return exitErr{2}
	}

	out := bufio.NewWriterSize(os.Stdout, 64*1024)
	defer out.Flush()

	if len(args) == 0 {
		args = []string{"-"}
	}
	for _, path := range args {
		if err := searchPath(eng, path, out); err != nil {
			fmt.Fprintf(os.Stderr, "fstsed: %v\n", err)
			return exitErr{1}
		}
	}
	return nil
}

func searchPath(eng *app.Engine, path string, out *bufio.Writer) error {
	if path == "-" {
		return searchReader(eng, os.Stdin, out)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := searchReader(eng, f, out); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func searchReader(eng *app.Engine, r io.Reader, out *bufio.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), app.MaxLineBytes)

	var buf bytes.Buffer
	for scanner.Scan() {
		buf.Reset()
		eng.ProcessLine(scanner.Bytes(), &buf)
		if _, err := out.Write(buf.Bytes()); err != nil {
			return err
		}
		// In only-matching mode the engine emits newline-terminated
		// decorations itself and non-matching lines produce nothing.
		if !flagOnly {
			if err := out.WriteByte('\n'); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}
