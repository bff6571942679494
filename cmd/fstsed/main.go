// fstsed decorates text streams in place with per-term enrichment data drawn
// from a prebuilt FST index. Single binary, two modes: search and --build.
package main

import (
	"os"

	"github.com/erichutchins/fstsed/cmd/fstsed/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if code := cmd.ExitCode(err); code >= 0 {
			os.Exit(code)
		}
		os.Exit(1)
	}
}
