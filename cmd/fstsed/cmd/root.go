package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagBuild    bool
	flagIndex    string
	flagTemplate string
	flagJSON     bool
	flagOnly     bool
	flagColor    string
	flagKey      string
	flagSorted   bool
	flagZstd     bool
)

var rootCmd = &cobra.Command{
	Use:   "fstsed [flags] [FILE ...]",
	Short: "fstsed — sed for millions of search terms",
	Long: "Match terms from a prebuilt FST index against text streams and splice\n" +
		"each term's enrichment record into the output. With --build, construct\n" +
		"the index from newline-delimited JSON records.",
	Args:          cobra.ArbitraryArgs,
	RunE:          run,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&flagIndex, "fst", "f", "", "Index file (search input, build output)")
	f.StringVarP(&flagTemplate, "template", "t", "", "Decoration template, e.g. \"{key} ({type})\"")
	f.BoolVarP(&flagJSON, "json", "j", false, "Match only inside JSON string literals")
	f.BoolVarP(&flagOnly, "only-matching", "o", false, "Print one decoration per match, nothing else")
	f.StringVarP(&flagColor, "color", "C", "auto", "Color decorations: always, never, auto")
	f.BoolVar(&flagBuild, "build", false, "Build an index instead of searching")
	f.StringVarP(&flagKey, "key", "k", "key", "Record field or JSON pointer holding the term (build mode)")
	f.BoolVar(&flagSorted, "sorted", false, "Assert records arrive pre-sorted by key (build mode)")
	f.BoolVar(&flagZstd, "zstd", false, "Wrap the index artifact in a zstd envelope (build mode)")
}

func run(cmd *cobra.Command, args []string) error {
	if flagIndex == "" {
		fmt.Fprintln(os.Stderr, "fstsed: -f INDEX is required")
		return exitErr{2}
	}
	if flagBuild {
		return runBuild(args)
	}
	return runSearch(args)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
