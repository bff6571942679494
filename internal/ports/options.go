package ports

// SearchOptions carries the search-mode settings from the CLI into the engine.
type SearchOptions struct {
	IndexPath    string // path to the built index artifact (-f)
	Template     string // decoration template, empty means the built-in default (-t)
	JSONMode     bool   // scan only inside JSON string literals (-j)
	OnlyMatching bool   // emit one rendered decoration per match, drop other output (-o)
	Color        bool   // wrap decorations in ANSI highlighting
}

// BuildOptions carries the build-mode settings from the CLI into the builder.
type BuildOptions struct {
	OutputPath   string // where the index artifact lands (-f)
	KeyField     string // field name or JSON pointer selecting the term (-k)
	AssumeSorted bool   // input is already sorted by key; fail on violations (--sorted)
	Zstd         bool   // wrap the artifact in a zstd envelope (--zstd)
}
