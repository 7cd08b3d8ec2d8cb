package main

// SearchConfig is built once by the command layer and only read afterwards.
type SearchConfig struct {
	Query                string
	Roots                []string
	CaseInsensitive      bool
	Invert               bool // Applies in both case modes
	ShowLineNumbers      bool
	Recursive            bool
	FilesWithMatchesOnly bool
	CountOnly            bool // Wins over FilesWithMatchesOnly when both are set

	Collect CollectOptions

	// Processing
	Threads int // 0 means one worker per CPU

	// Web Specific
	TraverseLinks bool
	LinkDepth     int
}

// CollectOptions filters the files found while expanding a directory root.
// Explicitly named files are never filtered.
type CollectOptions struct {
	Include   []string // Base name globs; empty keeps everything
	Exclude   []string // Base name globs, also prune directories
	Types     []string // Type names from languages.yml
	Gitignore bool     // Honour the root's .gitignore
	MaxDepth  int      // 0 for no limit, 1 keeps only the root's own files
	MaxSize   int64    // 0 for no limit
}

// OutputOptions selects where and how the rendered results go.
type OutputOptions struct {
	File      string
	Clipboard bool
	PDF       string
	Color     string // auto, always or never
}

// FileInfo is one searchable input produced from a root.
type FileInfo struct {
	Path    string // Disk path, URL, or "-" for standard input
	Name    string // Name shown in results
	Content []byte // Pre-loaded content (standard input, web pages)
	Loaded  bool   // Content holds the full text; Path is not read again
	Error   error  // Stores any error encountered while resolving this input
}

// LineMatch is one line that survived the predicate.
type LineMatch struct {
	LineNo int // Zero-based index of the line in the original text
	Text   string
}

// MatchedFile is the result for one searched input.
type MatchedFile struct {
	Filename string
	Lines    []string    // Rendered lines, or the decimal count in count mode
	Matches  []LineMatch // Surviving lines before rendering
	Err      error       // Read failure; Lines and Matches are empty
}

// HasMatch reports whether at least one line survived the predicate.
func (m MatchedFile) HasMatch() bool {
	return len(m.Matches) > 0
}

// Summary holds aggregated information about a run.
type Summary struct {
	FilesSearched int
	FilesMatched  int
	MatchedLines  int
	Unreadable    int
}

// Report is everything a run produced, in collection order.
type Report struct {
	Results []MatchedFile
	Summary Summary
}
