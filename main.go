package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is the application version, set via ldflags.
var version string = "dev"

// legacyCaseEnv turns on case-insensitive matching when set to any value.
const legacyCaseEnv = "CASE_INSENSITIVE"

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "grep [OPTIONS] PATTERN [FILE...]",
		Short: "grep prints the lines of files that contain a literal pattern.",
		Long: `grep searches each FILE for lines containing PATTERN as a literal substring.
FILE may be a local file or directory, "-" for standard input, a web URL,
or a Git repository URL. With no FILE, standard input is searched.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(v, cfgFile); err != nil {
				return err
			}
			if err := setupLogger(stderr, v.GetString("log_level"), v.GetBool("verbose")); err != nil {
				return err
			}
			if used := v.ConfigFileUsed(); used != "" {
				logger.Debugf("using config file %s", used)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(v, args, stdin, stdout)
		},
	}
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrArgument, err)
	})

	flags := rootCmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/grep/config.toml)")

	// Matching
	flags.BoolP("ignore-case", "i", false, "Case-insensitive match (also enabled by "+legacyCaseEnv+")")
	v.BindPFlag("ignore_case", flags.Lookup("ignore-case"))
	flags.BoolP("invert-match", "v", false, "Report non-matching lines")
	v.BindPFlag("invert_match", flags.Lookup("invert-match"))
	flags.BoolP("line-number", "n", false, "Prefix each line with its line number")
	v.BindPFlag("line_number", flags.Lookup("line-number"))
	flags.BoolP("recursive", "r", false, "Descend into directory arguments")
	v.BindPFlag("recursive", flags.Lookup("recursive"))
	flags.BoolP("files-with-matches", "l", false, "Print only the names of files with matches")
	v.BindPFlag("files_with_matches", flags.Lookup("files-with-matches"))
	flags.BoolP("count", "c", false, "Print only the number of matching lines per file")
	v.BindPFlag("count", flags.Lookup("count"))

	// Filtering
	flags.String("include", "", "Only search files whose name matches these globs (comma-separated)")
	v.BindPFlag("include", flags.Lookup("include"))
	flags.String("exclude", "", "Skip files and directories whose name matches these globs (comma-separated)")
	v.BindPFlag("exclude", flags.Lookup("exclude"))
	flags.String("type", "", "Only search files of these languages (comma-separated, e.g. go,rust)")
	v.BindPFlag("type", flags.Lookup("type"))
	flags.Bool("gitignore", false, "Respect the .gitignore file at each directory root")
	v.BindPFlag("gitignore", flags.Lookup("gitignore"))
	flags.Int("max-depth", 0, "Maximum directory depth to descend (0 for no limit)")
	v.BindPFlag("max_depth", flags.Lookup("max-depth"))
	flags.Int64("max-size", 0, "Skip files larger than this many bytes (0 for no limit)")
	v.BindPFlag("max_size", flags.Lookup("max-size"))

	// Processing
	flags.Int("threads", 0, "Number of files matched in parallel (0 for auto)")
	v.BindPFlag("threads", flags.Lookup("threads"))

	// Web Specific
	flags.Bool("traverse-links", false, "Follow links when searching web URLs")
	v.BindPFlag("traverse_links", flags.Lookup("traverse-links"))
	flags.Int("link-depth", 1, "Maximum depth to follow links")
	v.BindPFlag("link_depth", flags.Lookup("link-depth"))

	// Output
	flags.String("color", "auto", "Colorize output: auto, always or never")
	v.BindPFlag("color", flags.Lookup("color"))
	flags.String("output", "", "Save output to the specified file")
	v.BindPFlag("output", flags.Lookup("output"))
	flags.Bool("clipboard", false, "Copy output to the clipboard")
	v.BindPFlag("clipboard", flags.Lookup("clipboard"))
	flags.String("pdf", "", "Save a match report as PDF")
	v.BindPFlag("pdf", flags.Lookup("pdf"))

	// Interactive Mode
	flags.Bool("interactive", false, "Pick files and directories with a fuzzy finder")
	v.BindPFlag("interactive", flags.Lookup("interactive"))

	// Diagnostics
	flags.Bool("verbose", false, "Log progress to stderr")
	v.BindPFlag("verbose", flags.Lookup("verbose"))
	flags.String("log-level", "warn", "Log level: trace, debug, info, warn, error")
	v.BindPFlag("log_level", flags.Lookup("log-level"))

	return rootCmd
}

// initConfig reads in config file and ENV variables if set.
func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "grep"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("toml")
	}

	v.SetEnvPrefix("GREP") // GREP_IGNORE_CASE, GREP_THREADS, ...
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if _, ok := os.LookupEnv(legacyCaseEnv); ok {
		v.SetDefault("ignore_case", true)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// buildConfig turns the parsed command line into the search and output
// settings. args is PATTERN followed by the roots.
func buildConfig(v *viper.Viper, args []string) (SearchConfig, OutputOptions, error) {
	if len(args) == 0 {
		return SearchConfig{}, OutputOptions{}, argumentErrorf("missing PATTERN")
	}
	if args[0] == "" {
		return SearchConfig{}, OutputOptions{}, argumentErrorf("PATTERN must not be empty")
	}

	roots := args[1:]
	if len(roots) == 0 {
		roots = []string{stdinPath}
	}

	cfg := SearchConfig{
		Query:                args[0],
		Roots:                roots,
		CaseInsensitive:      v.GetBool("ignore_case"),
		Invert:               v.GetBool("invert_match"),
		ShowLineNumbers:      v.GetBool("line_number"),
		Recursive:            v.GetBool("recursive"),
		FilesWithMatchesOnly: v.GetBool("files_with_matches"),
		CountOnly:            v.GetBool("count"),
		Collect: CollectOptions{
			Include:   parsePatterns(v.GetString("include")),
			Exclude:   parsePatterns(v.GetString("exclude")),
			Types:     parsePatterns(v.GetString("type")),
			Gitignore: v.GetBool("gitignore"),
			MaxDepth:  v.GetInt("max_depth"),
			MaxSize:   v.GetInt64("max_size"),
		},
		Threads:       v.GetInt("threads"),
		TraverseLinks: v.GetBool("traverse_links"),
		LinkDepth:     v.GetInt("link_depth"),
	}
	out := OutputOptions{
		File:      v.GetString("output"),
		Clipboard: v.GetBool("clipboard"),
		PDF:       v.GetString("pdf"),
		Color:     strings.ToLower(v.GetString("color")),
	}

	switch {
	case cfg.Collect.MaxDepth < 0:
		return cfg, out, argumentErrorf("--max-depth must not be negative")
	case cfg.Collect.MaxSize < 0:
		return cfg, out, argumentErrorf("--max-size must not be negative")
	case cfg.LinkDepth < 0:
		return cfg, out, argumentErrorf("--link-depth must not be negative")
	}
	switch out.Color {
	case "auto", "always", "never":
	default:
		return cfg, out, argumentErrorf("--color must be auto, always or never, got %q", out.Color)
	}
	return cfg, out, nil
}

func runSearch(v *viper.Viper, args []string, stdin io.Reader, stdout io.Writer) error {
	cfg, out, err := buildConfig(v, args)
	if err != nil {
		return err
	}

	if v.GetBool("interactive") {
		picked, err := pickRoots(".", cfg)
		if err != nil {
			return err
		}
		if picked == nil {
			logger.Info("interactive selection aborted")
			return nil
		}
		// Picked directories are searched whole.
		cfg.Roots = picked
		cfg.Recursive = true
	}

	var fileTypes *FileTypes
	if len(cfg.Collect.Types) > 0 {
		fileTypes, err = loadFileTypes()
		if err != nil {
			return err
		}
		if err := fileTypes.ValidateTypes(cfg.Collect.Types); err != nil {
			return err
		}
	}

	searcher := NewSearcher(cfg, fileTypes, stdin)
	defer searcher.Close()

	report, err := searcher.Run()
	if err != nil {
		return err
	}
	if report.Summary.Unreadable > 0 {
		logger.Warnf("%d of %d files could not be read", report.Summary.Unreadable, report.Summary.FilesSearched)
	}
	return deliver(report, cfg, out, stdout)
}

// execute runs the command and returns the process exit code.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdin, stdout, stderr)
	rootCmd.InitDefaultHelpFlag()
	rootCmd.InitDefaultVersionFlag()
	rootCmd.SetArgs(filterUnknownFlags(rootCmd.Flags(), args, stderr))
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, ErrArgument) {
			fmt.Fprintf(stderr, "Problem parsing arguments: %v\n", err)
		} else {
			fmt.Fprintf(stderr, "Application error: %v\n", err)
		}
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
