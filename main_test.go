package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps the user's config file and environment out of a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(legacyCaseEnv, "")
	os.Unsetenv(legacyCaseEnv)
	t.Cleanup(func() { logger = newLogger(os.Stderr) })
}

func run(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = execute(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestExecute(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"poem.txt":  poem + "\n",
		"other.txt": "trusty\nnothing\n",
	})
	poemPath := filepath.Join(dir, "poem.txt")
	otherPath := filepath.Join(dir, "other.txt")

	tests := []struct {
		name  string
		args  []string
		stdin string
		want  string
	}{
		{
			name: "single file",
			args: []string{"duct", poemPath},
			want: "safe,fast,productive\n",
		},
		{
			name: "ignore case and line numbers",
			args: []string{"-in", "rust", poemPath},
			want: "0:Rust:\n3:Trust me.\n",
		},
		{
			name: "invert without ignore case",
			args: []string{"-v", "Rust", poemPath},
			want: "safe,fast,productive\nPick three.\nTrust me.\n",
		},
		{
			name: "multiple files prefix names",
			args: []string{"rust", poemPath, otherPath},
			want: poemPath + ":Trust me.\n" + otherPath + ":trusty\n",
		},
		{
			name: "count",
			args: []string{"-c", "-i", "rust", poemPath, otherPath},
			want: poemPath + ":2\n" + otherPath + ":1\n",
		},
		{
			name: "files with matches",
			args: []string{"-l", "Pick", poemPath, otherPath},
			want: poemPath + "\n",
		},
		{
			name: "count wins over files with matches",
			args: []string{"-lc", "Pick", poemPath, otherPath},
			want: poemPath + ":1\n" + otherPath + ":0\n",
		},
		{
			name:  "standard input when no file is given",
			args:  []string{"-n", "two"},
			stdin: "one\ntwo\nthree\n",
			want:  "1:two\n",
		},
		{
			name:  "dash reads standard input alongside files",
			args:  []string{"two", "-", otherPath},
			stdin: "two\n",
			want:  "(standard input):two\n",
		},
		{
			name: "missing file is skipped",
			args: []string{"rust", filepath.Join(dir, "missing.txt"), poemPath},
			want: poemPath + ":Trust me.\n",
		},
		{
			name: "recursive directory",
			args: []string{"-r", "-l", "trust", dir},
			want: otherPath + "\n",
		},
		{
			name: "flags after pattern",
			args: []string{"Pick", poemPath, "--color", "never"},
			want: "Pick three.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, _ := run(t, tt.stdin, append([]string{"--color", "never"}, tt.args...)...)
			assert.Equal(t, 0, code)
			assert.Equal(t, tt.want, stdout)
		})
	}
}

func TestExecute_ArgumentErrors(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"missing pattern", nil, "missing PATTERN"},
		{"empty pattern", []string{""}, "PATTERN must not be empty"},
		{"bad color", []string{"--color", "sometimes", "x"}, "--color must be"},
		{"negative depth", []string{"--max-depth", "-1", "x"}, "--max-depth must not be negative"},
		{"bad flag value", []string{"--threads", "many", "x"}, "invalid argument"},
		{"unknown type", []string{"--type", "cobol", "x", "-"}, "unknown file type"},
		{"bad log level", []string{"--log-level", "loud", "x"}, "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := run(t, "", tt.args...)
			assert.Equal(t, 1, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, "Problem parsing arguments: ")
			assert.Contains(t, stderr, tt.msg)
		})
	}
}

func TestExecute_CollectErrorIsApplicationError(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("needs a filesystem that accepts arbitrary bytes in names")
	}
	isolate(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad\xfe"), nil, 0644); err != nil {
		t.Skipf("filesystem rejected non-UTF-8 name: %v", err)
	}

	code, stdout, stderr := run(t, "", "-r", "x", dir)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Application error: ")
}

func TestExecute_HelpAndVersion(t *testing.T) {
	isolate(t)

	code, stdout, _ := run(t, "", "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "grep [OPTIONS] PATTERN [FILE...]")
	assert.Contains(t, stdout, "--ignore-case")

	code, stdout, _ = run(t, "", "--version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, version)
}

func TestExecute_UnknownFlagsAreIgnored(t *testing.T) {
	isolate(t)

	code, stdout, stderr := run(t, "a\nb\n", "--bogus", "-z", "a")
	assert.Equal(t, 0, code)
	assert.Equal(t, "a\n", stdout)
	assert.Contains(t, stderr, "ignoring unrecognized option --bogus")
	assert.Contains(t, stderr, "ignoring unrecognized option -z")
}

func TestExecute_LegacyCaseEnvironment(t *testing.T) {
	isolate(t)

	code, stdout, _ := run(t, "Rust\nother\n", "rust")
	assert.Equal(t, 0, code)
	assert.Empty(t, stdout)

	t.Setenv(legacyCaseEnv, "")
	code, stdout, _ = run(t, "Rust\nother\n", "rust")
	assert.Equal(t, 0, code)
	assert.Equal(t, "Rust\n", stdout, "presence alone enables ignore case")
}

func TestExecute_PrefixedEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("GREP_LINE_NUMBER", "true")

	_, stdout, _ := run(t, "one\ntwo\n", "two")
	assert.Equal(t, "1:two\n", stdout)
}

func TestExecute_ConfigFile(t *testing.T) {
	isolate(t)
	cfgPath := filepath.Join(t.TempDir(), "grep.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("ignore_case = true\ncount = true\n"), 0644))

	_, stdout, _ := run(t, "Rust\ntrust\nnone\n", "--config", cfgPath, "RUST")
	assert.Equal(t, "2\n", stdout)

	// Flags override the file.
	_, stdout, _ = run(t, "Rust\ntrust\nnone\n", "--config", cfgPath, "--count=false", "RUST")
	assert.Equal(t, "Rust\ntrust\n", stdout)
}

func TestExecute_OutputFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "matches.txt")

	code, stdout, _ := run(t, "one\ntwo\n", "--output", path, "--color", "always", "two")
	assert.Equal(t, 0, code)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "two")
}

func TestBuildConfig(t *testing.T) {
	v := viper.New()
	v.SetDefault("color", "AUTO")
	v.SetDefault("link_depth", 1)

	cfg, out, err := buildConfig(v, []string{"needle"})
	require.NoError(t, err)
	assert.Equal(t, "needle", cfg.Query)
	assert.Equal(t, []string{stdinPath}, cfg.Roots)
	assert.Equal(t, 1, cfg.LinkDepth)
	assert.Equal(t, "auto", out.Color)

	v.Set("include", "*.go, *.rs")
	v.Set("gitignore", true)
	cfg, _, err = buildConfig(v, []string{"needle", "a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, cfg.Roots)
	assert.Equal(t, []string{"*.go", "*.rs"}, cfg.Collect.Include)
	assert.True(t, cfg.Collect.Gitignore)

	v.Set("max_size", -5)
	_, _, err = buildConfig(v, []string{"needle"})
	assert.True(t, errors.Is(err, ErrArgument))
}

func TestFilterUnknownFlags(t *testing.T) {
	flags := newRootCmd(nil, nil, nil).Flags()

	tests := []struct {
		name string
		args []string
		want []string
		warn string
	}{
		{
			name: "known flags kept",
			args: []string{"-i", "--line-number", "pat", "file"},
			want: []string{"-i", "--line-number", "pat", "file"},
		},
		{
			name: "unknown long flag dropped",
			args: []string{"--bogus", "pat"},
			want: []string{"pat"},
			warn: "--bogus",
		},
		{
			name: "unknown letter dropped from cluster",
			args: []string{"-izn", "pat"},
			want: []string{"-in", "pat"},
			warn: "-z",
		},
		{
			name: "whole cluster unknown",
			args: []string{"-zq", "pat"},
			want: []string{"pat"},
			warn: "-q",
		},
		{
			name: "value of known flag kept",
			args: []string{"--threads", "4", "--color=never", "pat"},
			want: []string{"--threads", "4", "--color=never", "pat"},
		},
		{
			name: "value that looks like a flag is kept",
			args: []string{"--exclude", "-weird", "pat"},
			want: []string{"--exclude", "-weird", "pat"},
		},
		{
			name: "lone dash is positional",
			args: []string{"pat", "-"},
			want: []string{"pat", "-"},
		},
		{
			name: "double dash ends filtering",
			args: []string{"--", "-bogus", "pat"},
			want: []string{"--", "-bogus", "pat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var warn bytes.Buffer
			got := filterUnknownFlags(flags, tt.args, &warn)
			assert.Equal(t, tt.want, got)
			if tt.warn == "" {
				assert.Empty(t, warn.String())
			} else {
				assert.Contains(t, warn.String(), tt.warn)
			}
		})
	}
}
