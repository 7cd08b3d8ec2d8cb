package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	stdinPath = "-"
	stdinName = "(standard input)"
)

// Searcher runs one configured search: it resolves every root into inputs,
// matches them on a worker pool and returns the results in input order.
type Searcher struct {
	cfg       SearchConfig
	collector *PathCollector
	matcher   *LineMatcher
	client    *http.Client
	stdin     io.Reader

	tempDirsToClean []string
}

// NewSearcher prepares a search over cfg. fileTypes is only consulted when
// cfg.Collect.Types is set.
func NewSearcher(cfg SearchConfig, fileTypes *FileTypes, stdin io.Reader) *Searcher {
	return &Searcher{
		cfg:       cfg,
		collector: NewPathCollector(cfg.Collect, fileTypes),
		matcher:   NewLineMatcher(cfg),
		client:    &http.Client{Timeout: 30 * time.Second},
		stdin:     stdin,
	}
}

// Close removes temporary checkouts made for git roots.
func (s *Searcher) Close() {
	for _, dir := range s.tempDirsToClean {
		logger.Debugf("cleaning up temporary directory %s", dir)
		_ = os.RemoveAll(dir)
	}
	s.tempDirsToClean = nil
}

// Run searches every root. A root that cannot be expanded aborts the run;
// an input that cannot be read only produces a failed MatchedFile.
func (s *Searcher) Run() (*Report, error) {
	var files []FileInfo
	for _, root := range s.cfg.Roots {
		resolved, err := s.Resolve(root)
		if err != nil {
			return nil, err
		}
		files = append(files, resolved...)
	}
	logger.Debugf("searching %d files", len(files))

	results := s.matchAll(files)
	return &Report{Results: results, Summary: summarize(results)}, nil
}

// Resolve turns one root into the inputs to search.
func (s *Searcher) Resolve(root string) ([]FileInfo, error) {
	switch {
	case root == stdinPath:
		content, err := io.ReadAll(s.stdin)
		if err != nil {
			return []FileInfo{{Path: root, Name: stdinName, Error: fmt.Errorf("reading standard input: %w", err)}}, nil
		}
		return []FileInfo{{Path: root, Name: stdinName, Content: content, Loaded: true}}, nil

	// Checked before web URLs: https://host/repo.git is a repository.
	case isGitURL(root):
		progress := logger.WriterLevel(logrus.DebugLevel)
		defer progress.Close()
		checkout, err := cloneGitRepo(root, progress)
		if err != nil {
			// Like an unreachable web page, a failed clone only fails this root.
			return []FileInfo{{Path: root, Name: root, Error: err}}, nil
		}
		s.tempDirsToClean = append(s.tempDirsToClean, checkout)

		// A repository is only useful expanded, whatever -r says.
		paths, err := s.collector.Collect(checkout, true)
		if err != nil {
			return nil, err
		}
		files := make([]FileInfo, 0, len(paths))
		for _, p := range paths {
			files = append(files, FileInfo{Path: p, Name: repoFileName(root, checkout, p)})
		}
		return files, nil

	case isWebURL(root):
		if s.cfg.TraverseLinks {
			visited := make(map[string]bool)
			return processWebURLRecursive(s.client, root, 0, s.cfg.LinkDepth, visited), nil
		}
		return []FileInfo{processWebURL(s.client, root)}, nil
	}

	paths, err := s.collector.Collect(root, s.cfg.Recursive)
	if err != nil {
		return nil, err
	}
	files := make([]FileInfo, 0, len(paths))
	for _, p := range paths {
		files = append(files, FileInfo{Path: p, Name: p})
	}
	return files, nil
}

// matchAll fans files out to workers. Each worker writes only its own
// slots of results, so the output order is the input order.
func (s *Searcher) matchAll(files []FileInfo) []MatchedFile {
	results := make([]MatchedFile, len(files))
	if len(files) == 0 {
		return results
	}

	numWorkers := s.cfg.Threads
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	jobs := make(chan int, len(files))
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go s.matchWorker(files, jobs, results, &wg)
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func (s *Searcher) matchWorker(files []FileInfo, jobs <-chan int, results []MatchedFile, wg *sync.WaitGroup) {
	defer wg.Done()
	for i := range jobs {
		results[i] = s.searchFile(files[i])
	}
}

// searchFile reads one input and matches it.
func (s *Searcher) searchFile(file FileInfo) MatchedFile {
	if file.Error != nil {
		logger.Warnf("%s: %v", file.Name, file.Error)
		return MatchedFile{Filename: file.Name, Err: file.Error}
	}

	content := file.Content
	if !file.Loaded {
		var err error
		content, err = os.ReadFile(file.Path)
		if err != nil {
			logger.Warnf("could not read file %s: %v", file.Name, err)
			return MatchedFile{Filename: file.Name, Err: err}
		}
	}
	return s.matcher.Match(file.Name, string(content))
}

func summarize(results []MatchedFile) Summary {
	summary := Summary{FilesSearched: len(results)}
	for _, r := range results {
		switch {
		case r.Err != nil:
			summary.Unreadable++
		case r.HasMatch():
			summary.FilesMatched++
			summary.MatchedLines += len(r.Matches)
		}
	}
	return summary
}
