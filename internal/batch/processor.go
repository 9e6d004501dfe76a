// Package batch converts every legacy FBX under a directory tree using a
// worker pool.
package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"meshvault/internal/convert"
)

// Config holds the shared settings for a batch run.
type Config struct {
	// Workers is the pool size.
	Workers int
	// Force reconverts files that already have a converted sibling.
	Force bool
	// OnResult, when set, receives each result as it completes.
	OnResult func(Result)
}

// Result holds the outcome of converting one file.
type Result struct {
	SourcePath    string `json:"source_path"`
	OutputPath    string `json:"output_path"`
	SourceVersion int    `json:"source_version"`
	GeometryCount int    `json:"geometry_count"`
	Skipped       bool   `json:"skipped"`
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
}

// Discover walks root and returns the legacy FBX files under it. Hidden
// files and directories are skipped.
func Discover(root string) ([]string, error) {
	var targets []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtrees are skipped
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if convert.NeedsConversion(path) {
			targets = append(targets, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: walk %s: %w", root, err)
	}
	return targets, nil
}

// Run converts all paths using a worker pool and reports progress.
func Run(cfg Config, paths []string) []Result {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	total := len(paths)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Printf("  [%d/%d] %.1f files/sec\n", p, total, rate)
				}
			}
		}
	}()

	// Worker pool
	pathChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range pathChan {
				res := processFile(cfg, paths[idx])
				results[idx] = res
				if cfg.OnResult != nil {
					cfg.OnResult(res)
				}
				processed.Add(1)
			}
		}()
	}

	for i := range paths {
		pathChan <- i
	}
	close(pathChan)

	wg.Wait()
	close(done)

	return results
}

func processFile(cfg Config, src string) Result {
	out := convert.ConvertedPath(src)
	res := Result{SourcePath: src, OutputPath: out}

	if !cfg.Force {
		if st, err := os.Stat(out); err == nil && st.Size() > 0 {
			res.Skipped = true
			res.Success = true
			return res
		}
	}

	stats, err := convert.Convert(src, out)
	res.SourceVersion = stats.SourceVersion
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.GeometryCount = stats.GeometryCount
	res.Success = true
	return res
}
