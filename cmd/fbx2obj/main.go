// Command fbx2obj converts legacy binary or ASCII FBX files to OBJ. Given a
// directory it converts every legacy FBX underneath using a worker pool.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"meshvault/internal/batch"
	"meshvault/internal/convert"
)

func main() {
	output := flag.String("o", "", "Output path (single file mode; default: <name>.obj)")
	workers := flag.Int("workers", runtime.NumCPU(), "Worker goroutines for directory mode")
	force := flag.Bool("force", false, "Reconvert even when output already exists")
	manifest := flag.String("manifest", "", "Write a JSON run summary to this path (directory mode)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: fbx2obj [flags] <file.fbx | directory>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	target := flag.Arg(0)

	st, err := os.Stat(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if st.IsDir() {
		convertTree(target, *workers, *force, *manifest)
		return
	}

	out := *output
	if out == "" {
		out = strings.TrimSuffix(target, filepath.Ext(target)) + ".obj"
	}
	stats, err := convert.Convert(target, out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s: version %d, %d geometries → %s (%.0fms)\n",
		target, stats.SourceVersion, stats.GeometryCount, out,
		float64(stats.Duration.Microseconds())/1000)
}

func convertTree(root string, workers int, force bool, manifestPath string) {
	targets, err := batch.Discover(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(targets) == 0 {
		fmt.Println("No legacy FBX files found.")
		return
	}

	fmt.Printf("Converting %d file(s) with %d workers\n", len(targets), workers)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	results := batch.Run(batch.Config{Workers: workers, Force: force}, targets)
	elapsed := time.Since(start)

	converted, skipped, failed := 0, 0, 0
	var failures []batch.Result
	for _, r := range results {
		switch {
		case r.Skipped:
			skipped++
		case r.Success:
			converted++
		default:
			failed++
			failures = append(failures, r)
		}
	}

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs: %d converted, %d skipped, %d failed\n",
		elapsed.Seconds(), converted, skipped, failed)

	if len(failures) > 0 {
		limit := 20
		if len(failures) < limit {
			limit = len(failures)
		}
		fmt.Printf("\nFailed (%d):\n", failed)
		for _, r := range failures[:limit] {
			fmt.Printf("  %s: %s\n", r.SourcePath, r.Error)
		}
	}

	if manifestPath != "" {
		if err := batch.WriteManifest(manifestPath, root, results); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
		} else {
			fmt.Printf("Manifest: %s\n", manifestPath)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}
