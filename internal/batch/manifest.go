package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Manifest summarizes a batch run for later inspection.
type Manifest struct {
	GeneratedAt time.Time `json:"generated_at"`
	Root        string    `json:"root"`
	Converted   int       `json:"converted"`
	Skipped     int       `json:"skipped"`
	Failed      int       `json:"failed"`
	Results     []Result  `json:"results"`
}

// WriteManifest writes the run summary as JSON to path.
func WriteManifest(path, root string, results []Result) error {
	m := Manifest{
		GeneratedAt: time.Now().UTC(),
		Root:        root,
		Results:     results,
	}
	for _, r := range results {
		switch {
		case r.Skipped:
			m.Skipped++
		case r.Success:
			m.Converted++
		default:
			m.Failed++
		}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: marshal manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
