// Package archive discovers 3D assets inside ZIP, RAR and .unitypackage
// containers and extracts them for viewing.
package archive

import (
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"meshvault/internal/asset"
)

// Inspector lists archive contents without full extraction and pulls single
// assets (plus their sidecars) into per-archive temp directories on demand.
type Inspector struct {
	mu       sync.Mutex
	tempDirs map[string]string
}

func NewInspector() *Inspector {
	return &Inspector{tempDirs: make(map[string]string)}
}

// Inspect returns the 3D assets found inside the archive. Unknown container
// extensions yield an empty list.
func (in *Inspector) Inspect(archivePath string) ([]asset.Asset, error) {
	switch asset.Ext(archivePath) {
	case ".zip":
		return in.inspectZip(archivePath)
	case ".rar":
		return in.inspectRar(archivePath)
	case ".unitypackage":
		return in.inspectUnitypackage(archivePath)
	}
	return nil, nil
}

// Extract pulls one asset and its related files out of the archive and
// returns the filesystem path of the extracted asset.
func (in *Inspector) Extract(archivePath, innerPath string) (string, error) {
	switch asset.Ext(archivePath) {
	case ".zip":
		return in.extractFromZip(archivePath, innerPath)
	case ".rar":
		return in.extractFromRar(archivePath, innerPath)
	case ".unitypackage":
		return in.extractFromUnitypackage(archivePath, innerPath)
	}
	return "", fmt.Errorf("archive: unsupported container %s", archivePath)
}

// ExtractedRelated maps archive-internal related paths to the filesystem
// paths they were extracted to. Paths that never made it to disk are dropped.
func (in *Inspector) ExtractedRelated(archivePath string, innerRelated []string) []string {
	in.mu.Lock()
	dir, ok := in.tempDirs[archivePath]
	in.mu.Unlock()
	if !ok {
		return nil
	}

	var resolved []string
	for _, inner := range innerRelated {
		full := filepath.Join(dir, filepath.FromSlash(inner))
		if _, err := os.Stat(full); err == nil {
			resolved = append(resolved, full)
			continue
		}
		// Unitypackage extraction flattens entries to their base names.
		flat := filepath.Join(dir, path.Base(inner))
		if _, err := os.Stat(flat); err == nil {
			resolved = append(resolved, flat)
		}
	}
	return resolved
}

// Managed reports whether a path lies inside one of the inspector's temp
// extraction directories.
func (in *Inspector) Managed(p string) bool {
	abs, err := filepath.Abs(p)
	if err != nil {
		return false
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	for _, dir := range in.tempDirs {
		rel, err := filepath.Rel(dir, abs)
		if err != nil {
			continue
		}
		if rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel)) {
			return true
		}
	}
	return false
}

// Cleanup removes every temp extraction directory.
func (in *Inspector) Cleanup() {
	in.mu.Lock()
	defer in.mu.Unlock()
	for _, dir := range in.tempDirs {
		if err := os.RemoveAll(dir); err != nil {
			log.Printf("archive: cleanup %s: %v", dir, err)
		}
	}
	in.tempDirs = make(map[string]string)
}

// tempDir returns the extraction directory for an archive, creating it on
// first use.
func (in *Inspector) tempDir(archivePath string) (string, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if dir, ok := in.tempDirs[archivePath]; ok {
		return dir, nil
	}
	dir, err := os.MkdirTemp("", "meshvault_")
	if err != nil {
		return "", fmt.Errorf("archive: temp dir: %w", err)
	}
	in.tempDirs[archivePath] = dir
	return dir, nil
}

// Common texture folder names for direct sidecar matching.
var textureDirs = map[string]bool{
	"textures": true, "texture": true, "tex": true,
	"maps": true, "map": true,
	"materials": true, "material": true, "mat": true,
}

// Broader folder names consulted only when direct matching finds nothing.
var fallbackTextureDirs = map[string]bool{
	"images": true, "image": true,
	"sourceimages": true, "sourceimage": true,
}

// relatedIn finds the sidecar files for one asset within an archive's name
// list. Matching runs in three tiers: same directory, known texture
// subfolders, then filenames sharing the asset's stem. A stem match must be
// exact or separator-delimited so "asteroid_1" never claims "asteroid_10".
func relatedIn(assetName string, names []string) []string {
	assetStem := strings.ToLower(asset.Stem(assetName))
	assetDir := path.Dir(assetName)

	var related []string
	seen := map[string]bool{}
	add := func(name string) {
		if !seen[name] {
			related = append(related, name)
			seen[name] = true
		}
	}

	for _, name := range names {
		if name == assetName || !asset.RelatedExts[asset.Ext(name)] {
			continue
		}
		dir := path.Dir(name)
		stem := strings.ToLower(asset.Stem(name))

		if dir == assetDir {
			add(name)
			continue
		}
		if textureDirs[strings.ToLower(path.Base(dir))] {
			add(name)
			continue
		}
		if stem == assetStem ||
			strings.HasPrefix(stem, assetStem+"_") ||
			strings.HasPrefix(stem, assetStem+"-") ||
			strings.HasPrefix(stem, assetStem+" ") {
			add(name)
		}
	}

	// Shared image banks: when nothing matched directly, take files from any
	// texture-ish folder in the archive.
	if len(related) == 0 {
		for _, name := range names {
			if name == assetName || !asset.RelatedExts[asset.Ext(name)] {
				continue
			}
			for _, part := range strings.Split(path.Dir(name), "/") {
				low := strings.ToLower(part)
				if textureDirs[low] || fallbackTextureDirs[low] {
					add(name)
					break
				}
			}
		}
	}

	// FBX exports often carry material names without texture links, so give
	// the viewer a broader candidate pool to resolve by naming.
	if len(related) == 0 && asset.Ext(assetName) == ".fbx" {
		const maxCandidates = 200
		for _, name := range names {
			if name == assetName {
				continue
			}
			if ext := asset.Ext(name); asset.RelatedExts[ext] && ext != ".mtl" {
				add(name)
				if len(related) >= maxCandidates {
					break
				}
			}
		}
	}

	return related
}
