// Package browser handles filesystem navigation and 3D asset discovery.
package browser

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"meshvault/internal/archive"
	"meshvault/internal/asset"
)

// ErrOutsideRoot marks browse attempts that escape the configured root.
var ErrOutsideRoot = errors.New("browser: path outside root")

// Folder is a navigable directory entry.
type Folder struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	HasChildren bool   `json:"has_children"`
}

// Result is the content listing of one directory.
type Result struct {
	CurrentPath string        `json:"current_path"`
	ParentPath  string        `json:"parent_path,omitempty"`
	Folders     []Folder      `json:"folders"`
	Assets      []asset.Asset `json:"assets"`
}

// Browser lists directories and discovers 3D assets, including those inside
// archives. With a non-empty root, browsing is confined to the root and its
// descendants.
type Browser struct {
	root      string
	inspector *archive.Inspector
}

// New builds a Browser. root may be empty for unconstrained browsing; a
// non-empty root is resolved to an absolute path.
func New(root string, inspector *archive.Inspector) (*Browser, error) {
	b := &Browser{inspector: inspector}
	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("browser: resolve root %s: %w", root, err)
		}
		b.root = abs
	}
	return b, nil
}

func (b *Browser) Root() string { return b.root }

// Browse lists one directory: visible subfolders plus direct and in-archive
// 3D assets, both sorted case-insensitively by name.
func (b *Browser) Browse(directory string) (*Result, error) {
	dir, err := filepath.Abs(directory)
	if err != nil {
		return nil, fmt.Errorf("browser: resolve %s: %w", directory, err)
	}
	if !b.withinRoot(dir) {
		return nil, fmt.Errorf("%w: %s", ErrOutsideRoot, dir)
	}

	st, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("browser: stat %s: %w", dir, err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("browser: not a directory: %s", dir)
	}

	res := &Result{
		CurrentPath: dir,
		ParentPath:  b.parentPath(dir),
		Folders:     []Folder{},
		Assets:      []asset.Asset{},
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// Unreadable directories browse as empty rather than erroring.
		return res, nil
	}
	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(dir, name)

		if entry.IsDir() {
			res.Folders = append(res.Folders, Folder{
				Name:        name,
				Path:        full,
				HasChildren: hasVisibleChildren(full),
			})
			continue
		}

		ext := asset.Ext(name)
		switch {
		case asset.ModelExts[ext]:
			info, err := entry.Info()
			if err != nil {
				continue
			}
			res.Assets = append(res.Assets, asset.Asset{
				Name:         asset.Stem(name),
				Path:         full,
				Extension:    ext,
				Size:         info.Size(),
				RelatedFiles: findRelated(full),
			})
		case asset.ArchiveExts[ext]:
			found, err := b.inspector.Inspect(full)
			if err != nil {
				log.Printf("browser: inspect %s: %v", full, err)
				continue
			}
			res.Assets = append(res.Assets, found...)
		}
	}
	return res, nil
}

// Related lists the sidecar files for a direct (non-archive) asset.
func (b *Browser) Related(assetPath string) ([]string, error) {
	abs, err := filepath.Abs(assetPath)
	if err != nil {
		return nil, fmt.Errorf("browser: resolve %s: %w", assetPath, err)
	}
	if !b.withinRoot(abs) {
		return nil, fmt.Errorf("%w: %s", ErrOutsideRoot, abs)
	}
	return findRelated(abs), nil
}

// WithinRoot reports whether an absolute path stays inside the configured
// root. With no root set every path qualifies.
func (b *Browser) WithinRoot(p string) bool {
	abs, err := filepath.Abs(p)
	if err != nil {
		return false
	}
	return b.withinRoot(abs)
}

func (b *Browser) withinRoot(abs string) bool {
	if b.root == "" {
		return true
	}
	rel, err := filepath.Rel(b.root, abs)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}

// parentPath is the directory above, or empty at the filesystem root or the
// browse root boundary.
func (b *Browser) parentPath(dir string) string {
	parent := filepath.Dir(dir)
	if parent == dir {
		return ""
	}
	if !b.withinRoot(parent) {
		return ""
	}
	return parent
}

func hasVisibleChildren(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), ".") {
			return true
		}
	}
	return false
}

// relatedByExt lists the companion formats checked per asset type before the
// shared texture-stem scan.
var relatedByExt = map[string][]string{
	".obj": {".mtl"},
}

var textureExts = []string{".png", ".jpg", ".jpeg", ".tga", ".bmp", ".tiff"}

// findRelated looks next to the asset for same-stem companions: the known
// material sidecars for its type plus any same-stem texture.
func findRelated(assetPath string) []string {
	dir := filepath.Dir(assetPath)
	stem := asset.Stem(assetPath)
	ext := asset.Ext(assetPath)

	var related []string
	for _, relExt := range relatedByExt[ext] {
		candidate := filepath.Join(dir, stem+relExt)
		if _, err := os.Stat(candidate); err == nil {
			related = append(related, candidate)
		}
	}
	for _, texExt := range textureExts {
		candidate := filepath.Join(dir, stem+texExt)
		if _, err := os.Stat(candidate); err == nil {
			related = append(related, candidate)
		}
	}
	return related
}
