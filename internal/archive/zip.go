package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"meshvault/internal/asset"
)

func (in *Inspector) inspectZip(archivePath string) ([]asset.Asset, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("archive: open zip %s: %w", archivePath, err)
	}
	defer zr.Close()

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}

	var assets []asset.Asset
	for _, f := range zr.File {
		ext := asset.Ext(f.Name)
		if !asset.ModelExts[ext] {
			continue
		}
		assets = append(assets, asset.Asset{
			Name:         asset.Stem(f.Name),
			Path:         archivePath,
			Extension:    ext,
			Size:         int64(f.UncompressedSize64),
			IsInArchive:  true,
			ArchivePath:  archivePath,
			InnerPath:    f.Name,
			RelatedFiles: relatedIn(f.Name, names),
		})
	}
	return assets, nil
}

func (in *Inspector) extractFromZip(archivePath, innerPath string) (string, error) {
	dir, err := in.tempDir(archivePath)
	if err != nil {
		return "", err
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("archive: open zip %s: %w", archivePath, err)
	}
	defer zr.Close()

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}

	wanted := map[string]bool{innerPath: true}
	for _, rel := range relatedIn(innerPath, names) {
		wanted[rel] = true
	}

	var mainPath string
	for _, f := range zr.File {
		if !wanted[f.Name] {
			continue
		}
		out, err := extractZipEntry(f, dir)
		if err != nil {
			if f.Name == innerPath {
				return "", err
			}
			continue // sidecar failures are tolerable
		}
		if f.Name == innerPath {
			mainPath = out
		}
	}
	if mainPath == "" {
		return "", fmt.Errorf("archive: %s not found in %s", innerPath, archivePath)
	}
	return mainPath, nil
}

func extractZipEntry(f *zip.File, dir string) (string, error) {
	out, err := entryPath(dir, f.Name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return "", fmt.Errorf("archive: mkdir for %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("archive: open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	dst, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("archive: create %s: %w", out, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, rc); err != nil {
		return "", fmt.Errorf("archive: extract %s: %w", f.Name, err)
	}
	return out, nil
}

// entryPath joins an archive-internal name under dir, rejecting names that
// would escape it.
func entryPath(dir, name string) (string, error) {
	out := filepath.Join(dir, filepath.FromSlash(name))
	if !strings.HasPrefix(out, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive: entry %s escapes extraction dir", name)
	}
	return out, nil
}
