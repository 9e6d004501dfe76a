package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nwaples/rardecode/v2"

	"meshvault/internal/asset"
)

func (in *Inspector) inspectRar(archivePath string) ([]asset.Asset, error) {
	names, sizes, err := rarEntries(archivePath)
	if err != nil {
		return nil, err
	}

	var assets []asset.Asset
	for i, name := range names {
		ext := asset.Ext(name)
		if !asset.ModelExts[ext] {
			continue
		}
		assets = append(assets, asset.Asset{
			Name:         asset.Stem(name),
			Path:         archivePath,
			Extension:    ext,
			Size:         sizes[i],
			IsInArchive:  true,
			ArchivePath:  archivePath,
			InnerPath:    name,
			RelatedFiles: relatedIn(name, names),
		})
	}
	return assets, nil
}

// extractFromRar extracts the asset plus sidecars. RAR volumes are often
// solid, so the whole wanted set comes out in one sequential pass. A previous
// successful extraction is reused.
func (in *Inspector) extractFromRar(archivePath, innerPath string) (string, error) {
	dir, err := in.tempDir(archivePath)
	if err != nil {
		return "", err
	}

	target, err := entryPath(dir, innerPath)
	if err != nil {
		return "", err
	}
	if st, err := os.Stat(target); err == nil && st.Size() > 0 {
		return target, nil
	}

	names, _, err := rarEntries(archivePath)
	if err != nil {
		return "", err
	}
	wanted := map[string]bool{innerPath: true}
	for _, rel := range relatedIn(innerPath, names) {
		wanted[rel] = true
	}

	rr, err := rardecode.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("archive: open rar %s: %w", archivePath, err)
	}
	defer rr.Close()

	found := false
	for {
		hdr, err := rr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("archive: read rar %s: %w", archivePath, err)
		}
		if hdr.IsDir || !wanted[hdr.Name] {
			continue
		}
		out, err := entryPath(dir, hdr.Name)
		if err != nil {
			continue
		}
		if err := writeEntry(out, rr); err != nil {
			if hdr.Name == innerPath {
				return "", err
			}
			continue
		}
		if hdr.Name == innerPath {
			found = true
		}
	}
	if !found {
		return "", fmt.Errorf("archive: %s not found in %s", innerPath, archivePath)
	}
	return target, nil
}

// rarEntries lists the file names and unpacked sizes in a RAR archive.
func rarEntries(archivePath string) ([]string, []int64, error) {
	rr, err := rardecode.OpenReader(archivePath)
	if err != nil {
		return nil, nil, fmt.Errorf("archive: open rar %s: %w", archivePath, err)
	}
	defer rr.Close()

	var names []string
	var sizes []int64
	for {
		hdr, err := rr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("archive: read rar %s: %w", archivePath, err)
		}
		if hdr.IsDir {
			continue
		}
		names = append(names, hdr.Name)
		sizes = append(sizes, hdr.UnPackedSize)
	}
	return names, sizes, nil
}

func writeEntry(out string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("archive: mkdir for %s: %w", out, err)
	}
	dst, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("archive: create %s: %w", out, err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, r); err != nil {
		return fmt.Errorf("archive: extract to %s: %w", out, err)
	}
	return nil
}
