package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"meshvault/internal/asset"
)

// Unity packages are gzipped tars where each asset lives in a GUID-named
// folder holding a "pathname" file (the original project path) and an
// "asset" file (the data). The .meta siblings are ignored.

type unityEntry struct {
	guid string
	size int64
}

// unityIndex maps original project paths to their GUID folder and data size.
func unityIndex(archivePath string) (map[string]unityEntry, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", archivePath, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("archive: gunzip %s: %w", archivePath, err)
	}
	defer gz.Close()

	guidToPath := map[string]string{}
	guidToSize := map[string]int64{}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("archive: read %s: %w", archivePath, err)
		}
		parts := strings.Split(strings.Trim(hdr.Name, "/"), "/")
		if len(parts) != 2 {
			continue
		}
		switch parts[1] {
		case "pathname":
			data, err := io.ReadAll(io.LimitReader(tr, 1<<16))
			if err != nil {
				continue
			}
			// The pathname file may carry a second line of metadata.
			pathname, _, _ := strings.Cut(strings.TrimSpace(string(data)), "\n")
			guidToPath[parts[0]] = strings.TrimSpace(pathname)
		case "asset":
			guidToSize[parts[0]] = hdr.Size
		}
	}

	index := make(map[string]unityEntry, len(guidToPath))
	for guid, pathname := range guidToPath {
		index[pathname] = unityEntry{guid: guid, size: guidToSize[guid]}
	}
	return index, nil
}

func (in *Inspector) inspectUnitypackage(archivePath string) ([]asset.Asset, error) {
	index, err := unityIndex(archivePath)
	if err != nil {
		return nil, err
	}

	var assets []asset.Asset
	for pathname, entry := range index {
		ext := asset.Ext(pathname)
		if !asset.ModelExts[ext] {
			continue
		}

		// Sidecars are entries in the same project directory.
		dir := path.Dir(pathname)
		var related []string
		for other := range index {
			if other == pathname || path.Dir(other) != dir {
				continue
			}
			if asset.RelatedExts[asset.Ext(other)] {
				related = append(related, other)
			}
		}

		assets = append(assets, asset.Asset{
			Name:         asset.Stem(pathname),
			Path:         archivePath,
			Extension:    ext,
			Size:         entry.size,
			IsInArchive:  true,
			ArchivePath:  archivePath,
			InnerPath:    pathname,
			RelatedFiles: related,
		})
	}
	return assets, nil
}

// extractFromUnitypackage pulls the target asset and the models/sidecars
// sharing its project directory, restoring original file names.
func (in *Inspector) extractFromUnitypackage(archivePath, innerPath string) (string, error) {
	index, err := unityIndex(archivePath)
	if err != nil {
		return "", err
	}
	target, ok := index[innerPath]
	if !ok {
		return "", fmt.Errorf("archive: %s not found in %s", innerPath, archivePath)
	}

	dir, err := in.tempDir(archivePath)
	if err != nil {
		return "", err
	}

	targetDir := path.Dir(innerPath)
	guidToName := map[string]string{}
	for pathname, entry := range index {
		ext := asset.Ext(pathname)
		inScope := entry.guid == target.guid ||
			(path.Dir(pathname) == targetDir && (asset.ModelExts[ext] || asset.RelatedExts[ext]))
		if inScope {
			guidToName[entry.guid] = path.Base(pathname)
		}
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("archive: open %s: %w", archivePath, err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", fmt.Errorf("archive: gunzip %s: %w", archivePath, err)
	}
	defer gz.Close()

	var mainPath string
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("archive: read %s: %w", archivePath, err)
		}
		parts := strings.Split(strings.Trim(hdr.Name, "/"), "/")
		if len(parts) != 2 || parts[1] != "asset" {
			continue
		}
		name, ok := guidToName[parts[0]]
		if !ok {
			continue
		}
		out, err := entryPath(dir, name)
		if err != nil {
			continue
		}
		if err := writeEntry(out, tr); err != nil {
			if parts[0] == target.guid {
				return "", err
			}
			continue
		}
		if parts[0] == target.guid {
			mainPath = out
		}
	}
	if mainPath == "" {
		return "", fmt.Errorf("archive: asset data for %s missing in %s", innerPath, archivePath)
	}
	return mainPath, nil
}
