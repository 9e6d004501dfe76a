// Package export copies 3D assets, renamed, out of the library to a target
// directory. Assets travel with their sidecars; archive-hosted assets are
// extracted on the way out.
package export

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/nwaples/rardecode/v2"

	"meshvault/internal/asset"
)

// Request names an asset to export and where it should land. NewName carries
// no extension; the source's extension is kept.
type Request struct {
	SourcePath   string   `json:"source_path"`
	TargetDir    string   `json:"target_dir"`
	NewName      string   `json:"new_name"`
	IsInArchive  bool     `json:"is_in_archive"`
	ArchivePath  string   `json:"archive_path"`
	InnerPath    string   `json:"inner_path"`
	RelatedFiles []string `json:"related_files"`
}

// Result reports an export outcome.
type Result struct {
	Success    bool     `json:"success"`
	OutputPath string   `json:"output_path"`
	Message    string   `json:"message"`
	Files      []string `json:"files_exported"`
}

// Export runs one export request. Failures come back as an unsuccessful
// Result, not an error, so callers can relay the message as-is.
func Export(req Request) Result {
	if err := os.MkdirAll(req.TargetDir, 0755); err != nil {
		return failure(req.TargetDir, fmt.Errorf("create target dir: %w", err))
	}

	var (
		files []string
		out   string
		err   error
	)
	if req.IsInArchive && req.ArchivePath != "" && req.InnerPath != "" {
		files, out, err = exportFromArchive(req)
	} else {
		files, err = exportFromFilesystem(req)
		out = req.TargetDir
	}
	if err != nil {
		return failure(req.TargetDir, err)
	}
	return Result{
		Success:    true,
		OutputPath: out,
		Message:    fmt.Sprintf("Exported %d file(s)", len(files)),
		Files:      files,
	}
}

func failure(dir string, err error) Result {
	return Result{
		OutputPath: dir,
		Message:    fmt.Sprintf("Export failed: %v", err),
		Files:      []string{},
	}
}

// exportFromFilesystem copies the asset with its new name. With sidecars the
// whole set goes into a subfolder named after the asset.
func exportFromFilesystem(req Request) ([]string, error) {
	ext := filepath.Ext(req.SourcePath)

	if len(req.RelatedFiles) == 0 {
		dest := filepath.Join(req.TargetDir, req.NewName+ext)
		if err := copyUnlessSame(req.SourcePath, dest); err != nil {
			return nil, err
		}
		return []string{dest}, nil
	}

	assetDir := filepath.Join(req.TargetDir, req.NewName)
	if err := os.MkdirAll(assetDir, 0755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}

	dest := filepath.Join(assetDir, req.NewName+ext)
	if err := copyUnlessSame(req.SourcePath, dest); err != nil {
		return nil, err
	}
	exported := []string{dest}

	for _, rel := range req.RelatedFiles {
		relDest := filepath.Join(assetDir, req.NewName+filepath.Ext(rel))
		// Sidecars sharing an extension keep their original names.
		if _, err := os.Stat(relDest); err == nil {
			relDest = filepath.Join(assetDir, filepath.Base(rel))
		}
		if err := copyUnlessSame(rel, relDest); err != nil {
			return nil, err
		}
		exported = append(exported, relDest)
	}
	return exported, nil
}

// exportFromArchive extracts the asset and its sidecars straight to the
// target, renaming the main file. More than one file means a subfolder.
func exportFromArchive(req Request) ([]string, string, error) {
	paths := append([]string{req.InnerPath}, req.RelatedFiles...)

	outDir := req.TargetDir
	if len(paths) > 1 {
		outDir = filepath.Join(req.TargetDir, req.NewName)
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return nil, "", fmt.Errorf("create asset dir: %w", err)
		}
	}

	mainExt := path.Ext(req.InnerPath)
	destFor := func(i int, inner string) string {
		if i == 0 {
			return filepath.Join(outDir, req.NewName+mainExt)
		}
		if len(paths) > 1 {
			return filepath.Join(outDir, path.Base(inner))
		}
		return filepath.Join(outDir, req.NewName+path.Ext(inner))
	}

	var (
		files []string
		err   error
	)
	switch asset.Ext(req.ArchivePath) {
	case ".zip":
		files, err = exportFromZip(req.ArchivePath, paths, destFor)
	case ".rar":
		files, err = exportFromRar(req.ArchivePath, paths, destFor)
	default:
		return nil, "", fmt.Errorf("unsupported archive format: %s", asset.Ext(req.ArchivePath))
	}
	if err != nil {
		return nil, "", err
	}
	return files, outDir, nil
}

func exportFromZip(archivePath string, paths []string, destFor func(int, string) string) ([]string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer zr.Close()

	byName := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		byName[f.Name] = f
	}

	var exported []string
	for i, inner := range paths {
		f, ok := byName[inner]
		if !ok {
			return nil, fmt.Errorf("%s not found in archive", inner)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", inner, err)
		}
		dest := destFor(i, inner)
		err = writeStream(dest, rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		exported = append(exported, dest)
	}
	return exported, nil
}

// exportFromRar reads the archive once and writes every wanted entry, since
// solid volumes only decode sequentially.
func exportFromRar(archivePath string, paths []string, destFor func(int, string) string) ([]string, error) {
	order := make(map[string]int, len(paths))
	for i, inner := range paths {
		order[inner] = i
	}

	rr, err := rardecode.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open rar: %w", err)
	}
	defer rr.Close()

	dests := make([]string, len(paths))
	for {
		hdr, err := rr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read rar: %w", err)
		}
		i, ok := order[hdr.Name]
		if !ok || hdr.IsDir {
			continue
		}
		dest := destFor(i, hdr.Name)
		if err := writeStream(dest, rr); err != nil {
			return nil, err
		}
		dests[i] = dest
	}

	var exported []string
	for i, dest := range dests {
		if dest == "" {
			return nil, fmt.Errorf("%s not found in archive", paths[i])
		}
		exported = append(exported, dest)
	}
	return exported, nil
}

func writeStream(dest string, r io.Reader) error {
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}

// copyUnlessSame copies src to dest, skipping when both resolve to the same
// file so an in-place export never truncates its own source.
func copyUnlessSame(src, dest string) error {
	absSrc, err1 := filepath.Abs(src)
	absDest, err2 := filepath.Abs(dest)
	if err1 == nil && err2 == nil && absSrc == absDest {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	return writeStream(dest, in)
}
