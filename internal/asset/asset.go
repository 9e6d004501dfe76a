// Package asset holds the shared model for discovered 3D assets and the
// extension sets that drive discovery.
package asset

import (
	"path"
	"strings"
)

// Asset describes a discovered 3D asset, either directly on disk or inside
// an archive.
type Asset struct {
	Name         string   `json:"name"`
	Path         string   `json:"path"`
	Extension    string   `json:"extension"`
	Size         int64    `json:"size"`
	IsInArchive  bool     `json:"is_in_archive"`
	ArchivePath  string   `json:"archive_path,omitempty"`
	InnerPath    string   `json:"inner_path,omitempty"`
	RelatedFiles []string `json:"related_files"`
}

// ModelExts are the 3D formats the viewer can load.
var ModelExts = map[string]bool{
	".obj":  true,
	".fbx":  true,
	".gltf": true,
	".glb":  true,
	".stl":  true,
}

// ArchiveExts are the container formats worth inspecting for models.
var ArchiveExts = map[string]bool{
	".zip":          true,
	".rar":          true,
	".unitypackage": true,
}

// RelatedExts are sidecar formats (materials and textures) that travel with
// a model.
var RelatedExts = map[string]bool{
	".mtl":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tga":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
	".webp": true,
}

// Ext returns the lowercased extension of a slash or OS path.
func Ext(name string) string {
	return strings.ToLower(path.Ext(name))
}

// Stem returns the base name without its extension.
func Stem(name string) string {
	base := path.Base(name)
	return strings.TrimSuffix(base, path.Ext(base))
}
