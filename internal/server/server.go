// Package server exposes the asset browser over HTTP: directory browsing,
// asset serving with transparent FBX conversion, archive extraction,
// previews, thumbnails, export and conversion history.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"meshvault/internal/archive"
	"meshvault/internal/asset"
	"meshvault/internal/browser"
	"meshvault/internal/config"
	"meshvault/internal/convert"
	"meshvault/internal/export"
	"meshvault/internal/preview"
	"meshvault/internal/store"
	"meshvault/internal/texture"
)

// modelMIME maps 3D formats the standard mime table does not know.
var modelMIME = map[string]string{
	".obj":  "model/obj",
	".fbx":  "model/fbx",
	".mtl":  "model/mtl",
	".gltf": "model/gltf+json",
	".glb":  "model/gltf-binary",
	".stl":  "model/stl",
}

// Server holds the services behind the HTTP API.
type Server struct {
	cfg       config.Config
	browser   *browser.Browser
	inspector *archive.Inspector
	previews  *preview.Renderer
	thumbs    *texture.Cache
	history   *store.Store // optional
	mux       *http.ServeMux
}

// New wires the API routes. history may be nil when conversion recording is
// disabled.
func New(cfg config.Config, b *browser.Browser, in *archive.Inspector, history *store.Store) *Server {
	s := &Server{
		cfg:       cfg,
		browser:   b,
		inspector: in,
		previews: &preview.Renderer{
			Size:        cfg.PreviewSize,
			Supersample: cfg.Supersample,
			CacheDir:    filepath.Join(cfg.CacheDir, "previews"),
		},
		thumbs:  texture.NewCache(cfg.PreviewSize),
		history: history,
		mux:     http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /api/browse", s.handleBrowse)
	s.mux.HandleFunc("GET /api/default_path", s.handleDefaultPath)
	s.mux.HandleFunc("GET /api/asset/file", s.handleAssetFile)
	s.mux.HandleFunc("GET /api/asset/archive", s.handleArchiveAsset)
	s.mux.HandleFunc("GET /api/asset/prepare_archive", s.handlePrepareArchive)
	s.mux.HandleFunc("GET /api/asset/related", s.handleRelatedFile)
	s.mux.HandleFunc("GET /api/asset/related_files", s.handleRelatedList)
	s.mux.HandleFunc("GET /api/asset/thumbnail", s.handleThumbnail)
	s.mux.HandleFunc("GET /api/asset/preview", s.handlePreview)
	s.mux.HandleFunc("POST /api/export", s.handleExport)
	s.mux.HandleFunc("GET /api/conversions", s.handleConversions)

	if cfg.FrontendDir != "" {
		s.mux.Handle("GET /", http.FileServer(http.Dir(cfg.FrontendDir)))
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close releases the temp extraction directories.
func (s *Server) Close() {
	s.inspector.Cleanup()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encode response: %v", err)
	}
}

func httpError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		path = s.defaultPath()
	}

	res, err := s.browser.Browse(path)
	switch {
	case errors.Is(err, browser.ErrOutsideRoot):
		httpError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, os.ErrNotExist):
		httpError(w, http.StatusNotFound, err.Error())
	case err != nil:
		httpError(w, http.StatusBadRequest, err.Error())
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) defaultPath() string {
	if root := s.browser.Root(); root != "" {
		return root
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "/"
	}
	return home
}

func (s *Server) handleDefaultPath(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"path": s.defaultPath()})
}

// maybeConvert transparently converts a legacy FBX and records the run. On
// failure the original path comes back so the viewer can still try it.
func (s *Server) maybeConvert(path string) string {
	if !convert.NeedsConversion(path) {
		return path
	}
	out := convert.ConvertedPath(path)
	if _, err := os.Stat(out); err == nil {
		return out
	}

	stats, err := convert.Convert(path, out)
	s.recordConversion(path, out, stats, err)
	if err != nil {
		log.Printf("server: convert %s: %v", path, err)
		return path
	}
	return out
}

func (s *Server) recordConversion(src, dst string, stats convert.Stats, convErr error) {
	if s.history == nil {
		return
	}
	rec := store.Conversion{
		SourcePath:    src,
		OutputPath:    dst,
		SourceVersion: stats.SourceVersion,
		GeometryCount: stats.GeometryCount,
		Duration:      stats.Duration,
		Status:        store.StatusOK,
	}
	if convErr != nil {
		rec.Status = store.StatusFailed
		rec.Error = convErr.Error()
	}
	if _, err := s.history.Record(rec); err != nil {
		log.Printf("server: record conversion: %v", err)
	}
}

// allowedPath confines asset serving to the browse root plus the inspector's
// temp extraction directories, where prepared archive assets live.
func (s *Server) allowedPath(p string) bool {
	return s.browser.WithinRoot(p) || s.inspector.Managed(p)
}

// serveFile sends a file with the right model MIME type and its name as the
// download filename.
func serveFile(w http.ResponseWriter, r *http.Request, path string) {
	ctype := modelMIME[asset.Ext(path)]
	if ctype == "" {
		ctype = mime.TypeByExtension(filepath.Ext(path))
	}
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition", `inline; filename="`+filepath.Base(path)+`"`)
	http.ServeFile(w, r, path)
}

func (s *Server) handleAssetFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if !s.allowedPath(path) {
		httpError(w, http.StatusForbidden, "path outside root")
		return
	}
	st, err := os.Stat(path)
	if err != nil || st.IsDir() {
		httpError(w, http.StatusNotFound, "File not found: "+path)
		return
	}
	serveFile(w, r, s.maybeConvert(path))
}

func (s *Server) handleArchiveAsset(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	archivePath, innerPath := q.Get("archive_path"), q.Get("inner_path")

	extracted, err := s.inspector.Extract(archivePath, innerPath)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	serveFile(w, r, extracted)
}

func (s *Server) handlePrepareArchive(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	archivePath, innerPath := q.Get("archive_path"), q.Get("inner_path")

	extracted, err := s.inspector.Extract(archivePath, innerPath)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}

	servePath := s.maybeConvert(extracted)

	// The archive listing carries the related-file names; map them onto the
	// extracted temp paths so the viewer gets real filesystem locations.
	var relatedInner []string
	if found, err := s.inspector.Inspect(archivePath); err == nil {
		for _, a := range found {
			if a.InnerPath == innerPath {
				relatedInner = a.RelatedFiles
				break
			}
		}
	}
	related := s.inspector.ExtractedRelated(archivePath, relatedInner)
	if related == nil {
		related = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"file_url":         "/api/asset/file?path=" + url.QueryEscape(servePath),
		"file_path":        servePath,
		"related_files":    related,
		"actual_extension": asset.Ext(servePath),
	})
}

func (s *Server) handleRelatedFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if !s.allowedPath(path) {
		httpError(w, http.StatusForbidden, "path outside root")
		return
	}
	if st, err := os.Stat(path); err != nil || st.IsDir() {
		httpError(w, http.StatusNotFound, "File not found: "+path)
		return
	}
	serveFile(w, r, path)
}

// handleRelatedList reports an asset's sidecar files without serving them, so
// a client can enumerate textures and materials before fetching.
func (s *Server) handleRelatedList(w http.ResponseWriter, r *http.Request) {
	related, err := s.browser.Related(r.URL.Query().Get("path"))
	switch {
	case errors.Is(err, browser.ErrOutsideRoot):
		httpError(w, http.StatusForbidden, err.Error())
	case err != nil:
		httpError(w, http.StatusBadRequest, err.Error())
	default:
		if related == nil {
			related = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"related_files": related})
	}
}

func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if !s.allowedPath(path) {
		httpError(w, http.StatusForbidden, "path outside root")
		return
	}
	data, err := s.thumbs.Get(path)
	if err != nil {
		httpError(w, http.StatusNotFound, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/webp")
	w.Write(data)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if !s.allowedPath(path) {
		httpError(w, http.StatusForbidden, "path outside root")
		return
	}
	data, err := s.previews.WebP(path)
	if err != nil {
		httpError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/webp")
	w.Write(data)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req export.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	res := export.Export(req)
	if !res.Success {
		httpError(w, http.StatusInternalServerError, res.Message)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleConversions(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		httpError(w, http.StatusNotFound, "conversion history disabled")
		return
	}

	q := r.URL.Query()
	if src := q.Get("source"); src != "" {
		rows, err := s.history.BySource(src)
		if err != nil {
			httpError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"conversions": emptyIfNil(rows)})
		return
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	rows, err := s.history.Recent(limit)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversions": emptyIfNil(rows)})
}

func emptyIfNil(rows []store.Conversion) []store.Conversion {
	if rows == nil {
		return []store.Conversion{}
	}
	return rows
}
