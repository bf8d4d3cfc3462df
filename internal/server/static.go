package server

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotiverse/internal/web"
)

// StaticHandler serves built client assets and falls back to the entry document for unknown paths.
type StaticHandler struct {
	fsys       fs.FS
	fileServer http.Handler
}

// NewStaticHandler serves dir when it exists and the embedded shell otherwise.
func NewStaticHandler(dir string, logger *log.Logger) *StaticHandler {
	var fsys fs.FS
	if info, err := os.Stat(dir); dir != "" && err == nil && info.IsDir() {
		fsys = os.DirFS(dir)
		logger.Info("serving static assets", "dir", dir)
	} else {
		fsys = web.Assets()
		logger.Info("static dir not found, serving embedded client", "dir", dir)
	}
	return NewStaticFSHandler(fsys)
}

// NewStaticFSHandler serves assets from fsys.
func NewStaticFSHandler(fsys fs.FS) *StaticHandler {
	return &StaticHandler{fsys: fsys, fileServer: http.FileServerFS(fsys)}
}

// Routes returns the HTTP routes this handler serves.
func (h *StaticHandler) Routes() []string {
	return []string{"/"}
}

// ServeHTTP serves an existing file or the index document.
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name != "" {
		if info, err := fs.Stat(h.fsys, name); err == nil && !info.IsDir() {
			h.fileServer.ServeHTTP(w, r)
			return
		}
	}

	index, err := fs.ReadFile(h.fsys, web.IndexFile)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		_, _ = w.Write(index)
	}
}
