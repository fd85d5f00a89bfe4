package server

import (
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// Responder serves files from a read-only afero filesystem through the
// net/http file server, fixing up Content-Type (and optionally ETag)
// before the file server sees the request.
type Responder struct {
	fs     afero.Fs
	files  http.Handler
	etags  bool
	logger *slog.Logger
}

// NewResponder returns a Responder rooted at the top of fsys. Writes
// through fsys are refused.
func NewResponder(fsys afero.Fs, etags bool, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	ro := afero.NewReadOnlyFs(fsys)
	return &Responder{
		fs:     ro,
		files:  http.FileServer(afero.NewHttpFs(ro).Dir("/")),
		etags:  etags,
		logger: logger,
	}
}

func (rs *Responder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
	default:
		http.Error(w, "501 - Unsupported method ("+r.Method+")", http.StatusNotImplemented)
		return
	}

	if hasDotDotSegment(r.URL.Path) {
		http.Error(w, "403 - Forbidden: Invalid path", http.StatusForbidden)
		return
	}

	name := path.Clean("/" + r.URL.Path)
	info, err := rs.fs.Stat(name)
	if err == nil && info.Mode().IsRegular() {
		if ct := ResolveContentType(name); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		if rs.etags {
			tag, err := fileETag(rs.fs, name, info)
			if err != nil {
				rs.logger.Warn("Failed to hash file for ETag", "path", name, "error", err)
			} else if tag != "" {
				w.Header().Set("ETag", tag)
			}
		}
	}

	rs.files.ServeHTTP(w, r)
}

// hasDotDotSegment reports whether p tries to climb out of the served root.
func hasDotDotSegment(p string) bool {
	if !strings.Contains(p, "..") {
		return false
	}
	for _, seg := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}
