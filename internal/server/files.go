package server

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

// mimeTypes maps file extensions to the content types the server sends.
// Anything else is served as application/octet-stream.
var mimeTypes = map[string]string{
	"html": "text/html",
	"css":  "text/css",
	"js":   "application/javascript",
	"json": "application/json",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"svg":  "image/svg+xml",
	"webp": "image/webp",
	"pdf":  "application/pdf",
	"ico":  "image/x-icon",
}

// ContentType returns the content type for a file name.
func ContentType(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if ct, ok := mimeTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Files serves the static tree under root:
//
//   - "/" is "/index.html"
//   - a path without a "." gets ".html" appended
//   - an existing file is served with the type from its extension
//   - otherwise "<path>/index.html" is served as text/html
//   - otherwise 404 "Not Found"
//
// Lookups are confined to root; the tree may be replaced between requests.
func Files(root string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dir, err := os.OpenRoot(root)
		if err != nil {
			notFound(w)
			return
		}
		defer func() { _ = dir.Close() }()

		clean := path.Clean("/" + r.URL.Path)
		p := clean
		if p == "/" {
			p = "/index.html"
		}
		if !strings.Contains(p, ".") {
			p += ".html"
		}

		if serveFile(w, r, dir, p, ContentType(p)) {
			return
		}
		if serveFile(w, r, dir, path.Join(clean, "index.html"), "text/html") {
			return
		}
		notFound(w)
	})
}

// serveFile writes the regular file at name if it exists and reports whether it did.
func serveFile(w http.ResponseWriter, r *http.Request, dir *os.Root, name, contentType string) bool {
	rel := strings.TrimPrefix(name, "/")
	if rel == "" || !fs.ValidPath(rel) {
		return false
	}
	f, err := dir.Open(rel)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	w.Header().Set("Content-Type", contentType)
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return true
}

func notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("Not Found"))
}
