// Package ui serves the single-page operator console.
package ui

import (
	"embed"
	"net/http"
	"os"
)

//go:embed index.html
var content embed.FS

// DevEnv makes Handler read index.html from disk on every request.
const DevEnv = "ENCLAVE_DEV"

// Handler returns the console page. With ENCLAVE_DEV=1 the page is read from
// internal/ui/index.html so edits show up without a rebuild.
func Handler() http.Handler {
	if os.Getenv(DevEnv) == "1" {
		return pageHandler(func() ([]byte, error) { return os.ReadFile("internal/ui/index.html") }, true)
	}
	return pageHandler(func() ([]byte, error) { return content.ReadFile("index.html") }, false)
}

func pageHandler(read func() ([]byte, error), noCache bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := read()
		if err != nil {
			http.Error(w, "console page not found", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if noCache {
			w.Header().Set("Cache-Control", "no-cache")
		}
		w.Write(data)
	})
}
