package site

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var staticFS embed.FS

//go:embed templates/*.html
var templateFS embed.FS

// FS returns an http.FileSystem for the embedded stylesheet.
func FS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// Expose the unrooted FS on error.
		return http.FS(staticFS)
	}
	return http.FS(sub)
}
