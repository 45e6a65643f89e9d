// Package web holds the browser client served under /ui.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var content embed.FS

// FileSystem returns the static client rooted at the static directory.
func FileSystem() http.FileSystem {
	sub, err := fs.Sub(content, "static")
	if err != nil {
		// static is embedded at build time
		panic(err)
	}
	return http.FS(sub)
}
