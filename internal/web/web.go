// Package web embeds the single-page client.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var content embed.FS

// Static returns the embedded page assets rooted at the page directory.
func Static() fs.FS {
	sub, err := fs.Sub(content, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Handler serves the page and its assets.
func Handler() http.Handler {
	return http.FileServer(http.FS(Static()))
}
