// Package web provides embedded static assets (CSS, JS) served at
// /static/. The category tree editor script lives here; stylesheets are
// compiled into static/css before release builds.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:static
var staticFS embed.FS

// Static returns the asset tree rooted at static/, ready for http.FS.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
