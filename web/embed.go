package web

import (
	"embed"
	"io/fs"
)

// FS holds the page templates and static assets.
//
//go:embed templates static
var FS embed.FS

// Static is the asset tree served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(FS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
