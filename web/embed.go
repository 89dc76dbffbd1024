// Package web embeds the portal's HTML templates and static assets.
package web

import (
	"embed"
	"io/fs"
	"log/slog"
	"os"
)

//go:embed static templates
var content embed.FS

// StaticFS returns the static file system.
func StaticFS() fs.FS {
	return sub("static")
}

// TemplatesFS returns the templates file system.
func TemplatesFS() fs.FS {
	return sub("templates")
}

func sub(dir string) fs.FS {
	s, err := fs.Sub(content, dir)
	if err != nil {
		slog.Error("failed to create embedded sub-filesystem", "dir", dir, "error", err)
		os.Exit(1)
	}
	return s
}
