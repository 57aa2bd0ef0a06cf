package server

import (
	pathpkg "path"
	"strings"

	"github.com/gin-contrib/static"

	"github.com/biopaper/paperpush/internal/routes"
)

const indexFile = "index.html"

// assetFS serves regular files from the bundle only. Directories and any
// index.html are refused so the entry point never bypasses the page guard.
type assetFS struct {
	static.ServeFileSystem
}

func newAssetFS(dir string) assetFS {
	return assetFS{ServeFileSystem: static.LocalFile(dir, false)}
}

func (a assetFS) Exists(prefix, path string) bool {
	name := routes.CleanPath(strings.TrimPrefix(path, prefix))
	if pathpkg.Base(name) == indexFile {
		return false
	}
	if !a.ServeFileSystem.Exists(prefix, path) {
		return false
	}

	f, err := a.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	return err == nil && !info.IsDir()
}
