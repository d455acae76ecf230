package asm

import (
	"io/fs"
	"os"
	"path/filepath"
)

// SourceRoot returns the include filesystem for the source file filename,
// and the name of filename inside it. The root is dir when it contains
// filename, otherwise the directory of filename.
func SourceRoot(dir, filename string) (root fs.FS, name string, err error) {
	file, err := filepath.Abs(filename)
	if err != nil {
		return
	}

	if len(dir) != 0 {
		var top string
		top, err = filepath.Abs(dir)
		if err != nil {
			return
		}
		rel, rerr := filepath.Rel(top, file)
		if rerr == nil {
			rel = filepath.ToSlash(rel)
			if fs.ValidPath(rel) {
				root = os.DirFS(top)
				name = rel
				return
			}
		}
	}

	root = os.DirFS(filepath.Dir(file))
	name = filepath.Base(file)
	return
}
