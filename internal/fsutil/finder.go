// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// HasExtension reports whether the file name of path ends with extension.
// Hidden files such as ".hcl" on their own do not count.
func HasExtension(path, extension string) bool {
	name := filepath.Base(path)
	return len(name) > len(extension) && strings.HasSuffix(name, extension)
}

// FindFilesByExtension recursively searches rootPath for files ending with
// extension. Paths are returned in lexical walk order, so repeated calls over
// an unchanged tree give the same result.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && HasExtension(path, extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
