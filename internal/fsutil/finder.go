// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// FindFiles recursively searches rootPath for files accepted by match and
// returns their full paths in lexical order.
func FindFiles(rootPath string, match func(path string) bool) ([]string, error) {
	if match == nil {
		panic("match must not be nil")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && match(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// HasExtension returns a matcher for files ending with one of the given
// extensions, compared case-insensitively.
func HasExtension(extensions ...string) func(path string) bool {
	if len(extensions) == 0 {
		panic("at least one extension is required")
	}
	return func(path string) bool {
		ext := strings.ToLower(filepath.Ext(path))
		for _, e := range extensions {
			if ext == strings.ToLower(e) {
				return true
			}
		}
		return false
	}
}
