package library

import (
	"os"
	"path/filepath"
)

// discoverFiles walks root and returns every regular file below it in
// lexical order. Unreadable subdirectories are skipped; a missing root is an
// error.
func discoverFiles(root string) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		// Skip any walk errors - intentionally continuing to scan other paths
		if walkErr != nil {
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil //nolint:nilerr // intentionally skipping errors
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
