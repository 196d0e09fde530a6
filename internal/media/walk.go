package media

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
)

// CollectFiles returns every regular file under root, depth-first in lexical
// order. Unreadable subdirectories are logged and skipped; an unreadable root
// is an error. Symlinks are not followed.
func CollectFiles(root string, logger *slog.Logger) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}
