// Package source finds CSV tables on disk or over HTTP and loads them
// for evaluation.
package source

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// DiscoverOptions filters directory discovery
type DiscoverOptions struct {
	Recursive bool

	// Size bounds in bytes; zero disables a bound
	MinSize int64
	MaxSize int64

	// IncludeHidden also returns dot-files and files under dot-directories
	IncludeHidden bool
}

// DiscoverFiles returns the .csv files under root, sorted by path
func DiscoverFiles(root string, opts DiscoverOptions) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		hidden := path != root && strings.HasPrefix(d.Name(), ".")
		if d.IsDir() {
			if path == root {
				return nil
			}
			if !opts.Recursive || (hidden && !opts.IncludeHidden) {
				return filepath.SkipDir
			}
			return nil
		}

		if hidden && !opts.IncludeHidden {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".csv") || !d.Type().IsRegular() {
			return nil
		}

		if opts.MinSize > 0 || opts.MaxSize > 0 {
			info, err := d.Info()
			if err != nil {
				return err
			}
			if opts.MinSize > 0 && info.Size() < opts.MinSize {
				return nil
			}
			if opts.MaxSize > 0 && info.Size() > opts.MaxSize {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover files in %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}
