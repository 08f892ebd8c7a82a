package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

type FileInfo struct {
	Path    string // absolute or root-joined path used for I/O
	RelPath string // canonical slash-separated path relative to the root
}

type WalkResult struct {
	Root     string // the root as given, cleaned
	Resolved string // Root with symlinks evaluated; file paths are below it
	Files    []FileInfo
	Duration time.Duration
}

// Walk enumerates every regular file below rootPath. Directories are
// descended but not reported; symlinks are reported when they resolve to a
// regular file. A root that is itself a symlink is followed. Any error,
// including one on a nested entry, aborts the walk.
func Walk(rootPath string, exclusions []string) (*WalkResult, error) {
	start := time.Now()
	rootPath = filepath.Clean(rootPath)

	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", rootPath)
	}

	// WalkDir does not descend a symlinked root
	resolved, err := filepath.EvalSymlinks(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	result := &WalkResult{
		Root:     rootPath,
		Resolved: resolved,
		Files:    make([]FileInfo, 0),
	}

	err = filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == resolved {
			return nil
		}

		relPath, err := filepath.Rel(resolved, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if shouldExclude(relPath, exclusions) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		regular, err := isRegular(path, d)
		if err != nil {
			return err
		}
		if !regular {
			return nil
		}

		result.Files = append(result.Files, FileInfo{
			Path:    path,
			RelPath: relPath,
		})
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	result.Duration = time.Since(start)
	return result, nil
}

// isRegular resolves symlinks through os.Stat so that a link to a regular
// file is scanned like the file itself. A dangling link is an error.
func isRegular(path string, d fs.DirEntry) (bool, error) {
	if d.Type()&fs.ModeSymlink == 0 {
		return d.Type().IsRegular(), nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// shouldExclude matches relPath (slash separated) against doublestar
// patterns. Patterns ending in "/" match a directory and everything below it.
func shouldExclude(relPath string, exclusions []string) bool {
	for _, pattern := range exclusions {
		if strings.HasSuffix(pattern, "/") {
			dirPattern := strings.TrimSuffix(pattern, "/")
			parts := strings.Split(relPath, "/")
			for i := 1; i <= len(parts); i++ {
				if matched, _ := doublestar.Match(dirPattern, strings.Join(parts[:i], "/")); matched {
					return true
				}
				// Bare directory names match at any depth
				if !strings.Contains(dirPattern, "/") {
					if matched, _ := doublestar.Match(dirPattern, parts[i-1]); matched {
						return true
					}
				}
			}
			continue
		}

		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return true
		}
		// Patterns without a slash apply to the base name, like .gitignore
		if !strings.Contains(pattern, "/") {
			if matched, _ := doublestar.Match(pattern, relPath[strings.LastIndex(relPath, "/")+1:]); matched {
				return true
			}
		}
	}
	return false
}
