package sources

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/mrlokans/notecompiler/internal/entities"
)

// DirectoryReader walks a directory tree and reads every supported file.
// Files with other extensions, and paths matching an exclude pattern, are
// skipped without error. A file that fails to read is logged and skipped so
// that one bad file does not stop the walk.
type DirectoryReader struct {
	Recursive bool
	// Exclude holds doublestar patterns matched against slash-separated
	// paths relative to the root, e.g. "**/.git/**" or "archive/*.csv".
	Exclude []string
}

func NewDirectoryReader(recursive bool, exclude []string) *DirectoryReader {
	return &DirectoryReader{Recursive: recursive, Exclude: exclude}
}

// ReadTree returns payloads keyed by file path relative to root.
func (r *DirectoryReader) ReadTree(root string) (map[string][]entities.RawPayload, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: directory %s", entities.ErrMissingSource, root)
	}

	results := make(map[string][]entities.RawPayload)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("Error accessing path %s: %v", path, err)
			return nil // Continue walking despite errors
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				return nil
			}
			if !r.Recursive || r.excluded(rel) || r.excluded(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if r.excluded(rel) {
			return nil
		}

		reader, ok := ReaderForExtension(filepath.Ext(path))
		if !ok {
			return nil
		}

		payloads, readErr := reader.Read(path)
		if readErr != nil {
			if errors.Is(readErr, entities.ErrEmptyInput) {
				log.Printf("WARNING: skipping empty file %s", path)
			} else {
				log.Printf("ERROR: failed to extract from %s: %v", path, readErr)
			}
			return nil
		}

		for i := range payloads {
			payloads[i].Path = rel
		}
		results[rel] = payloads
		return nil
	})
	if err != nil {
		return results, fmt.Errorf("failed to walk directory %s: %w", root, err)
	}

	return results, nil
}

// Read flattens ReadTree in path order.
func (r *DirectoryReader) Read(root string) ([]entities.RawPayload, error) {
	tree, err := r.ReadTree(root)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(tree))
	for path := range tree {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var payloads []entities.RawPayload
	for _, path := range paths {
		payloads = append(payloads, tree[path]...)
	}
	return payloads, nil
}

func (r *DirectoryReader) excluded(rel string) bool {
	for _, pattern := range r.Exclude {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
