// Package graphfile defines the format-agnostic contract for reading and
// writing serialized graphs, plus the file discovery shared by every format.
package graphfile

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/mapfuse/internal/graphdef"
)

// Format names a serialization format.
type Format string

const (
	FormatHCL  Format = "hcl"
	FormatYAML Format = "yaml"
)

var extensions = map[Format][]string{
	FormatHCL:  {".hcl"},
	FormatYAML: {".yaml", ".yml"},
}

// Extensions returns the file extensions that belong to the format.
func (f Format) Extensions() []string {
	return extensions[f]
}

// FormatOf returns the format implied by a file's extension.
func FormatOf(path string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for f, exts := range extensions {
		for _, e := range exts {
			if e == ext {
				return f, true
			}
		}
	}
	return "", false
}

// Loader reads one graph from a set of files or directories. Nodes and
// functions of all files are merged into a single graph.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*graphdef.Graph, error)
}

// Writer serializes a graph.
type Writer interface {
	Write(ctx context.Context, w io.Writer, g *graphdef.Graph) error
}

// FindGraphFiles walks all given paths and returns a flat list of the files
// whose extension is one of exts, in walk order and without duplicates.
// Missing paths are skipped.
func FindGraphFiles(paths []string, exts ...string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	matches := func(p string) bool {
		ext := strings.ToLower(filepath.Ext(p))
		for _, e := range exts {
			if e == ext {
				return true
			}
		}
		return false
	}
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if matches(path) {
				add(path)
			}
			continue
		}
		err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && matches(p) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return allFiles, nil
}

// Merge moves every node and function of src into dst. Duplicate names are
// an error.
func Merge(dst, src *graphdef.Graph) error {
	for _, n := range src.Nodes() {
		if err := dst.AddNode(n); err != nil {
			return err
		}
	}
	for _, name := range src.Library.Names() {
		f, _ := src.Library.Find(name)
		if err := dst.Library.Add(f); err != nil {
			return err
		}
	}
	return nil
}
