// Package codec loads serialized isolation specifications and system
// descriptions into trees, and writes resolved domain trees back out.
//
// The loaders follow one convention: a mapping becomes a child node, a
// scalar becomes a scalar property, and a sequence becomes a JSON-class
// property. A "label" key sets the node label instead of adding a property.
package codec

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/madhavamd/lopper/internal/tree"
)

// Loader parses a serialized document into a tree
type Loader interface {
	Load(r io.Reader) (*tree.Tree, error)
	Format() string
}

// Writer serializes a tree to an output stream
type Writer interface {
	Write(t *tree.Tree, w io.Writer) error
	Format() string
}

// LoaderForPath picks a loader from the file extension. YAML is the
// default; .json selects the JSON loader.
func LoaderForPath(path string) Loader {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return NewJSONLoader()
	}
	return NewYAMLLoader()
}

// LoadFile loads a tree from a file, picking the loader by extension
func LoadFile(path string) (*tree.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := LoaderForPath(path).Load(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return t, nil
}

// WriteFile writes a tree to path as YAML. When overwrite is false an
// existing file is an error.
func WriteFile(t *tree.Tree, path string, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := NewYAMLWriter().Write(t, f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
