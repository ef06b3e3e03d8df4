package codec

import (
	"io"

	"github.com/madhavamd/lopper/internal/tree"
)

// JSONLoader builds a tree from a JSON document using the same
// mapping/sequence/scalar convention as the YAML loader. JSON is valid
// YAML, so parsing is delegated to it; going through the YAML node stream
// keeps document order, which encoding/json maps would lose.
type JSONLoader struct {
	yaml YAMLLoader
}

// NewJSONLoader creates a JSON loader
func NewJSONLoader() *JSONLoader {
	return &JSONLoader{}
}

// Format returns the loader format identifier
func (l *JSONLoader) Format() string {
	return "json"
}

// Load parses JSON into a tree
func (l *JSONLoader) Load(r io.Reader) (*tree.Tree, error) {
	return l.yaml.Load(r)
}
