package schema

import (
	"bytes"
	"fmt"

	"github.com/spf13/afero"
)

// LoadFile parses the schema file at path on fs.
func LoadFile(fs afero.Fs, path string) (*Registry, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	return Parse(path, bytes.NewReader(data))
}
