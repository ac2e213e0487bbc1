package commands

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/satishbabariya/sqlorm/cli/internal/config"
	"github.com/satishbabariya/sqlorm/query/compiler"
	"github.com/satishbabariya/sqlorm/query/document"
	"github.com/satishbabariya/sqlorm/query/sqlgen"
	"github.com/satishbabariya/sqlorm/schema"
)

// loadRegistry reads the configured schema. Without a schema file model
// and field names are used as table and column names unchanged.
func loadRegistry() (schema.Resolver, error) {
	ok, err := afero.Exists(config.AppFs, cfg.SchemaPath)
	if err != nil {
		return nil, err
	}
	if !ok {
		if schemaFlag != "" {
			return nil, fmt.Errorf("schema file not found: %s", cfg.SchemaPath)
		}
		return schema.Passthrough{}, nil
	}
	return schema.LoadFile(config.AppFs, cfg.SchemaPath)
}

func compileOptions() []sqlgen.Option {
	if cfg.UnboundedLimit > 0 {
		return []sqlgen.Option{sqlgen.WithUnboundedLimit(cfg.UnboundedLimit)}
	}
	return nil
}

func newCompiler() (*compiler.Compiler, error) {
	resolver, err := loadRegistry()
	if err != nil {
		return nil, err
	}
	return compiler.NewCompiler(cfg.Provider, resolver, compileOptions()...)
}

func readDocument(path string) (*document.Document, error) {
	data, err := afero.ReadFile(config.AppFs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query document: %w", err)
	}
	return document.Parse(data)
}
