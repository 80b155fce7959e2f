package schema

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk layout of a catalog. JSON documents are valid
// YAML, so both formats decode through the same path.
type catalogFile struct {
	Columns []columnEntry `yaml:"columns"`
}

type columnEntry struct {
	Name        string   `yaml:"name"`
	Type        DataType `yaml:"type"`
	Filterable  *bool    `yaml:"filterable"`
	Searchable  bool     `yaml:"searchable"`
	Nullable    *bool    `yaml:"nullable"`
	Description string   `yaml:"description"`
}

// LoadCatalog decodes a YAML or JSON catalog document. Unknown fields are
// rejected. Columns are filterable and nullable unless stated otherwise.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var file catalogFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("catalog document is empty")
		}
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	columns := make([]ColumnMetadata, 0, len(file.Columns))
	for i, entry := range file.Columns {
		if entry.Type == "" {
			return nil, fmt.Errorf("column %d (%q): type is required", i, entry.Name)
		}
		columns = append(columns, ColumnMetadata{
			Name:         entry.Name,
			DataType:     entry.Type,
			IsFilterable: entry.Filterable == nil || *entry.Filterable,
			IsSearchable: entry.Searchable,
			IsNullable:   entry.Nullable == nil || *entry.Nullable,
			Description:  entry.Description,
		})
	}

	catalog, err := NewCatalog(columns...)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return catalog, nil
}

// LoadCatalogFile reads and decodes a catalog file.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return LoadCatalog(bytes.NewReader(data))
}
