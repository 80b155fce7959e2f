package schema

import (
	"fmt"
)

// Catalog is an ordered, read-only lookup of column metadata by name.
// A Catalog is safe for concurrent use once built.
type Catalog struct {
	columns []ColumnMetadata
	index   map[string]int
}

// NewCatalog builds a catalog from the given columns, preserving their order.
// Column names must be non-empty and unique.
func NewCatalog(columns ...ColumnMetadata) (*Catalog, error) {
	c := &Catalog{
		columns: make([]ColumnMetadata, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if col.Name == "" {
			return nil, fmt.Errorf("column at position %d has no name", i)
		}
		if _, exists := c.index[col.Name]; exists {
			return nil, fmt.Errorf("duplicate column %q", col.Name)
		}
		c.index[col.Name] = len(c.columns)
		c.columns = append(c.columns, col)
	}
	return c, nil
}

// MustCatalog is like NewCatalog but panics on error. Intended for tests and
// package-level catalogs built from literals.
func MustCatalog(columns ...ColumnMetadata) *Catalog {
	c, err := NewCatalog(columns...)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the metadata for the named column.
func (c *Catalog) Lookup(name string) (ColumnMetadata, bool) {
	if c == nil {
		return ColumnMetadata{}, false
	}
	i, ok := c.index[name]
	if !ok {
		return ColumnMetadata{}, false
	}
	return c.columns[i], true
}

// Columns returns a copy of every column in catalog order.
func (c *Catalog) Columns() []ColumnMetadata {
	if c == nil {
		return nil
	}
	out := make([]ColumnMetadata, len(c.columns))
	copy(out, c.columns)
	return out
}

// Searchable returns the searchable columns in catalog order.
func (c *Catalog) Searchable() []ColumnMetadata {
	if c == nil {
		return nil
	}
	var out []ColumnMetadata
	for _, col := range c.columns {
		if col.IsSearchable {
			out = append(out, col)
		}
	}
	return out
}

// Len returns the number of columns.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.columns)
}
