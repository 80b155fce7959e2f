// Package schema holds the read-only column catalog the filter compiler
// resolves conditions against: which columns exist, their declared SQL types,
// and whether they may be filtered or searched.
package schema

import (
	"strings"
)

// DataType is a column's declared SQL type as reported by the database,
// e.g. "jsonb", "timestamp with time zone", "text[]" or "numeric(10,2)".
type DataType string

// TypeClass groups declared types by how conditions on them are rendered.
type TypeClass string

const (
	ClassText     TypeClass = "text"
	ClassNumeric  TypeClass = "numeric"
	ClassBoolean  TypeClass = "boolean"
	ClassTemporal TypeClass = "temporal"
	ClassJSON     TypeClass = "json"
	ClassArray    TypeClass = "array"
)

var typeClasses = map[string]TypeClass{
	"smallint":         ClassNumeric,
	"integer":          ClassNumeric,
	"int":              ClassNumeric,
	"int2":             ClassNumeric,
	"int4":             ClassNumeric,
	"int8":             ClassNumeric,
	"bigint":           ClassNumeric,
	"serial":           ClassNumeric,
	"bigserial":        ClassNumeric,
	"smallserial":      ClassNumeric,
	"real":             ClassNumeric,
	"float4":           ClassNumeric,
	"float8":           ClassNumeric,
	"double precision": ClassNumeric,
	"numeric":          ClassNumeric,
	"decimal":          ClassNumeric,
	"money":            ClassNumeric,

	"boolean": ClassBoolean,
	"bool":    ClassBoolean,

	"date":                        ClassTemporal,
	"timestamp":                   ClassTemporal,
	"timestamptz":                 ClassTemporal,
	"timestamp without time zone": ClassTemporal,
	"timestamp with time zone":    ClassTemporal,
	"time":                        ClassTemporal,
	"timetz":                      ClassTemporal,
	"time without time zone":      ClassTemporal,
	"time with time zone":         ClassTemporal,

	"json":  ClassJSON,
	"jsonb": ClassJSON,

	"array": ClassArray,
}

// normalize lowercases the type and strips any "(precision, scale)" modifier.
func (t DataType) normalize() string {
	s := strings.ToLower(strings.TrimSpace(string(t)))
	if i := strings.IndexByte(s, '('); i >= 0 {
		if j := strings.IndexByte(s[i:], ')'); j >= 0 {
			s = s[:i] + s[i+j+1:]
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

// Class returns the rendering class of the declared type. Unknown types,
// enums and domains are treated as text.
func (t DataType) Class() TypeClass {
	s := t.normalize()
	if strings.HasSuffix(s, "[]") {
		return ClassArray
	}
	if c, ok := typeClasses[s]; ok {
		return c
	}
	return ClassText
}

func (t DataType) IsJSON() bool     { return t.Class() == ClassJSON }
func (t DataType) IsArray() bool    { return t.Class() == ClassArray }
func (t DataType) IsNumeric() bool  { return t.Class() == ClassNumeric }
func (t DataType) IsBoolean() bool  { return t.Class() == ClassBoolean }
func (t DataType) IsTemporal() bool { return t.Class() == ClassTemporal }
func (t DataType) IsText() bool     { return t.Class() == ClassText }

// HasDate reports whether values of the type carry a calendar date, which
// excludes the time-of-day types.
func (t DataType) HasDate() bool {
	s := t.normalize()
	return s == "date" || strings.HasPrefix(s, "timestamp")
}

// ColumnMetadata describes one column of the catalog. It is never mutated by
// the compilers.
type ColumnMetadata struct {
	Name         string   `json:"name" yaml:"name"`
	DataType     DataType `json:"type" yaml:"type"`
	IsFilterable bool     `json:"filterable" yaml:"filterable"`
	IsSearchable bool     `json:"searchable" yaml:"searchable"`
	IsNullable   bool     `json:"nullable" yaml:"nullable"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
}
