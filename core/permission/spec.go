package permission

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// CheckSpec is the serialized form of a check, discriminated by Kind. It is
// what batch files and request payloads decode into.
type CheckSpec struct {
	Kind     string  `json:"kind" yaml:"kind"`
	Key      string  `json:"key" yaml:"key"`
	Resource string  `json:"resource,omitempty" yaml:"resource,omitempty"`
	Action   string  `json:"action,omitempty" yaml:"action,omitempty"`
	Schema   string  `json:"schema,omitempty" yaml:"schema,omitempty"`
	Table    string  `json:"table,omitempty" yaml:"table,omitempty"`
	Column   *string `json:"column,omitempty" yaml:"column,omitempty"`
	Bucket   string  `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Path     string  `json:"path,omitempty" yaml:"path,omitempty"`
	Function string  `json:"function,omitempty" yaml:"function,omitempty"`
	Args     []any   `json:"args,omitempty" yaml:"args,omitempty"`
	Type     TypeTag `json:"type,omitempty" yaml:"type,omitempty"`
}

// ToCheck converts the spec into its concrete Check.
func (s CheckSpec) ToCheck() (Check, error) {
	switch s.Kind {
	case "admin":
		return AdminCheck{Key: s.Key, Resource: s.Resource, Action: s.Action}, nil
	case "data":
		return DataCheck{Key: s.Key, Action: s.Action, Schema: s.Schema, Table: s.Table, Column: s.Column}, nil
	case "storage":
		return StorageCheck{Key: s.Key, Bucket: s.Bucket, Action: s.Action, Path: s.Path}, nil
	case "custom":
		return CustomCheck{Key: s.Key, Function: s.Function, Args: s.Args, Type: s.Type}, nil
	default:
		return nil, fmt.Errorf("check %q: unknown kind %q", s.Key, s.Kind)
	}
}

// LoadChecks decodes a YAML or JSON document of the form {checks: [...]}.
func LoadChecks(r io.Reader) ([]Check, error) {
	var doc struct {
		Checks []CheckSpec `yaml:"checks"`
	}
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse checks: %w", err)
	}

	checks := make([]Check, 0, len(doc.Checks))
	for _, spec := range doc.Checks {
		check, err := spec.ToCheck()
		if err != nil {
			return nil, err
		}
		checks = append(checks, check)
	}
	return checks, nil
}
