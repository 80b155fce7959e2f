// Package permission folds many independent authorization checks into one
// UNION ALL statement and projects the returned rows back into typed results
// keyed by check.
package permission

// TypeTag discriminates how a check's raw result is cast.
type TypeTag string

const (
	TypeBoolean TypeTag = "boolean"
	TypeString  TypeTag = "string"
	TypeNumber  TypeTag = "number"
)

// Valid reports whether t is a known tag.
func (t TypeTag) Valid() bool {
	switch t {
	case TypeBoolean, TypeString, TypeNumber:
		return true
	}
	return false
}

// Check is one authorization question in a batch. The set of implementations
// is closed: AdminCheck, DataCheck, StorageCheck and CustomCheck.
type Check interface {
	CheckKey() string
	ResultType() TypeTag
	isCheck()
}

// AdminCheck asks whether the caller may perform action on an administrative resource.
type AdminCheck struct {
	Key      string `json:"key" yaml:"key"`
	Resource string `json:"resource" yaml:"resource"`
	Action   string `json:"action" yaml:"action"`
}

// DataCheck asks whether the caller may perform action on a table, or on one
// column of it when Column is set.
type DataCheck struct {
	Key    string  `json:"key" yaml:"key"`
	Action string  `json:"action" yaml:"action"`
	Schema string  `json:"schema" yaml:"schema"`
	Table  string  `json:"table" yaml:"table"`
	Column *string `json:"column,omitempty" yaml:"column,omitempty"`
}

// StorageCheck asks whether the caller may perform action on an object path
// in a bucket. An empty Path addresses the bucket itself.
type StorageCheck struct {
	Key    string `json:"key" yaml:"key"`
	Bucket string `json:"bucket" yaml:"bucket"`
	Action string `json:"action" yaml:"action"`
	Path   string `json:"path" yaml:"path"`
}

// CustomCheck calls an arbitrary single-value SQL function. Type selects how
// the result is cast; boolean results default to false when the function
// returns NULL, other types are left unknown.
type CustomCheck struct {
	Key      string  `json:"key" yaml:"key"`
	Function string  `json:"function" yaml:"function"`
	Args     []any   `json:"args,omitempty" yaml:"args,omitempty"`
	Type     TypeTag `json:"type" yaml:"type"`
}

func (c AdminCheck) CheckKey() string   { return c.Key }
func (c DataCheck) CheckKey() string    { return c.Key }
func (c StorageCheck) CheckKey() string { return c.Key }
func (c CustomCheck) CheckKey() string  { return c.Key }

func (AdminCheck) ResultType() TypeTag   { return TypeBoolean }
func (DataCheck) ResultType() TypeTag    { return TypeBoolean }
func (StorageCheck) ResultType() TypeTag { return TypeBoolean }
func (c CustomCheck) ResultType() TypeTag {
	if c.Type == "" {
		return TypeBoolean
	}
	return c.Type
}

func (AdminCheck) isCheck()   {}
func (DataCheck) isCheck()    {}
func (StorageCheck) isCheck() {}
func (CustomCheck) isCheck()  {}
