package permission

import (
	"fmt"
	"sort"

	"github.com/asaidimu/go-sieve/core"
	"github.com/asaidimu/go-sieve/utils"
)

// ResultRow is one row of an executed permission query.
type ResultRow struct {
	Key     string
	TypeTag TypeTag
	Raw     any
}

// Results maps check keys to typed values: bool, string or float64.
// A key that is absent is unknown, never implicitly denied.
type Results map[string]any

// Bool returns the boolean result for key. ok is false when the key is
// missing or holds another type.
func (r Results) Bool(key string) (value bool, ok bool) {
	value, ok = r[key].(bool)
	return value, ok
}

// String returns the string result for key.
func (r Results) String(key string) (value string, ok bool) {
	value, ok = r[key].(string)
	return value, ok
}

// Number returns the numeric result for key.
func (r Results) Number(key string) (value float64, ok bool) {
	value, ok = r[key].(float64)
	return value, ok
}

// Keys returns the result keys in sorted order.
func (r Results) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseResults casts each row's raw value according to its type tag. Rows
// with a NULL raw value are omitted. Missing keys are not filled in; callers
// that need total coverage apply their own default.
func ParseResults(rows []ResultRow) (Results, error) {
	results := make(Results, len(rows))
	for _, row := range rows {
		if row.Raw == nil {
			continue
		}
		value, err := cast(row)
		if err != nil {
			return nil, err
		}
		results[row.Key] = value
	}
	return results, nil
}

func cast(row ResultRow) (any, error) {
	invalid := func() error {
		return &core.Error{
			Code:    core.ErrCodeInvalidValueFormat,
			Message: fmt.Sprintf("cannot cast %T to %s", row.Raw, row.TypeTag),
			Key:     row.Key,
		}
	}

	switch row.TypeTag {
	case TypeBoolean:
		if b, ok := utils.ToBool(row.Raw); ok {
			return b, nil
		}
	case TypeNumber:
		if f, ok := utils.ToFloat64(row.Raw); ok {
			return f, nil
		}
	case TypeString:
		switch v := row.Raw.(type) {
		case string:
			return v, nil
		case []byte:
			return string(v), nil
		}
	default:
		return nil, &core.Error{
			Code:    core.ErrCodeInvalidValueFormat,
			Message: fmt.Sprintf("unknown type tag %q", row.TypeTag),
			Key:     row.Key,
		}
	}
	return nil, invalid()
}

// RowsToResults maps executor rows with "key", "type" and "result" columns
// into ResultRows.
func RowsToResults(rows []core.Row) ([]ResultRow, error) {
	out := make([]ResultRow, 0, len(rows))
	for i, row := range rows {
		key, ok := utils.ToString(row["key"])
		if !ok || key == "" {
			return nil, core.InvalidValueFormat("key", "", fmt.Sprintf("row %d has no key", i))
		}
		tag, ok := utils.ToString(row["type"])
		if !ok {
			return nil, core.InvalidValueFormat("type", "", fmt.Sprintf("row %d has no type", i))
		}
		out = append(out, ResultRow{Key: key, TypeTag: TypeTag(tag), Raw: row["result"]})
	}
	return out, nil
}
