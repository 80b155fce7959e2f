// Package utils holds value coercion helpers shared by the compilers and the
// database runners. Drivers report the same logical value with different Go
// types (int64 for SQLite booleans, []byte for text, json.Number from
// decoders), and these helpers fold them into one shape.
package utils

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ToFloat64 converts any Go numeric value, numeric string, or json.Number
// into a float64. The second return value is false if v is not numeric.
func ToFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(val)), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// ToBool converts booleans, integers and the textual forms PostgreSQL and
// SQLite use for booleans ("t", "true", "1", "f", "false", "0").
func ToBool(v any) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case int64:
		return val != 0, true
	case int:
		return val != 0, true
	case int32:
		return val != 0, true
	case string:
		return parseBool(val)
	case []byte:
		return parseBool(string(val))
	default:
		return false, false
	}
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "t", "true", "1", "yes", "y":
		return true, true
	case "f", "false", "0", "no", "n":
		return false, true
	default:
		return false, false
	}
}

// ToString renders strings, byte slices, booleans and numbers as text.
// Floats use the shortest representation that round-trips.
func ToString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case []byte:
		return string(val), true
	case bool:
		return strconv.FormatBool(val), true
	case json.Number:
		return val.String(), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int, int8, int16, int32, int64:
		return strconv.FormatInt(toInt64(val), 10), true
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(toUint64(val), 10), true
	default:
		return "", false
	}
}

func toInt64(v any) int64 {
	switch val := v.(type) {
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case int64:
		return val
	}
	return 0
}

func toUint64(v any) uint64 {
	switch val := v.(type) {
	case uint:
		return uint64(val)
	case uint8:
		return uint64(val)
	case uint16:
		return uint64(val)
	case uint32:
		return uint64(val)
	case uint64:
		return val
	}
	return 0
}

// IsNumber reports whether v holds a Go numeric type. Numeric strings do not count.
func IsNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		return true
	default:
		return false
	}
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
