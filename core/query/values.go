package query

import (
	"strings"

	"github.com/asaidimu/go-sieve/utils"
)

// pairValue extracts the two endpoints of a between-style value given as an
// ordered collection. Strings are handled by splitPair.
func pairValue(v FilterValue) (string, string, bool) {
	var items []string
	switch val := v.(type) {
	case [2]string:
		items = val[:]
	case []string:
		items = val
	case []any:
		for _, item := range val {
			s, ok := utils.ToString(item)
			if !ok {
				return "", "", false
			}
			items = append(items, s)
		}
	default:
		return "", "", false
	}
	if len(items) != 2 {
		return "", "", false
	}
	lo, hi := strings.TrimSpace(items[0]), strings.TrimSpace(items[1])
	if lo == "" || hi == "" {
		return "", "", false
	}
	return lo, hi, true
}

// splitPair splits "low,high" into exactly two non-empty trimmed tokens.
func splitPair(s string) (string, string, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return "", "", false
	}
	lo, hi := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if lo == "" || hi == "" {
		return "", "", false
	}
	return lo, hi, true
}

// listValue extracts list items from a slice or a comma-separated string.
// Empty tokens are dropped.
func listValue(v FilterValue) ([]string, bool) {
	var raw []string
	switch val := v.(type) {
	case string:
		raw = strings.Split(val, ",")
	case []string:
		raw = val
	case [2]string:
		raw = val[:]
	case []any:
		for _, item := range val {
			s, ok := utils.ToString(item)
			if !ok {
				return nil, false
			}
			raw = append(raw, s)
		}
	default:
		return nil, false
	}

	items := make([]string, 0, len(raw))
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items, len(items) > 0
}
