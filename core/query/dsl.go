// Package query compiles structured filter conditions into PostgreSQL WHERE
// fragments. Conditions are resolved against a schema.Catalog and rendered by
// an ordered registry of operator handlers.
package query

import (
	"fmt"
	"strings"
)

// ComparisonOperator names the comparison a condition applies to its column.
type ComparisonOperator string

// Scalar comparison operators, rendered by the per-type default handler.
const (
	ComparisonOperatorEq         ComparisonOperator = "eq"
	ComparisonOperatorNeq        ComparisonOperator = "neq"
	ComparisonOperatorGt         ComparisonOperator = "gt"
	ComparisonOperatorGte        ComparisonOperator = "gte"
	ComparisonOperatorLt         ComparisonOperator = "lt"
	ComparisonOperatorLte        ComparisonOperator = "lte"
	ComparisonOperatorLike       ComparisonOperator = "like"
	ComparisonOperatorILike      ComparisonOperator = "ilike"
	ComparisonOperatorContains   ComparisonOperator = "contains"
	ComparisonOperatorStartsWith ComparisonOperator = "startsWith"
	ComparisonOperatorEndsWith   ComparisonOperator = "endsWith"
	ComparisonOperatorIn         ComparisonOperator = "in"
	ComparisonOperatorNotIn      ComparisonOperator = "notIn"
	ComparisonOperatorIsNull     ComparisonOperator = "isNull"
	ComparisonOperatorIsNotNull  ComparisonOperator = "isNotNull"
	ComparisonOperatorBetween    ComparisonOperator = "between"
	ComparisonOperatorNotBetween ComparisonOperator = "notBetween"
)

// JSON document operators.
const (
	ComparisonOperatorHasKey       ComparisonOperator = "hasKey"
	ComparisonOperatorKeyEquals    ComparisonOperator = "keyEquals"
	ComparisonOperatorPathExists   ComparisonOperator = "pathExists"
	ComparisonOperatorContainsText ComparisonOperator = "containsText"
)

// Array operators.
const (
	ComparisonOperatorArrayContains    ComparisonOperator = "arrayContains"
	ComparisonOperatorArrayContainedBy ComparisonOperator = "arrayContainedBy"
	ComparisonOperatorOverlaps         ComparisonOperator = "overlaps"
)

// LogicalOperator joins a condition to the clause built so far.
type LogicalOperator string

const (
	LogicalOperatorAnd LogicalOperator = "AND"
	LogicalOperatorOr  LogicalOperator = "OR"
)

// FilterValue is the operand of a condition. Supported shapes are nil, bool,
// any Go number, string, time.Time, and ordered collections of strings
// ([2]string, []string, []any) for between and list operators.
type FilterValue any

// FilterCondition is a single user-supplied predicate on one catalog column.
type FilterCondition struct {
	Column          string             `json:"column" yaml:"column"`
	Operator        ComparisonOperator `json:"operator" yaml:"operator"`
	Value           FilterValue        `json:"value,omitempty" yaml:"value,omitempty"`
	LogicalOperator LogicalOperator    `json:"logicalOperator,omitempty" yaml:"logicalOperator,omitempty"`
}

// joiner returns the normalized logical operator, defaulting to AND.
func (c FilterCondition) joiner() (LogicalOperator, error) {
	switch strings.ToUpper(strings.TrimSpace(string(c.LogicalOperator))) {
	case "", "AND":
		return LogicalOperatorAnd, nil
	case "OR":
		return LogicalOperatorOr, nil
	default:
		return "", fmt.Errorf("unknown logical operator %q", c.LogicalOperator)
	}
}
