package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes compilation and authorization failures.
type ErrorCode string

const (
	// ErrCodeColumnNotFound indicates a condition references a column that is
	// absent from the catalog or is not filterable.
	ErrCodeColumnNotFound ErrorCode = "COLUMN_NOT_FOUND"

	// ErrCodeUnsupportedOperator indicates no handler can render the operator
	// for the column's declared type.
	ErrCodeUnsupportedOperator ErrorCode = "UNSUPPORTED_OPERATOR"

	// ErrCodeInvalidValueFormat indicates a value that cannot be parsed for
	// its operator, or a raw result that cannot be cast to its type tag.
	ErrCodeInvalidValueFormat ErrorCode = "INVALID_VALUE_FORMAT"

	// ErrCodePermissionCheckFailure indicates the bulk permission query failed
	// to compile or execute.
	ErrCodePermissionCheckFailure ErrorCode = "PERMISSION_CHECK_FAILURE"

	// ErrCodeDuplicateKey indicates two checks in one batch share a key.
	ErrCodeDuplicateKey ErrorCode = "DUPLICATE_KEY"
)

// Error is the error type returned by the filter and permission compilers.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Column is the offending column, when one applies.
	Column string

	// Operator is the offending operator, when one applies.
	Operator string

	// Scope narrows where the failure happened, e.g. "JSON operator".
	Scope string

	// Key is the permission check key, when one applies.
	Key string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)

	var details []string
	if e.Scope != "" {
		details = append(details, "scope="+e.Scope)
	}
	if e.Column != "" {
		details = append(details, "column="+e.Column)
	}
	if e.Operator != "" {
		details = append(details, "operator="+e.Operator)
	}
	if e.Key != "" {
		details = append(details, "key="+e.Key)
	}
	if len(details) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(details, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// ColumnNotFound builds a COLUMN_NOT_FOUND error.
func ColumnNotFound(column, reason string) *Error {
	return &Error{
		Code:    ErrCodeColumnNotFound,
		Message: reason,
		Column:  column,
	}
}

// UnsupportedOperator builds an UNSUPPORTED_OPERATOR error. Scope names the
// handler family that rejected the operator and may be empty.
func UnsupportedOperator(scope, column, operator string) *Error {
	msg := fmt.Sprintf("operator %q is not supported", operator)
	if scope != "" {
		msg = fmt.Sprintf("unsupported %s: %q", scope, operator)
	}
	return &Error{
		Code:     ErrCodeUnsupportedOperator,
		Message:  msg,
		Column:   column,
		Operator: operator,
		Scope:    scope,
	}
}

// InvalidValueFormat builds an INVALID_VALUE_FORMAT error.
func InvalidValueFormat(column, operator, reason string) *Error {
	return &Error{
		Code:     ErrCodeInvalidValueFormat,
		Message:  reason,
		Column:   column,
		Operator: operator,
	}
}

// PermissionCheckFailure wraps a compile or execution failure of a permission batch.
func PermissionCheckFailure(err error) *Error {
	return &Error{
		Code:    ErrCodePermissionCheckFailure,
		Message: "permission check failed",
		Err:     err,
	}
}

// hasCode walks every *Error in the chain, so a cause wrapped by
// PermissionCheckFailure is still reported by its own helper.
func hasCode(err error, code ErrorCode) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Err
	}
	return false
}

// IsColumnNotFound reports whether err is a COLUMN_NOT_FOUND error.
func IsColumnNotFound(err error) bool { return hasCode(err, ErrCodeColumnNotFound) }

// IsUnsupportedOperator reports whether err is an UNSUPPORTED_OPERATOR error.
func IsUnsupportedOperator(err error) bool { return hasCode(err, ErrCodeUnsupportedOperator) }

// IsInvalidValueFormat reports whether err is an INVALID_VALUE_FORMAT error.
func IsInvalidValueFormat(err error) bool { return hasCode(err, ErrCodeInvalidValueFormat) }

// IsPermissionCheckFailure reports whether err is a PERMISSION_CHECK_FAILURE error.
func IsPermissionCheckFailure(err error) bool { return hasCode(err, ErrCodePermissionCheckFailure) }

// IsDuplicateKey reports whether err is a DUPLICATE_KEY error.
func IsDuplicateKey(err error) bool { return hasCode(err, ErrCodeDuplicateKey) }
