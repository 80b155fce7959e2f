package core

import "errors"

// Issue describes a single validation problem found in a filter condition.
type Issue struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Path     string `json:"path,omitempty"`     // e.g. "conditions[2].value"
	Severity string `json:"severity,omitempty"` // "error" or "warning"
}

// ValidationResult is the outcome of validating a condition without rendering it.
type ValidationResult struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues"`
}

// IssueFromError converts a compiler error into an Issue at the given path.
// Errors that are not *Error are reported with a generic code.
func IssueFromError(err error, path string) Issue {
	var e *Error
	if errors.As(err, &e) {
		return Issue{Code: string(e.Code), Message: e.Message, Path: path, Severity: "error"}
	}
	return Issue{Code: "INVALID_CONDITION", Message: err.Error(), Path: path, Severity: "error"}
}
