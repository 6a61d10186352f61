// SPDX-License-Identifier: MPL-2.0

package discovery

const (
	// SeverityWarning indicates a recoverable discovery warning.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a non-fatal discovery error diagnostic.
	SeverityError Severity = "error"

	// CodeSearchPathMissing marks a search directory that does not exist.
	CodeSearchPathMissing = "search_path_missing"
	// CodeManifestSkipped marks a manifest that failed to parse or build.
	CodeManifestSkipped = "manifest_skipped"
	// CodeDuplicateComponent marks a name/version pair seen twice.
	CodeDuplicateComponent = "duplicate_component"
	// CodeGroupMissing marks a component group directory that does not exist.
	CodeGroupMissing = "component_group_missing"
)

type (
	// Severity represents discovery diagnostic severity.
	Severity string

	// Diagnostic is a non-fatal discovery problem returned to callers, which
	// decide how to render it.
	Diagnostic struct {
		// Severity is the diagnostic level (warning or error).
		Severity Severity
		// Code is a machine-readable identifier such as "manifest_skipped".
		Code string
		// Message is the human-readable description.
		Message string
		// Path is the file or directory concerned (optional).
		Path string
		// Cause is the underlying error (optional).
		Cause error
	}
)

// String renders the diagnostic on one line.
func (d Diagnostic) String() string {
	s := d.Message
	if d.Path != "" {
		s = d.Path + ": " + s
	}
	if d.Cause != nil {
		s += ": " + d.Cause.Error()
	}
	return s
}

func warning(code, path, message string, cause error) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Code: code, Message: message, Path: path, Cause: cause}
}
