package simctl

import "fmt"

// ToolInvocationError is returned when the external tool exited with
// captured standard-error output.
type ToolInvocationError struct {
	Subcommand string
	Stderr     string
}

func (e *ToolInvocationError) Error() string {
	return fmt.Sprintf("Failed executing simctl `%s` - %s", e.Subcommand, e.Stderr)
}

// ParseError is returned when tool output did not match an expected textual
// shape. Parse failures are always fatal to the call, there is no fallback
// value for a failed parse.
type ParseError struct {
	Reason string
	Line   string
}

func (e *ParseError) Error() string {
	if e.Line != "" {
		return fmt.Sprintf("%s - `%s`", e.Reason, e.Line)
	}
	return e.Reason
}

// CreationError wraps a device creation failure with the device type and
// runtime identifiers for diagnostics.
type CreationError struct {
	DeviceType string
	Runtime    string
	Err        error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("Could not create device of type `%s` with runtime `%s` - %v", e.DeviceType, e.Runtime, e.Err)
}

func (e *CreationError) Unwrap() error {
	return e.Err
}
