// Package errs defines the error taxonomy shared across blight.
//
// Configuration errors are fatal at setup time and name the offending token.
// Resolution errors are fatal only for the wrapper invocation that needed the
// missing tool. Hook errors live with the action engine; subprocess failures
// are not errors at all and propagate as exit codes.
package errs

import (
	"errors"
	"fmt"
)

// Process exit codes with a stable meaning. They follow sysexits(3) so CI logs
// can tell "instrumentation misconfigured" apart from "compile failed".
const (
	ExitResolution = 69 // EX_UNAVAILABLE: no real tool known for this wrapper
	ExitConfig     = 78 // EX_CONFIG: bad action list, action config, or launcher flags
)

// ConfigError reports a configuration problem detected at setup time.
type ConfigError struct {
	// Token is the offending input (an action name, a key, a shim spec, ...).
	Token  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Token == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s: %q", e.Reason, e.Token)
}

// Configf builds a ConfigError for token with a formatted reason.
func Configf(token, format string, args ...any) error {
	return &ConfigError{Token: token, Reason: fmt.Sprintf(format, args...)}
}

// ResolutionError reports that no real tool could be found for a tool kind.
type ResolutionError struct {
	Kind   string
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve real tool for %s: %s", e.Kind, e.Reason)
}

// IsConfig reports whether err (or anything it wraps) is a ConfigError.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsResolution reports whether err (or anything it wraps) is a ResolutionError.
func IsResolution(err error) bool {
	var re *ResolutionError
	return errors.As(err, &re)
}

// ExitCode maps an error to the process exit code blight uses for it.
// Errors outside the taxonomy map to 1.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case IsResolution(err):
		return ExitResolution
	case IsConfig(err):
		return ExitConfig
	default:
		return 1
	}
}
