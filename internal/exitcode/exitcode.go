// Package exitcode maps command errors to process exit codes.
package exitcode

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/felixgeelhaar/plansched/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// NoPlan indicates the search space was exhausted without a plan
	NoPlan = 3

	// ProblemInvalid indicates a problem file that is missing, malformed or inconsistent
	ProblemInvalid = 4

	// ConfigInvalid indicates a configuration that could not be loaded
	ConfigInvalid = 5

	// Interrupted indicates the run was cancelled by a signal
	Interrupted = 130
)

// ErrUsage marks command line misuse detected by the commands themselves.
var ErrUsage = stderrors.New("usage error")

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// DetermineExitCode returns the exit code for err. Coded errors map by
// code family; cobra's own usage errors are recognised by message.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}
	if stderrors.Is(err, ErrUsage) {
		return UsageError
	}

	switch code := string(errors.CodeOf(err)); {
	case code == string(errors.ErrCodeNoPlan):
		return NoPlan
	case strings.HasPrefix(code, "PROBLEM-"):
		return ProblemInvalid
	case strings.HasPrefix(code, "CONFIG-"):
		return ConfigInvalid
	case code != "":
		return GeneralError
	}

	errMsg := strings.ToLower(err.Error())
	for _, usage := range []string{"unknown command", "unknown flag", "unknown shorthand flag", "invalid argument", "required flag", "accepts "} {
		if strings.Contains(errMsg, usage) {
			return UsageError
		}
	}
	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case NoPlan:
		return "No plan found"
	case ProblemInvalid:
		return "Invalid problem file"
	case ConfigInvalid:
		return "Invalid configuration"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
