package sandbox

import (
	"errors"
	"fmt"
)

var ErrMissingToken = errors.New("GitHub token is required for workspace clone")

// CommandError is a shell command that exited non-zero inside the sandbox.
// Fatal for the current run; the retry coordinator owns recovery, and the
// partially provisioned workspace is left in place because provisioning is
// idempotent.
type CommandError struct {
	Command  string
	ExitCode int
	Output   string
}

func (e CommandError) Error() string {
	return fmt.Sprintf("sandbox command failed with exit code %d: %s | output: %s", e.ExitCode, e.Command, e.Output)
}

// ProviderError is a non-success response from the sandbox provider API.
type ProviderError struct {
	Op     string
	Status int
	Body   string
}

func (e ProviderError) Error() string {
	return fmt.Sprintf("sandbox provider %s failed with status %d: %s", e.Op, e.Status, e.Body)
}
