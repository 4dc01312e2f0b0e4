package sandbox

import "strings"

// Quote single-quotes a value for a POSIX shell, closing and reopening the
// quotes around embedded single quotes. Every value interpolated into a
// sandbox command line goes through here; nothing else is escaped.
func Quote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

// bashCommand wraps a command in the sandbox shell protocol: the provider
// executes `bash -lc '<escaped command>'`.
func bashCommand(command string) string {
	return "bash -lc " + Quote(command)
}
