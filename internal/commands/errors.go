// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import "fmt"

// =============================================================================
// DISPATCH ERRORS
// =============================================================================

// UnknownCommandError reports a name that resolves to no descriptor.
// It is recovered locally by the shell (message plus suggestions) and is
// never fatal.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return "unknown command: " + e.Name
}

// CommandExecutionError wraps an error returned (or a panic raised) by a
// command handler. The original cause is preserved for diagnostics; the
// shell reports it and keeps the session alive.
type CommandExecutionError struct {
	Name string
	Err  error
}

func (e *CommandExecutionError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Name, e.Err)
}

func (e *CommandExecutionError) Unwrap() error {
	return e.Err
}
