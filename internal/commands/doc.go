// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the command dispatch layer for swarmsh: the
// registry mapping names and aliases to handler descriptors, the
// quote-aware input tokenizer, tab completion, and "did you mean"
// suggestions.
//
// The registry is indifferent to what a handler does; orchestrator
// modules register their surface here and the shell dispatches to it.
package commands
