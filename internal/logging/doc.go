// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides the structured logger used across swarmsh.
//
// A Logger filters by level, renders entries as JSON or human-readable
// text, and writes to the console, a size-rotated file, or both. Child
// loggers share the parent's configuration and sinks while carrying
// merged context, so subsystems can tag their entries without
// re-specifying destinations.
//
// Loggers are constructed explicitly and passed to the components that
// need them; there is no package-level singleton.
package logging
