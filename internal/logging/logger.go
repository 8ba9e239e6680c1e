// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// LEVELS
// =============================================================================

// Level represents log severity. Levels are ordered; an entry is emitted
// only when its level is at or above the configured minimum.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the canonical upper-case name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a Level. Unrecognized names
// default to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// Format selects how entries are rendered.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Destination selects which sinks receive entries.
type Destination string

const (
	DestConsole Destination = "console"
	DestFile    Destination = "file"
	DestBoth    Destination = "both"
)

const (
	// DefaultMaxFileSize is the rotation threshold when none is configured.
	DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB

	// DefaultMaxFiles is the total file budget (active + rotated).
	DefaultMaxFiles = 5
)

// Config holds a logger's mutable configuration. It can be hot-swapped
// via Configure; all loggers sharing a core observe the swap.
type Config struct {
	Level       Level
	Format      Format
	Destination Destination

	// File sink settings; ignored unless Destination involves a file.
	FilePath    string
	MaxFileSize int64
	MaxFiles    int

	// Console is the console sink. Defaults to os.Stderr.
	Console io.Writer
}

func (c *Config) setDefaults() {
	if c.Format == "" {
		c.Format = FormatText
	}
	if c.Destination == "" {
		c.Destination = DestConsole
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
	if c.MaxFiles <= 0 {
		c.MaxFiles = DefaultMaxFiles
	}
	if c.Console == nil {
		c.Console = os.Stderr
	}
}

func (c Config) wantsFile() bool {
	return c.Destination == DestFile || c.Destination == DestBoth
}

func (c Config) wantsConsole() bool {
	return c.Destination == DestConsole || c.Destination == DestBoth
}

// =============================================================================
// ENTRY
// =============================================================================

// Entry is a single structured log record.
type Entry struct {
	Timestamp time.Time         `json:"timestamp"`
	Level     string            `json:"level"`
	Message   string            `json:"message"`
	Context   map[string]string `json:"context,omitempty"`
	Data      map[string]any    `json:"data,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// =============================================================================
// LOGGER
// =============================================================================

// core is the shared state behind a logger and all of its children: the
// configuration, the open file handle, and the rotation bookkeeping.
// The single open file handle is owned exclusively by the core.
type core struct {
	mu        sync.Mutex
	cfg       Config
	file      *os.File
	fileSize  int64
	fileIndex int
}

// Logger writes structured entries to the configured sinks. Child
// loggers share the parent's core and differ only in context.
type Logger struct {
	core    *core
	context map[string]string
}

// New creates a logger with the given configuration. The file sink is
// opened eagerly so startup misconfiguration surfaces immediately.
func New(cfg Config) (*Logger, error) {
	cfg.setDefaults()
	c := &core{cfg: cfg}
	if cfg.wantsFile() {
		if err := c.openFileLocked(); err != nil {
			return nil, err
		}
	}
	return &Logger{core: c}, nil
}

// Child returns a logger sharing this logger's configuration and sinks,
// with extra context merged over the parent's. The parent's context map
// is never mutated.
func (l *Logger) Child(extra map[string]string) *Logger {
	merged := make(map[string]string, len(l.context)+len(extra))
	for k, v := range l.context {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return &Logger{core: l.core, context: merged}
}

// Configure hot-swaps the logger configuration. Moving away from a
// file-involving destination closes the open file handle; moving to one
// opens it. The swap is observed by every child sharing this core.
func (l *Logger) Configure(cfg Config) error {
	cfg.setDefaults()
	c := l.core
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.file != nil && (!cfg.wantsFile() || cfg.FilePath != c.cfg.FilePath) {
		_ = c.file.Close()
		c.file = nil
		c.fileSize = 0
	}
	c.cfg = cfg
	if cfg.wantsFile() && c.file == nil {
		if err := c.openFileLocked(); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the file sink, if any.
func (l *Logger) Close() error {
	c := l.core
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.file != nil {
		err := c.file.Close()
		c.file = nil
		return err
	}
	return nil
}

// Level returns the currently configured minimum level.
func (l *Logger) Level() Level {
	c := l.core
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Level
}

// RotationCount returns how many rotations this core has performed.
func (l *Logger) RotationCount() int {
	c := l.core
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fileIndex
}

// =============================================================================
// LOGGING METHODS
// =============================================================================

// Debug logs at DEBUG level.
func (l *Logger) Debug(msg string, data map[string]any) {
	l.Log(LevelDebug, msg, data, nil)
}

// Info logs at INFO level.
func (l *Logger) Info(msg string, data map[string]any) {
	l.Log(LevelInfo, msg, data, nil)
}

// Warn logs at WARN level.
func (l *Logger) Warn(msg string, data map[string]any) {
	l.Log(LevelWarn, msg, data, nil)
}

// Error logs at ERROR level with an optional error value.
func (l *Logger) Error(msg string, err error, data map[string]any) {
	l.Log(LevelError, msg, data, err)
}

// Log builds and emits a structured entry. Sink failures never
// propagate out of this call: file errors fall back to the console.
func (l *Logger) Log(level Level, msg string, data map[string]any, err error) {
	c := l.core
	c.mu.Lock()
	defer c.mu.Unlock()

	if level < c.cfg.Level {
		return
	}

	entry := Entry{
		Timestamp: time.Now(),
		Level:     level.String(),
		Message:   msg,
		Context:   l.context,
		Data:      data,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	if c.cfg.wantsConsole() {
		if c.cfg.Format == FormatJSON {
			fmt.Fprintln(c.cfg.Console, renderFile(FormatJSON, entry))
		} else {
			fmt.Fprintln(c.cfg.Console, renderConsole(level, entry))
		}
	}
	if c.cfg.wantsFile() {
		c.writeFileLocked(entry)
	}
}

// =============================================================================
// RENDERING
// =============================================================================

var levelStyles = map[Level]lipgloss.Style{
	LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}),
	LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}),
	LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}).Bold(true),
	LevelError: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}).Bold(true),
}

// renderConsole renders an entry in the text format for the console
// sink, with a colored level tag. JSON-format configurations bypass
// this and emit the same machine-readable lines as the file sink.
func renderConsole(level Level, e Entry) string {
	tag := levelStyles[level].Render(e.Level)
	return fmt.Sprintf("[%s] %s %s%s", e.Timestamp.Format("15:04:05"), tag, e.Message, renderTail(e))
}

// renderFile renders an entry for the file sink per the configured format.
func renderFile(format Format, e Entry) string {
	if format == FormatJSON {
		b, err := json.Marshal(e)
		if err != nil {
			// Marshal of map[string]any can fail on exotic values;
			// degrade to the text layout rather than dropping the entry.
			return fmt.Sprintf("[%s] %s %s%s", e.Timestamp.Format(time.RFC3339), e.Level, e.Message, renderTail(e))
		}
		return string(b)
	}
	return fmt.Sprintf("[%s] %s %s%s", e.Timestamp.Format(time.RFC3339), e.Level, e.Message, renderTail(e))
}

// renderTail renders the optional context/data/error suffix shared by
// both text layouts.
func renderTail(e Entry) string {
	var sb strings.Builder
	if len(e.Context) > 0 {
		if b, err := json.Marshal(e.Context); err == nil {
			sb.WriteString(" ")
			sb.Write(b)
		}
	}
	if len(e.Data) > 0 {
		if b, err := json.Marshal(e.Data); err == nil {
			sb.WriteString(" ")
			sb.Write(b)
		}
	}
	if e.Error != "" {
		sb.WriteString(" error=")
		sb.WriteString(e.Error)
	}
	return sb.String()
}

// =============================================================================
// FILE SINK & ROTATION
// =============================================================================

func (c *core) openFileLocked() error {
	dir := filepath.Dir(c.cfg.FilePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(c.cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	c.file = f
	c.fileSize = 0
	if info, err := f.Stat(); err == nil {
		c.fileSize = info.Size()
	}
	return nil
}

// writeFileLocked writes one rendered entry to the file sink, rotating
// first when the size threshold has been reached. Errors are reported
// to the console sink and swallowed.
func (c *core) writeFileLocked(e Entry) {
	if c.file == nil {
		if err := c.openFileLocked(); err != nil {
			c.consoleFallback("log file unavailable", err)
			return
		}
	}

	if c.fileSize >= c.cfg.MaxFileSize {
		if err := c.rotateLocked(); err != nil {
			c.consoleFallback("log rotation failed", err)
		}
	}

	line := renderFile(c.cfg.Format, e) + "\n"
	n, err := c.file.WriteString(line)
	c.fileSize += int64(n)
	if err != nil {
		c.consoleFallback("log write failed", err)
	}
}

// rotateLocked closes the active file, renames it with a timestamp
// suffix, opens a fresh file, and prunes rotated files beyond the
// retention budget. A failed rename reopens the original file in append
// mode so the triggering write still lands.
func (c *core) rotateLocked() error {
	if c.file == nil {
		return nil
	}
	if err := c.file.Close(); err != nil {
		return fmt.Errorf("failed to close log for rotation: %w", err)
	}
	c.file = nil

	timestamp := time.Now().Format("20060102_150405.000000000")
	ext := filepath.Ext(c.cfg.FilePath)
	base := strings.TrimSuffix(c.cfg.FilePath, ext)
	rotatedPath := fmt.Sprintf("%s_%s%s", base, timestamp, ext)

	if err := os.Rename(c.cfg.FilePath, rotatedPath); err != nil {
		// Fallback path: keep appending to the original file.
		c.file, _ = os.OpenFile(c.cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if c.file != nil {
			if info, statErr := c.file.Stat(); statErr == nil {
				c.fileSize = info.Size()
			}
		}
		return fmt.Errorf("failed to rotate log: %w", err)
	}

	if err := c.openFileLocked(); err != nil {
		return fmt.Errorf("failed to reopen log after rotation: %w", err)
	}
	c.fileIndex++

	if err := c.cleanupLocked(base, ext); err != nil {
		return fmt.Errorf("log retention cleanup failed: %w", err)
	}
	return nil
}

// cleanupLocked deletes the oldest rotated files so that at most
// MaxFiles-1 historical files remain alongside the active file.
func (c *core) cleanupLocked(base, ext string) error {
	dir := filepath.Dir(c.cfg.FilePath)
	prefix := filepath.Base(base) + "_"

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var rotated []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == filepath.Base(c.cfg.FilePath) {
			continue
		}
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ext) {
			rotated = append(rotated, name)
		}
	}

	keep := c.cfg.MaxFiles - 1
	if keep < 0 {
		keep = 0
	}
	if len(rotated) <= keep {
		return nil
	}

	// Timestamp suffixes sort lexicographically; newest first after the
	// reverse sort, so everything past the retention budget is oldest.
	sort.Sort(sort.Reverse(sort.StringSlice(rotated)))
	var firstErr error
	for _, name := range rotated[keep:] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// consoleFallback reports a file-sink failure through the console sink.
func (c *core) consoleFallback(msg string, err error) {
	fmt.Fprintf(c.cfg.Console, "[%s] %s %s: %v\n",
		time.Now().Format("15:04:05"), levelStyles[LevelWarn].Render("WARN"), msg, err)
}
