// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/peterh/liner"

	"github.com/jeranaias/swarmsh/internal/commands"
	"github.com/jeranaias/swarmsh/internal/config"
	"github.com/jeranaias/swarmsh/internal/logging"
	"github.com/jeranaias/swarmsh/internal/orchestrator"
)

// =============================================================================
// SHELL
// =============================================================================

// Shell is the interactive swarmsh REPL. Input flows through the
// built-in commands first, then the registry; anything unknown gets
// a suggestion based on the combined vocabulary.
type Shell struct {
	cfg       *config.Config
	logger    *logging.Logger
	registry  *commands.Registry
	manager   *orchestrator.Manager
	history   *History
	completer *commands.Completer
	out       io.Writer

	workingDir   string
	version      string
	lastActivity time.Time
}

// New creates a shell over the given registry and orchestrator manager.
// History is loaded from historyPath immediately.
func New(cfg *config.Config, logger *logging.Logger, reg *commands.Registry, m *orchestrator.Manager, historyPath, version string) *Shell {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	s := &Shell{
		cfg:        cfg,
		logger:     logger.Child(map[string]string{"component": "shell"}),
		registry:   reg,
		manager:    m,
		history:    NewHistory(historyPath, cfg.History.MaxEntries),
		out:        os.Stdout,
		workingDir: wd,
		version:    version,
	}
	s.completer = commands.NewCompleter(s.vocabulary)
	return s
}

// SetOutput redirects shell output, primarily for tests.
func (s *Shell) SetOutput(w io.Writer) {
	s.out = w
}

// History exposes the shell's history store.
func (s *Shell) History() *History {
	return s.history
}

// vocabulary is the first-word completion and suggestion universe:
// built-ins plus every registered command name and alias.
func (s *Shell) vocabulary() []string {
	words := append([]string(nil), builtinNames...)
	words = append(words, s.registry.Vocabulary()...)
	sort.Strings(words)
	return words
}

// =============================================================================
// RUN LOOP
// =============================================================================

// Run drives the interactive loop until exit or EOF. History is
// persisted on the way out; a failed save is logged, not fatal.
func (s *Shell) Run() error {
	lipgloss.SetColorProfile(s.colorProfile())

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(s.linerCompleter)

	for _, entry := range s.history.Entries() {
		line.AppendHistory(entry)
	}

	if s.cfg.Shell.Banner {
		s.printBanner()
	}
	if s.cfg.Orchestrator.AutoConnect {
		if err := s.manager.Connect(s.cfg.Endpoint()); err != nil {
			fmt.Fprintf(s.out, "%s %v\n", warningStyle.Render("[Warning]"), err)
		}
	}

	for {
		input, err := line.Prompt(s.prompt())
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(s.out, infoStyle.Render("(use 'exit' to quit)"))
				continue
			}
			// EOF (Ctrl+D) or a read error ends the session.
			fmt.Fprintln(s.out)
			break
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		s.history.Add(input)
		line.AppendHistory(input)

		if exit := s.Execute(input); exit {
			break
		}
	}

	if err := s.history.Save(); err != nil {
		s.logger.Warn("failed to save history", map[string]any{"error": err.Error()})
	}
	s.logger.Info("shell session ended", nil)
	return nil
}

// Execute dispatches one input line and reports whether the shell
// should exit. Command failures are rendered, never propagated: a bad
// command must not take the session down.
func (s *Shell) Execute(input string) bool {
	tokens := commands.Tokenize(input)
	if len(tokens) == 0 {
		return false
	}
	s.lastActivity = time.Now()
	name, args := tokens[0], tokens[1:]

	if handled, exit := s.runBuiltin(name, args); handled {
		return exit
	}

	ctx := commands.NewContext(s.out, s.logger)
	err := s.registry.Invoke(ctx, name, args)
	if err == nil {
		return false
	}

	var unknown *commands.UnknownCommandError
	if errors.As(err, &unknown) {
		fmt.Fprintf(s.out, "%s %s\n", errorStyle.Render("[Error]"), err)
		if suggestions := commands.Suggest(unknown.Name, s.vocabulary()); len(suggestions) > 0 {
			fmt.Fprintf(s.out, "Did you mean: %s?\n", commandStyle.Render(strings.Join(suggestions, ", ")))
		}
		return false
	}

	if errors.Is(err, orchestrator.ErrNotConnected) {
		fmt.Fprintf(s.out, "%s %v\n", warningStyle.Render("[Warning]"), orchestrator.ErrNotConnected)
		return false
	}

	fmt.Fprintf(s.out, "%s %v\n", errorStyle.Render("[Error]"), err)
	s.logger.Error("command failed", err, map[string]any{"command": name})
	return false
}

// =============================================================================
// PROMPT & BANNER
// =============================================================================

// colorProfile resolves the rendering profile for the session. The
// shell.color config switch (and SWARMSH_NO_COLOR through it) forces
// plain output; otherwise terminal detection decides.
func (s *Shell) colorProfile() termenv.Profile {
	if !s.cfg.Shell.Color {
		return termenv.Ascii
	}
	return ColorProfile()
}

// prompt renders the connection-status icon and the working directory
// basename ahead of the shell name. shell.prompt overrides the name.
func (s *Shell) prompt() string {
	var icon string
	switch s.manager.Status() {
	case orchestrator.StatusConnected:
		icon = connectedStyle.Render("●")
	case orchestrator.StatusConnecting:
		icon = connectingStyle.Render("●")
	default:
		icon = disconnectedStyle.Render("○")
	}
	text := s.cfg.Shell.Prompt
	if text == "" {
		text = "swarmsh>"
	}
	base := filepath.Base(s.workingDir)
	return fmt.Sprintf("%s %s %s ", icon, infoStyle.Render("["+base+"]"), promptStyle.Render(text))
}

func (s *Shell) printBanner() {
	fmt.Fprintln(s.out, bannerStyle.Render("swarmsh "+s.version))
	fmt.Fprintln(s.out, infoStyle.Render("Interactive swarm shell. Type 'help' for available commands."))
}

// =============================================================================
// COMPLETION
// =============================================================================

// linerCompleter adapts the fragment-based completer to liner, which
// expects full replacement lines. The splice point comes from the raw
// trailing word, not the tokenized fragment: tokenizing strips quote
// characters, so the two can differ in length.
func (s *Shell) linerCompleter(line string) []string {
	candidates, _ := s.completer.Complete(line)
	prefix := line[:len(line)-len(rawTail(line))]

	completions := make([]string, 0, len(candidates))
	for _, c := range candidates {
		completions = append(completions, prefix+c)
	}
	return completions
}

// rawTail returns the in-progress final word of line as typed,
// including any quote characters. Empty when the line ends in unquoted
// whitespace.
func rawTail(line string) string {
	inQuote := false
	var quote rune
	start := -1
	for i, r := range line {
		switch {
		case inQuote:
			if r == quote {
				inQuote = false
			}
		case r == '"' || r == '\'':
			inQuote = true
			quote = r
			if start < 0 {
				start = i
			}
		case r == ' ' || r == '\t':
			start = -1
		default:
			if start < 0 {
				start = i
			}
		}
	}
	if start < 0 {
		return ""
	}
	return line[start:]
}
