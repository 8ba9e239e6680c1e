// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/swarmsh/internal/orchestrator"
)

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

// builtinNames are the shell-level commands checked before the
// registry. They are part of the completion and suggestion vocabulary.
var builtinNames = []string{
	"cd",
	"clear",
	"connect",
	"disconnect",
	"echo",
	"exit",
	"help",
	"history",
	"pwd",
	"quit",
	"status",
}

// builtinHelp describes each built-in for the help listing. Aliases
// (quit, q) are folded into the exit row.
var builtinHelp = []struct {
	usage string
	desc  string
}{
	{"help [command]", "Show available commands"},
	{"status [component]", "Show shell and orchestrator status"},
	{"connect [host:port]", "Connect to the orchestrator"},
	{"disconnect", "Disconnect from the orchestrator"},
	{"history [--search <term>|clear]", "Show or search command history"},
	{"cd [dir]", "Change the working directory"},
	{"pwd", "Print the working directory"},
	{"echo [args...]", "Print arguments"},
	{"clear", "Clear the screen"},
	{"exit | quit | q", "Leave the shell"},
}

// runBuiltin executes name if it is a built-in. The first return value
// reports whether the input was handled; the second requests exit.
func (s *Shell) runBuiltin(name string, args []string) (handled, exit bool) {
	switch name {
	case "exit", "quit", "q":
		fmt.Fprintln(s.out, infoStyle.Render("Goodbye."))
		return true, true

	case "help":
		if len(args) > 0 {
			s.printCommandHelp(args[0])
		} else {
			s.printHelp()
		}
		return true, false

	case "status":
		component := ""
		if len(args) > 0 {
			component = args[0]
		}
		s.printStatus(component)
		return true, false

	case "connect":
		endpoint := s.cfg.Endpoint()
		if len(args) > 0 {
			endpoint = args[0]
		}
		if err := s.manager.Connect(endpoint); err != nil {
			fmt.Fprintf(s.out, "%s %v\n", errorStyle.Render("[Error]"), err)
			return true, false
		}
		fmt.Fprintf(s.out, "Connected to %s\n", commandStyle.Render(endpoint))
		return true, false

	case "disconnect":
		s.manager.Disconnect()
		fmt.Fprintln(s.out, "Disconnected")
		return true, false

	case "history":
		s.runHistory(args)
		return true, false

	case "cd":
		s.runCd(args)
		return true, false

	case "pwd":
		fmt.Fprintln(s.out, s.workingDir)
		return true, false

	case "echo":
		fmt.Fprintln(s.out, strings.Join(args, " "))
		return true, false

	case "clear":
		fmt.Fprint(s.out, "\033[2J\033[H")
		return true, false
	}

	return false, false
}

// =============================================================================
// HELP
// =============================================================================

// printHelp lists built-ins and registered commands in two aligned
// columns. Column width uses display width so wide runes line up.
func (s *Shell) printHelp() {
	descs := s.registry.List(false)

	width := 0
	for _, b := range builtinHelp {
		if w := runewidth.StringWidth(b.usage); w > width {
			width = w
		}
	}
	for _, d := range descs {
		usage := d.Usage
		if usage == "" {
			usage = d.Name
		}
		if w := runewidth.StringWidth(usage); w > width {
			width = w
		}
	}

	// Descriptions wrap badly in the two-column layout, so they are
	// clipped to the terminal instead.
	descWidth := TerminalWidth() - width - 4
	if descWidth < 10 {
		descWidth = 10
	}

	fmt.Fprintln(s.out, bannerStyle.Render("Shell commands:"))
	for _, b := range builtinHelp {
		fmt.Fprintf(s.out, "  %s  %s\n",
			commandStyle.Render(runewidth.FillRight(b.usage, width)),
			runewidth.Truncate(b.desc, descWidth, "…"))
	}

	if len(descs) > 0 {
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, bannerStyle.Render("Orchestrator commands:"))
		for _, d := range descs {
			usage := d.Usage
			if usage == "" {
				usage = d.Name
			}
			fmt.Fprintf(s.out, "  %s  %s\n",
				commandStyle.Render(runewidth.FillRight(usage, width)),
				runewidth.Truncate(d.Description, descWidth, "…"))
			if len(d.Aliases) > 0 {
				fmt.Fprintf(s.out, "  %s  %s\n",
					runewidth.FillRight("", width),
					infoStyle.Render("alias: "+strings.Join(d.Aliases, ", ")))
			}
		}
	}
}

// printCommandHelp shows the detail view for one command: registry
// descriptors get usage, aliases, and examples; built-ins get their
// one-line summary.
func (s *Shell) printCommandHelp(name string) {
	if desc := s.registry.Resolve(name); desc != nil {
		fmt.Fprintf(s.out, "%s - %s\n", commandStyle.Render(desc.Name), desc.Description)
		if desc.Usage != "" {
			fmt.Fprintf(s.out, "Usage: %s\n", desc.Usage)
		}
		if len(desc.Aliases) > 0 {
			fmt.Fprintf(s.out, "Aliases: %s\n", strings.Join(desc.Aliases, ", "))
		}
		if len(desc.Examples) > 0 {
			fmt.Fprintln(s.out, "Examples:")
			for _, ex := range desc.Examples {
				fmt.Fprintf(s.out, "  %s\n", infoStyle.Render(ex))
			}
		}
		return
	}

	for _, b := range builtinHelp {
		if strings.HasPrefix(b.usage, name) {
			fmt.Fprintf(s.out, "%s - %s\n", commandStyle.Render(b.usage), b.desc)
			return
		}
	}

	fmt.Fprintf(s.out, "%s unknown command: %s\n", errorStyle.Render("[Error]"), name)
}

// =============================================================================
// STATUS
// =============================================================================

// printStatus reports shell and orchestrator state. An empty component
// shows everything; "orchestrator", "shell", or "history" narrows the
// report to that section.
func (s *Shell) printStatus(component string) {
	switch component {
	case "", "orchestrator", "shell", "history":
	default:
		fmt.Fprintf(s.out, "%s unknown status component: %s (orchestrator, shell, history)\n",
			errorStyle.Render("[Error]"), component)
		return
	}

	if component == "" || component == "orchestrator" {
		stats := s.manager.Stats()

		var status string
		switch stats.Status {
		case orchestrator.StatusConnected:
			status = connectedStyle.Render("connected")
		case orchestrator.StatusConnecting:
			status = connectingStyle.Render("connecting")
		default:
			status = disconnectedStyle.Render("disconnected")
		}

		fmt.Fprintf(s.out, "Orchestrator: %s\n", status)
		if stats.Status == orchestrator.StatusConnected {
			fmt.Fprintf(s.out, "Endpoint:     %s\n", stats.Endpoint)
			fmt.Fprintf(s.out, "Session:      %s\n", stats.SessionID)
			fmt.Fprintf(s.out, "Uptime:       %s\n", stats.Uptime.Round(time.Second))
			fmt.Fprintf(s.out, "Agents:       %d\n", stats.Agents)
			fmt.Fprintf(s.out, "Tasks:        %d\n", stats.Tasks)
			fmt.Fprintf(s.out, "Workflows:    %d\n", stats.Workflows)
		}
	}
	if component == "" || component == "shell" {
		fmt.Fprintf(s.out, "Directory:    %s\n", s.workingDir)
		fmt.Fprintf(s.out, "Log level:    %s\n", s.logger.Level())
		if !s.lastActivity.IsZero() {
			fmt.Fprintf(s.out, "Last active:  %s\n", s.lastActivity.Format(time.RFC3339))
		}
	}
	if component == "" || component == "history" {
		fmt.Fprintf(s.out, "History:      %d entries\n", s.history.Len())
	}
}

// =============================================================================
// HISTORY
// =============================================================================

func (s *Shell) runHistory(args []string) {
	if len(args) > 0 {
		switch args[0] {
		case "--search":
			if len(args) < 2 {
				fmt.Fprintf(s.out, "%s usage: history --search <term>\n", errorStyle.Render("[Error]"))
				return
			}
			matches := s.history.Search(args[1])
			if len(matches) == 0 {
				fmt.Fprintf(s.out, "No history entries matching %q\n", args[1])
				return
			}
			for _, m := range matches {
				fmt.Fprintln(s.out, m)
			}
			return

		case "clear":
			if err := s.history.Clear(); err != nil {
				fmt.Fprintf(s.out, "%s %v\n", errorStyle.Render("[Error]"), err)
				return
			}
			fmt.Fprintln(s.out, "History cleared")
			return

		default:
			fmt.Fprintf(s.out, "%s usage: history [--search <term>|clear]\n", errorStyle.Render("[Error]"))
			return
		}
	}

	for i, e := range s.history.Entries() {
		fmt.Fprintf(s.out, "%4d  %s\n", i+1, e)
	}
}

// =============================================================================
// WORKING DIRECTORY
// =============================================================================

// runCd changes the session working directory. The process cwd is left
// alone: the directory is shell state, shown in the prompt and applied
// per command, and must not leak into how the rest of the process
// resolves relative paths.
func (s *Shell) runCd(args []string) {
	target := ""
	if len(args) > 0 {
		target = args[0]
	}
	if target == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(s.out, "%s %v\n", errorStyle.Render("[Error]"), err)
			return
		}
		target = home
	}

	if !filepath.IsAbs(target) {
		target = filepath.Join(s.workingDir, target)
	}
	target = filepath.Clean(target)

	info, err := os.Stat(target)
	if err != nil {
		fmt.Fprintf(s.out, "%s %v\n", errorStyle.Render("[Error]"), err)
		return
	}
	if !info.IsDir() {
		fmt.Fprintf(s.out, "%s not a directory: %s\n", errorStyle.Render("[Error]"), target)
		return
	}
	s.workingDir = target
}
