// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/swarmsh/internal/commands"
	"github.com/jeranaias/swarmsh/internal/config"
	"github.com/jeranaias/swarmsh/internal/memory"
)

// =============================================================================
// COMMAND REGISTRATION
// =============================================================================

// RegisterCommands registers the orchestrator command surface on the
// registry: agent, task, memory, session, workflow, monitor, and
// config management. The memory commands work against the local bank
// and do not require a connection; everything else does.
func RegisterCommands(reg *commands.Registry, m *Manager, bank *memory.Bank, cfg *config.Config) {
	reg.Register(commands.Descriptor{
		Name:        "agent",
		Aliases:     []string{"agents"},
		Description: "Manage swarm agents",
		Usage:       "agent <spawn|list|terminate|info> [args]",
		Examples: []string{
			"agent spawn researcher",
			"agent list",
			"agent terminate a1b2c3d4",
		},
		Handler: agentHandler(m),
	})

	reg.Register(commands.Descriptor{
		Name:        "task",
		Aliases:     []string{"tasks"},
		Description: "Manage swarm tasks",
		Usage:       "task <create|list|status|cancel|assign> [args]",
		Examples: []string{
			`task create research "analyze the data"`,
			"task list",
			"task assign t1 a1",
		},
		Handler: taskHandler(m),
	})

	reg.Register(commands.Descriptor{
		Name:        "memory",
		Aliases:     []string{"mem"},
		Description: "Manage the local memory bank",
		Usage:       "memory <store|get|list|delete|search|export|import> [args]",
		Examples: []string{
			`memory store project "swarm orchestration"`,
			"memory search swarm",
			"memory export backup.json",
		},
		Handler: memoryHandler(bank),
	})

	reg.Register(commands.Descriptor{
		Name:        "session",
		Aliases:     []string{"sessions"},
		Description: "Manage orchestrator sessions",
		Usage:       "session <list|attach|detach|kill> [id]",
		Handler:     sessionHandler(m),
	})

	reg.Register(commands.Descriptor{
		Name:        "workflow",
		Aliases:     []string{"wf"},
		Description: "Run and manage workflows",
		Usage:       "workflow <run|list|status|stop> [args]",
		Examples: []string{
			"workflow run deploy-pipeline",
			"workflow list",
		},
		Handler: workflowHandler(m),
	})

	reg.Register(commands.Descriptor{
		Name:        "monitor",
		Description: "Control live swarm monitoring",
		Usage:       "monitor <start|stop|status>",
		Handler:     monitorHandler(m),
	})

	reg.Register(commands.Descriptor{
		Name:        "config",
		Description: "Inspect and change configuration",
		Usage:       "config <show|get|set> [key] [value]",
		Examples: []string{
			"config get logging.level",
			"config set logging.level debug",
		},
		Handler: configHandler(cfg),
	})
}

// usageError reports a malformed invocation.
func usageError(usage string) error {
	return fmt.Errorf("usage: %s", usage)
}

// =============================================================================
// AGENT
// =============================================================================

func agentHandler(m *Manager) commands.Handler {
	return func(ctx *commands.Context, args []string) error {
		if len(args) == 0 {
			return usageError("agent <spawn|list|terminate|info> [args]")
		}
		switch args[0] {
		case "spawn":
			if len(args) < 2 {
				return usageError("agent spawn <kind> [name]")
			}
			name := ""
			if len(args) > 2 {
				name = args[2]
			}
			agent, err := m.SpawnAgent(args[1], name)
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.Out, "Spawned agent %s (%s) as %s\n", agent.ID, agent.Kind, agent.Name)
			return nil

		case "list":
			agents, err := m.ListAgents()
			if err != nil {
				return err
			}
			if len(agents) == 0 {
				fmt.Fprintln(ctx.Out, "No agents spawned")
				return nil
			}
			fmt.Fprintf(ctx.Out, "%-10s %-14s %-22s %s\n", "ID", "KIND", "NAME", "STATE")
			for _, a := range agents {
				fmt.Fprintf(ctx.Out, "%-10s %-14s %-22s %s\n", a.ID, a.Kind, a.Name, a.State)
			}
			return nil

		case "terminate":
			if len(args) < 2 {
				return usageError("agent terminate <id>")
			}
			if err := m.TerminateAgent(args[1]); err != nil {
				return err
			}
			fmt.Fprintf(ctx.Out, "Terminated agent %s\n", args[1])
			return nil

		case "info":
			if len(args) < 2 {
				return usageError("agent info <id>")
			}
			agent, err := m.Agent(args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.Out, "ID:      %s\n", agent.ID)
			fmt.Fprintf(ctx.Out, "Kind:    %s\n", agent.Kind)
			fmt.Fprintf(ctx.Out, "Name:    %s\n", agent.Name)
			fmt.Fprintf(ctx.Out, "State:   %s\n", agent.State)
			fmt.Fprintf(ctx.Out, "Spawned: %s\n", agent.SpawnedAt.Format(time.RFC3339))
			return nil

		default:
			return fmt.Errorf("unknown agent subcommand: %s", args[0])
		}
	}
}

// =============================================================================
// TASK
// =============================================================================

func taskHandler(m *Manager) commands.Handler {
	return func(ctx *commands.Context, args []string) error {
		if len(args) == 0 {
			return usageError("task <create|list|status|cancel|assign> [args]")
		}
		switch args[0] {
		case "create":
			if len(args) < 3 {
				return usageError(`task create <type> "<description>"`)
			}
			task, err := m.CreateTask(args[1], strings.Join(args[2:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.Out, "Created task %s (%s): %s\n", task.ID, task.Type, task.Description)
			return nil

		case "list":
			tasks, err := m.ListTasks()
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Fprintln(ctx.Out, "No tasks")
				return nil
			}
			fmt.Fprintf(ctx.Out, "%-10s %-16s %-10s %s\n", "ID", "TYPE", "STATE", "DESCRIPTION")
			for _, t := range tasks {
				fmt.Fprintf(ctx.Out, "%-10s %-16s %-10s %s\n", t.ID, t.Type, t.State, t.Description)
			}
			return nil

		case "status":
			if len(args) < 2 {
				return usageError("task status <id>")
			}
			task, err := m.Task(args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.Out, "Task %s: %s", task.ID, task.State)
			if task.AssignedTo != "" {
				fmt.Fprintf(ctx.Out, " (assigned to %s)", task.AssignedTo)
			}
			fmt.Fprintln(ctx.Out)
			return nil

		case "cancel":
			if len(args) < 2 {
				return usageError("task cancel <id>")
			}
			if err := m.CancelTask(args[1]); err != nil {
				return err
			}
			fmt.Fprintf(ctx.Out, "Cancelled task %s\n", args[1])
			return nil

		case "assign":
			if len(args) < 3 {
				return usageError("task assign <task-id> <agent-id>")
			}
			if err := m.AssignTask(args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(ctx.Out, "Assigned task %s to agent %s\n", args[1], args[2])
			return nil

		default:
			return fmt.Errorf("unknown task subcommand: %s", args[0])
		}
	}
}

// =============================================================================
// MEMORY
// =============================================================================

func memoryHandler(bank *memory.Bank) commands.Handler {
	return func(ctx *commands.Context, args []string) error {
		if len(args) == 0 {
			return usageError("memory <store|get|list|delete|search|export|import> [args]")
		}
		bg := context.Background()
		switch args[0] {
		case "store":
			if len(args) < 3 {
				return usageError(`memory store <key> "<value>"`)
			}
			if err := bank.Store(bg, args[1], strings.Join(args[2:], " ")); err != nil {
				return err
			}
			fmt.Fprintf(ctx.Out, "Stored %s\n", args[1])
			return nil

		case "get":
			if len(args) < 2 {
				return usageError("memory get <key>")
			}
			entry, err := bank.Get(bg, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.Out, "%s = %s\n", entry.Key, entry.Value)
			return nil

		case "list":
			entries, err := bank.List(bg)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(ctx.Out, "Memory bank is empty")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(ctx.Out, "%s = %s\n", e.Key, e.Value)
			}
			return nil

		case "delete":
			if len(args) < 2 {
				return usageError("memory delete <key>")
			}
			if err := bank.Delete(bg, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(ctx.Out, "Deleted %s\n", args[1])
			return nil

		case "search":
			if len(args) < 2 {
				return usageError("memory search <term>")
			}
			entries, err := bank.Search(bg, args[1])
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintf(ctx.Out, "No entries matching %q\n", args[1])
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(ctx.Out, "%s = %s\n", e.Key, e.Value)
			}
			return nil

		case "export":
			if len(args) < 2 {
				return bank.Export(bg, ctx.Out)
			}
			f, err := os.Create(args[1])
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			defer f.Close()
			if err := bank.Export(bg, f); err != nil {
				return err
			}
			fmt.Fprintf(ctx.Out, "Exported memory to %s\n", args[1])
			return nil

		case "import":
			if len(args) < 2 {
				return usageError("memory import <file>")
			}
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			defer f.Close()
			n, err := bank.Import(bg, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.Out, "Imported %d entries from %s\n", n, args[1])
			return nil

		default:
			return fmt.Errorf("unknown memory subcommand: %s", args[0])
		}
	}
}

// =============================================================================
// SESSION
// =============================================================================

func sessionHandler(m *Manager) commands.Handler {
	return func(ctx *commands.Context, args []string) error {
		if len(args) == 0 {
			return usageError("session <list|attach|detach|kill> [id]")
		}
		switch args[0] {
		case "list":
			sessions, err := m.Sessions()
			if err != nil {
				return err
			}
			for _, s := range sessions {
				marker := " "
				if s.Current {
					marker = "*"
				}
				fmt.Fprintf(ctx.Out, "%s %s  started %s\n", marker, s.ID, s.StartedAt.Format(time.RFC3339))
			}
			return nil

		case "attach", "detach", "kill":
			if m.Status() != StatusConnected {
				return ErrNotConnected
			}
			// Remote session control needs the orchestrator wire protocol;
			// only the local session is reachable today.
			return fmt.Errorf("session %s is not supported for remote sessions", args[0])

		default:
			return fmt.Errorf("unknown session subcommand: %s", args[0])
		}
	}
}

// =============================================================================
// WORKFLOW
// =============================================================================

func workflowHandler(m *Manager) commands.Handler {
	return func(ctx *commands.Context, args []string) error {
		if len(args) == 0 {
			return usageError("workflow <run|list|status|stop> [args]")
		}
		switch args[0] {
		case "run":
			if len(args) < 2 {
				return usageError("workflow run <name>")
			}
			wf, err := m.RunWorkflow(args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.Out, "Started workflow %s (%s)\n", wf.ID, wf.Name)
			return nil

		case "list":
			wfs, err := m.ListWorkflows()
			if err != nil {
				return err
			}
			if len(wfs) == 0 {
				fmt.Fprintln(ctx.Out, "No workflows")
				return nil
			}
			fmt.Fprintf(ctx.Out, "%-10s %-24s %s\n", "ID", "NAME", "STATE")
			for _, wf := range wfs {
				fmt.Fprintf(ctx.Out, "%-10s %-24s %s\n", wf.ID, wf.Name, wf.State)
			}
			return nil

		case "status":
			if len(args) < 2 {
				return usageError("workflow status <id>")
			}
			wf, err := m.Workflow(args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.Out, "Workflow %s (%s): %s\n", wf.ID, wf.Name, wf.State)
			return nil

		case "stop":
			if len(args) < 2 {
				return usageError("workflow stop <id>")
			}
			if err := m.StopWorkflow(args[1]); err != nil {
				return err
			}
			fmt.Fprintf(ctx.Out, "Stopped workflow %s\n", args[1])
			return nil

		default:
			return fmt.Errorf("unknown workflow subcommand: %s", args[0])
		}
	}
}

// =============================================================================
// MONITOR
// =============================================================================

func monitorHandler(m *Manager) commands.Handler {
	return func(ctx *commands.Context, args []string) error {
		if len(args) == 0 {
			return usageError("monitor <start|stop|status>")
		}
		switch args[0] {
		case "start":
			if err := m.SetMonitoring(true); err != nil {
				return err
			}
			fmt.Fprintln(ctx.Out, "Monitoring started")
			return nil

		case "stop":
			if err := m.SetMonitoring(false); err != nil {
				return err
			}
			fmt.Fprintln(ctx.Out, "Monitoring stopped")
			return nil

		case "status":
			stats := m.Stats()
			fmt.Fprintf(ctx.Out, "Connection: %s\n", stats.Status)
			if stats.Status == StatusConnected {
				fmt.Fprintf(ctx.Out, "Endpoint:   %s\n", stats.Endpoint)
				fmt.Fprintf(ctx.Out, "Uptime:     %s\n", stats.Uptime.Round(time.Second))
			}
			fmt.Fprintf(ctx.Out, "Agents:     %d\n", stats.Agents)
			fmt.Fprintf(ctx.Out, "Tasks:      %d\n", stats.Tasks)
			fmt.Fprintf(ctx.Out, "Workflows:  %d\n", stats.Workflows)
			fmt.Fprintf(ctx.Out, "Monitoring: %v\n", stats.Monitoring)
			return nil

		default:
			return fmt.Errorf("unknown monitor subcommand: %s", args[0])
		}
	}
}

// =============================================================================
// CONFIG
// =============================================================================

func configHandler(cfg *config.Config) commands.Handler {
	return func(ctx *commands.Context, args []string) error {
		if len(args) == 0 {
			return usageError("config <show|get|set> [key] [value]")
		}
		switch args[0] {
		case "show":
			fmt.Fprintf(ctx.Out, "logging.level       = %s\n", cfg.Logging.Level)
			fmt.Fprintf(ctx.Out, "logging.format      = %s\n", cfg.Logging.Format)
			fmt.Fprintf(ctx.Out, "logging.destination = %s\n", cfg.Logging.Destination)
			fmt.Fprintf(ctx.Out, "history.max_entries = %d\n", cfg.History.MaxEntries)
			fmt.Fprintf(ctx.Out, "orchestrator        = %s\n", cfg.Endpoint())
			return nil

		case "get":
			if len(args) < 2 {
				return usageError("config get <key>")
			}
			v, err := cfg.Get(args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.Out, "%v\n", v)
			return nil

		case "set":
			if len(args) < 3 {
				return usageError("config set <key> <value>")
			}
			if err := cfg.Set(args[1], args[2]); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("failed to persist config: %w", err)
			}
			fmt.Fprintf(ctx.Out, "Set %s = %s\n", args[1], args[2])
			return nil

		default:
			return fmt.Errorf("unknown config subcommand: %s", args[0])
		}
	}
}
