// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeranaias/swarmsh/internal/commands"
	"github.com/jeranaias/swarmsh/internal/config"
	"github.com/jeranaias/swarmsh/internal/memory"
)

func testSetup(t *testing.T) (*commands.Registry, *Manager, *bytes.Buffer) {
	t.Helper()
	logger := testLogger(t)

	bank, err := memory.Open(filepath.Join(t.TempDir(), "memory.db"))
	if err != nil {
		t.Fatalf("memory.Open: %v", err)
	}
	t.Cleanup(func() { bank.Close() })

	m := NewManager(logger)
	reg := commands.NewRegistry(logger)
	RegisterCommands(reg, m, bank, config.Default())

	var out bytes.Buffer
	return reg, m, &out
}

func invoke(t *testing.T, reg *commands.Registry, out *bytes.Buffer, line string) error {
	t.Helper()
	tokens := commands.Tokenize(line)
	ctx := commands.NewContext(out, testLogger(t))
	return reg.Invoke(ctx, tokens[0], tokens[1:])
}

func TestOrchestratorCommandsRequireConnection(t *testing.T) {
	reg, _, out := testSetup(t)

	for _, line := range []string{"agent list", "task list", "workflow list", "session list", "monitor start"} {
		err := invoke(t, reg, out, line)
		if !errors.Is(err, ErrNotConnected) {
			t.Errorf("%q disconnected = %v, want ErrNotConnected", line, err)
		}
		var exec *commands.CommandExecutionError
		if !errors.As(err, &exec) {
			t.Errorf("%q error should be wrapped as CommandExecutionError", line)
		}
	}
}

func TestMemoryCommandsWorkDisconnected(t *testing.T) {
	reg, _, out := testSetup(t)

	if err := invoke(t, reg, out, `memory store project "swarm orchestration"`); err != nil {
		t.Fatalf("memory store: %v", err)
	}
	out.Reset()

	if err := invoke(t, reg, out, "memory get project"); err != nil {
		t.Fatalf("memory get: %v", err)
	}
	if !strings.Contains(out.String(), "project = swarm orchestration") {
		t.Errorf("memory get output = %q", out.String())
	}

	out.Reset()
	if err := invoke(t, reg, out, "memory search swarm"); err != nil {
		t.Fatalf("memory search: %v", err)
	}
	if !strings.Contains(out.String(), "project") {
		t.Errorf("memory search output = %q", out.String())
	}

	out.Reset()
	if err := invoke(t, reg, out, "memory delete project"); err != nil {
		t.Fatalf("memory delete: %v", err)
	}
	if err := invoke(t, reg, out, "memory get project"); !errors.Is(err, memory.ErrNotFound) {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}
}

func TestAgentCommandFlow(t *testing.T) {
	reg, m, out := testSetup(t)
	if err := m.Connect("localhost:4500"); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if err := invoke(t, reg, out, "agent spawn researcher"); err != nil {
		t.Fatalf("agent spawn: %v", err)
	}
	if !strings.Contains(out.String(), "Spawned agent") {
		t.Errorf("spawn output = %q", out.String())
	}

	out.Reset()
	if err := invoke(t, reg, out, "agent list"); err != nil {
		t.Fatalf("agent list: %v", err)
	}
	if !strings.Contains(out.String(), "researcher") {
		t.Errorf("list output = %q", out.String())
	}

	// Alias routes to the same descriptor.
	out.Reset()
	if err := invoke(t, reg, out, "agents list"); err != nil {
		t.Fatalf("agents (alias) list: %v", err)
	}
	if !strings.Contains(out.String(), "researcher") {
		t.Errorf("alias list output = %q", out.String())
	}
}

func TestTaskCommandQuotedDescription(t *testing.T) {
	reg, m, out := testSetup(t)
	if err := m.Connect("localhost:4500"); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if err := invoke(t, reg, out, `task create research "analyze the data"`); err != nil {
		t.Fatalf("task create: %v", err)
	}
	if !strings.Contains(out.String(), "analyze the data") {
		t.Errorf("quoted description lost: %q", out.String())
	}
}

func TestCommandUsageErrors(t *testing.T) {
	reg, m, out := testSetup(t)
	if err := m.Connect("localhost:4500"); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	tests := []string{
		"agent",
		"agent spawn",
		"task create research",
		"memory store onlykey",
		"workflow run",
	}
	for _, line := range tests {
		err := invoke(t, reg, out, line)
		if err == nil || !strings.Contains(err.Error(), "usage:") {
			t.Errorf("%q = %v, want usage error", line, err)
		}
	}
}

func TestUnknownSubcommand(t *testing.T) {
	reg, m, out := testSetup(t)
	if err := m.Connect("localhost:4500"); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	err := invoke(t, reg, out, "agent frobnicate")
	if err == nil || !strings.Contains(err.Error(), "unknown agent subcommand") {
		t.Errorf("agent frobnicate = %v", err)
	}
}

func TestConfigCommand(t *testing.T) {
	reg, _, out := testSetup(t)

	if err := invoke(t, reg, out, "config get logging.level"); err != nil {
		t.Fatalf("config get: %v", err)
	}
	if !strings.Contains(out.String(), "info") {
		t.Errorf("config get output = %q", out.String())
	}

	out.Reset()
	if err := invoke(t, reg, out, "config show"); err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out.String(), "logging.level") {
		t.Errorf("config show output = %q", out.String())
	}
}
