// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"errors"
	"io"
	"testing"

	"github.com/jeranaias/swarmsh/internal/logging"
)

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	logger, err := logging.New(logging.Config{Console: io.Discard})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	return logger
}

func connectedManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(testLogger(t))
	if err := m.Connect("localhost:4500"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return m
}

func TestConnectLifecycle(t *testing.T) {
	m := NewManager(testLogger(t))

	if m.Status() != StatusDisconnected {
		t.Fatalf("initial status = %v, want disconnected", m.Status())
	}

	if err := m.Connect("localhost:4500"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if m.Status() != StatusConnected {
		t.Errorf("status after connect = %v, want connected", m.Status())
	}
	if m.Endpoint() != "localhost:4500" {
		t.Errorf("Endpoint = %q", m.Endpoint())
	}
	if m.SessionID() == "" {
		t.Error("SessionID should be assigned on connect")
	}

	if err := m.Connect("localhost:4500"); !errors.Is(err, ErrAlreadyConnected) {
		t.Errorf("second Connect = %v, want ErrAlreadyConnected", err)
	}

	m.Disconnect()
	if m.Status() != StatusDisconnected {
		t.Errorf("status after disconnect = %v, want disconnected", m.Status())
	}
	if m.Endpoint() != "" || m.SessionID() != "" {
		t.Error("endpoint and session should be cleared on disconnect")
	}

	// Disconnect when already disconnected is a no-op.
	m.Disconnect()
}

func TestOperationsRequireConnection(t *testing.T) {
	m := NewManager(testLogger(t))

	if _, err := m.SpawnAgent("researcher", ""); !errors.Is(err, ErrNotConnected) {
		t.Errorf("SpawnAgent disconnected = %v, want ErrNotConnected", err)
	}
	if _, err := m.ListAgents(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("ListAgents disconnected = %v, want ErrNotConnected", err)
	}
	if _, err := m.CreateTask("research", "x"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("CreateTask disconnected = %v, want ErrNotConnected", err)
	}
	if _, err := m.RunWorkflow("deploy"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("RunWorkflow disconnected = %v, want ErrNotConnected", err)
	}
	if _, err := m.Sessions(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Sessions disconnected = %v, want ErrNotConnected", err)
	}
	if err := m.SetMonitoring(true); !errors.Is(err, ErrNotConnected) {
		t.Errorf("SetMonitoring disconnected = %v, want ErrNotConnected", err)
	}
}

func TestAgentLifecycle(t *testing.T) {
	m := connectedManager(t)

	agent, err := m.SpawnAgent("researcher", "")
	if err != nil {
		t.Fatalf("SpawnAgent: %v", err)
	}
	if agent.ID == "" || agent.State != AgentActive {
		t.Fatalf("unexpected agent: %+v", agent)
	}
	if agent.Name == "" {
		t.Error("agent without explicit name should get a generated one")
	}

	named, err := m.SpawnAgent("coder", "builder")
	if err != nil {
		t.Fatalf("SpawnAgent: %v", err)
	}
	if named.Name != "builder" {
		t.Errorf("Name = %q, want builder", named.Name)
	}

	agents, err := m.ListAgents()
	if err != nil {
		t.Fatalf("ListAgents: %v", err)
	}
	if len(agents) != 2 {
		t.Fatalf("ListAgents returned %d, want 2", len(agents))
	}
	if agents[0].ID != agent.ID {
		t.Error("agents should be ordered by spawn time")
	}

	if err := m.TerminateAgent(agent.ID); err != nil {
		t.Fatalf("TerminateAgent: %v", err)
	}
	got, err := m.Agent(agent.ID)
	if err != nil {
		t.Fatalf("Agent: %v", err)
	}
	if got.State != AgentTerminated {
		t.Errorf("State = %v, want terminated", got.State)
	}

	if err := m.TerminateAgent("missing"); !errors.Is(err, ErrAgentNotFound) {
		t.Errorf("TerminateAgent(missing) = %v, want ErrAgentNotFound", err)
	}
}

func TestTaskLifecycle(t *testing.T) {
	m := connectedManager(t)

	task, err := m.CreateTask("research", "analyze the data")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.State != TaskPending {
		t.Errorf("new task state = %v, want pending", task.State)
	}

	agent, err := m.SpawnAgent("researcher", "")
	if err != nil {
		t.Fatalf("SpawnAgent: %v", err)
	}

	if err := m.AssignTask(task.ID, agent.ID); err != nil {
		t.Fatalf("AssignTask: %v", err)
	}
	got, err := m.Task(task.ID)
	if err != nil {
		t.Fatalf("Task: %v", err)
	}
	if got.State != TaskAssigned || got.AssignedTo != agent.ID {
		t.Errorf("after assign: %+v", got)
	}

	if err := m.AssignTask(task.ID, "missing"); !errors.Is(err, ErrAgentNotFound) {
		t.Errorf("AssignTask to missing agent = %v, want ErrAgentNotFound", err)
	}

	if err := m.CancelTask(task.ID); err != nil {
		t.Fatalf("CancelTask: %v", err)
	}
	got, _ = m.Task(task.ID)
	if got.State != TaskCancelled {
		t.Errorf("State = %v, want cancelled", got.State)
	}
}

func TestWorkflowLifecycle(t *testing.T) {
	m := connectedManager(t)

	wf, err := m.RunWorkflow("deploy-pipeline")
	if err != nil {
		t.Fatalf("RunWorkflow: %v", err)
	}
	if wf.State != WorkflowRunning {
		t.Errorf("new workflow state = %v, want running", wf.State)
	}

	if err := m.StopWorkflow(wf.ID); err != nil {
		t.Fatalf("StopWorkflow: %v", err)
	}
	got, err := m.Workflow(wf.ID)
	if err != nil {
		t.Fatalf("Workflow: %v", err)
	}
	if got.State != WorkflowStopped {
		t.Errorf("State = %v, want stopped", got.State)
	}

	if err := m.StopWorkflow("missing"); !errors.Is(err, ErrWorkflowNotFound) {
		t.Errorf("StopWorkflow(missing) = %v, want ErrWorkflowNotFound", err)
	}
}

func TestStats(t *testing.T) {
	m := NewManager(testLogger(t))

	stats := m.Stats()
	if stats.Status != StatusDisconnected || stats.Agents != 0 {
		t.Errorf("disconnected stats = %+v", stats)
	}

	if err := m.Connect("localhost:4500"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if _, err := m.SpawnAgent("researcher", ""); err != nil {
		t.Fatalf("SpawnAgent: %v", err)
	}
	if _, err := m.CreateTask("research", "x"); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	stats = m.Stats()
	if stats.Status != StatusConnected || stats.Agents != 1 || stats.Tasks != 1 {
		t.Errorf("connected stats = %+v", stats)
	}
	if stats.SessionID == "" || stats.Endpoint == "" {
		t.Error("connected stats should carry session and endpoint")
	}
}
