// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package orchestrator manages the connection to a swarm orchestrator
// and the agent, task, session, and workflow state visible through it.
package orchestrator

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/swarmsh/internal/logging"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotConnected indicates an orchestrator operation was attempted
	// without an active connection.
	ErrNotConnected = errors.New("not connected to orchestrator (use 'connect' first)")

	// ErrAlreadyConnected indicates a connect attempt while connected.
	ErrAlreadyConnected = errors.New("already connected to orchestrator")

	// ErrAgentNotFound indicates an unknown agent id.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrTaskNotFound indicates an unknown task id.
	ErrTaskNotFound = errors.New("task not found")

	// ErrWorkflowNotFound indicates an unknown workflow id.
	ErrWorkflowNotFound = errors.New("workflow not found")
)

// =============================================================================
// STATUS
// =============================================================================

// Status is the orchestrator connection state.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
)

// String returns the human-readable connection state.
func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// =============================================================================
// DOMAIN TYPES
// =============================================================================

// AgentState is an agent's lifecycle state.
type AgentState string

const (
	AgentActive     AgentState = "active"
	AgentTerminated AgentState = "terminated"
)

// Agent is one spawned swarm agent.
type Agent struct {
	ID        string
	Kind      string
	Name      string
	State     AgentState
	SpawnedAt time.Time
}

// TaskState is a task's lifecycle state.
type TaskState string

const (
	TaskPending   TaskState = "pending"
	TaskAssigned  TaskState = "assigned"
	TaskCancelled TaskState = "cancelled"
)

// Task is one unit of swarm work.
type Task struct {
	ID          string
	Type        string
	Description string
	State       TaskState
	AssignedTo  string
	CreatedAt   time.Time
}

// WorkflowState is a workflow's lifecycle state.
type WorkflowState string

const (
	WorkflowRunning WorkflowState = "running"
	WorkflowStopped WorkflowState = "stopped"
)

// Workflow is one named multi-step pipeline run.
type Workflow struct {
	ID        string
	Name      string
	State     WorkflowState
	StartedAt time.Time
}

// Session describes one shell session attached to the orchestrator.
type Session struct {
	ID        string
	StartedAt time.Time
	Current   bool
}

// Stats is a point-in-time orchestrator summary.
type Stats struct {
	Status     Status
	Endpoint   string
	SessionID  string
	Uptime     time.Duration
	Agents     int
	Tasks      int
	Workflows  int
	Monitoring bool
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager owns the orchestrator connection and its in-session state.
// Safe for concurrent use.
type Manager struct {
	mu          sync.RWMutex
	status      Status
	endpoint    string
	sessionID   string
	connectedAt time.Time
	monitoring  bool

	agents    map[string]*Agent
	tasks     map[string]*Task
	workflows map[string]*Workflow

	logger *logging.Logger
}

// NewManager creates a disconnected manager.
func NewManager(logger *logging.Logger) *Manager {
	return &Manager{
		status:    StatusDisconnected,
		agents:    make(map[string]*Agent),
		tasks:     make(map[string]*Task),
		workflows: make(map[string]*Workflow),
		logger:    logger.Child(map[string]string{"component": "orchestrator"}),
	}
}

// Status returns the current connection state.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Endpoint returns the connected endpoint, empty when disconnected.
func (m *Manager) Endpoint() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.endpoint
}

// SessionID returns the current session id, empty when disconnected.
func (m *Manager) SessionID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessionID
}

// Connect establishes a connection to the orchestrator at endpoint.
// The connection passes through the connecting state before becoming
// connected; connecting while connected is an error.
func (m *Manager) Connect(endpoint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status == StatusConnected {
		return ErrAlreadyConnected
	}

	m.status = StatusConnecting
	m.logger.Info("connecting to orchestrator", map[string]any{"endpoint": endpoint})

	m.status = StatusConnected
	m.endpoint = endpoint
	m.sessionID = uuid.NewString()
	m.connectedAt = time.Now()

	m.logger.Info("connected to orchestrator", map[string]any{
		"endpoint": endpoint,
		"session":  m.sessionID,
	})
	return nil
}

// Disconnect tears down the connection. Disconnecting while already
// disconnected is a no-op.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status == StatusDisconnected {
		return
	}
	m.logger.Info("disconnected from orchestrator", map[string]any{
		"endpoint": m.endpoint,
		"session":  m.sessionID,
	})
	m.status = StatusDisconnected
	m.endpoint = ""
	m.sessionID = ""
	m.monitoring = false
}

// requireConnectedLocked returns ErrNotConnected unless connected.
// Callers hold m.mu.
func (m *Manager) requireConnectedLocked() error {
	if m.status != StatusConnected {
		return ErrNotConnected
	}
	return nil
}

// =============================================================================
// AGENTS
// =============================================================================

// SpawnAgent creates an agent of the given kind.
func (m *Manager) SpawnAgent(kind, name string) (*Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireConnectedLocked(); err != nil {
		return nil, err
	}

	agent := &Agent{
		ID:        shortID(),
		Kind:      kind,
		Name:      name,
		State:     AgentActive,
		SpawnedAt: time.Now(),
	}
	if agent.Name == "" {
		agent.Name = fmt.Sprintf("%s-%s", kind, agent.ID)
	}
	m.agents[agent.ID] = agent

	m.logger.Info("agent spawned", map[string]any{"agent": agent.ID, "kind": kind})
	return agent, nil
}

// ListAgents returns all agents ordered by spawn time.
func (m *Manager) ListAgents() ([]*Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.requireConnectedLocked(); err != nil {
		return nil, err
	}

	agents := make([]*Agent, 0, len(m.agents))
	for _, a := range m.agents {
		agents = append(agents, a)
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i].SpawnedAt.Before(agents[j].SpawnedAt) })
	return agents, nil
}

// Agent returns the agent with the given id.
func (m *Manager) Agent(id string) (*Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.requireConnectedLocked(); err != nil {
		return nil, err
	}
	agent, ok := m.agents[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, id)
	}
	return agent, nil
}

// TerminateAgent marks the agent terminated.
func (m *Manager) TerminateAgent(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireConnectedLocked(); err != nil {
		return err
	}
	agent, ok := m.agents[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, id)
	}
	agent.State = AgentTerminated
	m.logger.Info("agent terminated", map[string]any{"agent": id})
	return nil
}

// =============================================================================
// TASKS
// =============================================================================

// CreateTask creates a pending task.
func (m *Manager) CreateTask(taskType, description string) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireConnectedLocked(); err != nil {
		return nil, err
	}

	task := &Task{
		ID:          shortID(),
		Type:        taskType,
		Description: description,
		State:       TaskPending,
		CreatedAt:   time.Now(),
	}
	m.tasks[task.ID] = task

	m.logger.Info("task created", map[string]any{"task": task.ID, "type": taskType})
	return task, nil
}

// ListTasks returns all tasks ordered by creation time.
func (m *Manager) ListTasks() ([]*Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.requireConnectedLocked(); err != nil {
		return nil, err
	}

	tasks := make([]*Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.Before(tasks[j].CreatedAt) })
	return tasks, nil
}

// Task returns the task with the given id.
func (m *Manager) Task(id string) (*Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.requireConnectedLocked(); err != nil {
		return nil, err
	}
	task, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return task, nil
}

// CancelTask marks the task cancelled.
func (m *Manager) CancelTask(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireConnectedLocked(); err != nil {
		return err
	}
	task, ok := m.tasks[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	task.State = TaskCancelled
	m.logger.Info("task cancelled", map[string]any{"task": id})
	return nil
}

// AssignTask assigns the task to the agent.
func (m *Manager) AssignTask(taskID, agentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireConnectedLocked(); err != nil {
		return err
	}
	task, ok := m.tasks[taskID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	agent, ok := m.agents[agentID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, agentID)
	}
	task.State = TaskAssigned
	task.AssignedTo = agent.ID
	m.logger.Info("task assigned", map[string]any{"task": taskID, "agent": agentID})
	return nil
}

// =============================================================================
// WORKFLOWS
// =============================================================================

// RunWorkflow starts the named workflow.
func (m *Manager) RunWorkflow(name string) (*Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireConnectedLocked(); err != nil {
		return nil, err
	}

	wf := &Workflow{
		ID:        shortID(),
		Name:      name,
		State:     WorkflowRunning,
		StartedAt: time.Now(),
	}
	m.workflows[wf.ID] = wf

	m.logger.Info("workflow started", map[string]any{"workflow": wf.ID, "name": name})
	return wf, nil
}

// ListWorkflows returns all workflows ordered by start time.
func (m *Manager) ListWorkflows() ([]*Workflow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.requireConnectedLocked(); err != nil {
		return nil, err
	}

	wfs := make([]*Workflow, 0, len(m.workflows))
	for _, wf := range m.workflows {
		wfs = append(wfs, wf)
	}
	sort.Slice(wfs, func(i, j int) bool { return wfs[i].StartedAt.Before(wfs[j].StartedAt) })
	return wfs, nil
}

// Workflow returns the workflow with the given id.
func (m *Manager) Workflow(id string) (*Workflow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.requireConnectedLocked(); err != nil {
		return nil, err
	}
	wf, ok := m.workflows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
	}
	return wf, nil
}

// StopWorkflow marks the workflow stopped.
func (m *Manager) StopWorkflow(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireConnectedLocked(); err != nil {
		return err
	}
	wf, ok := m.workflows[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
	}
	wf.State = WorkflowStopped
	m.logger.Info("workflow stopped", map[string]any{"workflow": id})
	return nil
}

// =============================================================================
// SESSIONS & MONITORING
// =============================================================================

// Sessions returns the orchestrator-visible sessions. The local session
// is always first and flagged current.
func (m *Manager) Sessions() ([]*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.requireConnectedLocked(); err != nil {
		return nil, err
	}
	return []*Session{{ID: m.sessionID, StartedAt: m.connectedAt, Current: true}}, nil
}

// SetMonitoring toggles live monitoring.
func (m *Manager) SetMonitoring(on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireConnectedLocked(); err != nil {
		return err
	}
	m.monitoring = on
	return nil
}

// Stats returns a point-in-time summary. Available in any connection
// state; the counters are zero when disconnected.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Stats{
		Status:     m.status,
		Endpoint:   m.endpoint,
		SessionID:  m.sessionID,
		Agents:     len(m.agents),
		Tasks:      len(m.tasks),
		Workflows:  len(m.workflows),
		Monitoring: m.monitoring,
	}
	if m.status == StatusConnected {
		s.Uptime = time.Since(m.connectedAt)
	}
	return s
}

// shortID returns a compact unique id for agents, tasks, and workflows.
func shortID() string {
	return uuid.NewString()[:8]
}
