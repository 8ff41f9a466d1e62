package lifecycle

import (
	"sync"

	"github.com/google/uuid"

	"stackctl/internal/catalog"
	"stackctl/internal/probe"
)

// ServiceStatus is the orchestrator-level state of one service within
// a session.
type ServiceStatus string

const (
	StatusPending  ServiceStatus = "Pending"
	StatusStarting ServiceStatus = "Starting"
	StatusReady    ServiceStatus = "Ready"
	StatusFailed   ServiceStatus = "Failed"
	StatusStopped  ServiceStatus = "Stopped"
)

// Phase is the controller's state machine position.
type Phase string

const (
	PhaseIdle      Phase = "Idle"
	PhasePlanning  Phase = "Planning"
	PhaseStarting  Phase = "StartingTier"
	PhaseVerifying Phase = "VerifyingTier"
	PhaseAborting  Phase = "Aborting"
	PhaseRunning   Phase = "Running"
	PhaseFailed    Phase = "Failed"
	PhaseAborted   Phase = "Aborted"
)

// Session holds the mutable state of one up or down invocation. It is
// created fresh per invocation and discarded when the invocation
// returns; nothing persists across runs. Exactly one session may act
// on a given stack at a time.
type Session struct {
	ID string

	mu        sync.RWMutex
	statuses  map[string]ServiceStatus
	results   map[string]probe.Result
	phase     Phase
	tierIndex int
}

// NewSession creates a session with every service Pending.
func NewSession(services []catalog.ServiceDefinition) *Session {
	statuses := make(map[string]ServiceStatus, len(services))
	for _, svc := range services {
		statuses[svc.Name] = StatusPending
	}
	return &Session{
		ID:       uuid.NewString(),
		statuses: statuses,
		results:  make(map[string]probe.Result),
		phase:    PhaseIdle,
	}
}

// SetStatus records a service's status.
func (s *Session) SetStatus(service string, status ServiceStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[service] = status
}

// Status returns a service's current status.
func (s *Session) Status(service string) ServiceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statuses[service]
}

// Statuses returns a copy of the status map.
func (s *Session) Statuses() map[string]ServiceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]ServiceStatus, len(s.statuses))
	for k, v := range s.statuses {
		out[k] = v
	}
	return out
}

// SetResult records a service's probe result.
func (s *Session) SetResult(result probe.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.Service] = result
}

// Result returns a service's probe result, if one was recorded.
func (s *Session) Result(service string) (probe.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[service]
	return r, ok
}

// SetPhase moves the state machine. tierIndex is only meaningful for
// the StartingTier and VerifyingTier phases.
func (s *Session) SetPhase(phase Phase, tierIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = phase
	s.tierIndex = tierIndex
}

// Phase returns the current state machine position.
func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// TierIndex returns the tier the controller is currently working on.
func (s *Session) TierIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tierIndex
}

// Started returns the names of services that have been started in this
// session (Starting or Ready).
func (s *Session) Started() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for name, status := range s.statuses {
		if status == StatusStarting || status == StatusReady {
			out = append(out, name)
		}
	}
	return out
}
