package sim

import (
	"fmt"
)

// Observation is the intersection state sampled before each phase decision.
type Observation struct {
	Step           int
	QueueLength    int            // halted vehicles summed over the incoming edges
	TotalWait      float64        // accumulated waiting seconds of tracked vehicles
	ApproachQueues map[string]int // halted vehicles per incoming edge
}

// Reward is the negative sum of the current queue length and total waiting time.
// It is never positive.
func (o Observation) Reward() float64 {
	return -(float64(o.QueueLength) + o.TotalWait)
}

// PhasePolicy picks the phase to activate next.
// Implementations may keep internal state; one instance serves one Simulator.
type PhasePolicy interface {
	Next(obs Observation) Phase
	// Reset clears per-episode state.
	Reset()
}

// RoundRobinPolicy walks the eight phases in program order, one per decision,
// regardless of the observation.
type RoundRobinPolicy struct {
	count int
}

func (r *RoundRobinPolicy) Next(_ Observation) Phase {
	p := Phase(r.count % NumPhases)
	r.count++
	return p
}

func (r *RoundRobinPolicy) Reset() { r.count = 0 }

// MaxQueuePolicy serves the axis (north-south or east-west) holding the most
// halted vehicles. Every green is followed by its yellow. Consecutive greens on
// the same axis alternate between the through and the left-turn phase.
// Ties go to north-south.
type MaxQueuePolicy struct {
	pendingYellow bool
	lastAction    int
}

// NewMaxQueuePolicy returns a MaxQueuePolicy with no green issued yet.
func NewMaxQueuePolicy() *MaxQueuePolicy {
	return &MaxQueuePolicy{lastAction: -1}
}

func (m *MaxQueuePolicy) Next(obs Observation) Phase {
	if m.pendingYellow {
		m.pendingYellow = false
		return YellowPhase(m.lastAction)
	}
	ns := obs.ApproachQueues["N2TL"] + obs.ApproachQueues["S2TL"]
	ew := obs.ApproachQueues["E2TL"] + obs.ApproachQueues["W2TL"]
	axis := 0 // NS through
	if ew > ns {
		axis = 2 // EW through
	}
	action := axis
	if m.lastAction == axis {
		action = axis + 1
	}
	m.lastAction = action
	m.pendingYellow = true
	return GreenPhase(action)
}

func (m *MaxQueuePolicy) Reset() {
	m.pendingYellow = false
	m.lastAction = -1
}

// ValidPhasePolicies is the set of recognized phase policy names.
var ValidPhasePolicies = map[string]bool{"": true, "round-robin": true, "max-queue": true}

// IsValidPhasePolicy returns true if name is a recognized phase policy.
func IsValidPhasePolicy(name string) bool {
	return ValidPhasePolicies[name]
}

// NewPhasePolicy creates a PhasePolicy by name.
// Valid names: "round-robin" (default), "max-queue".
// Empty string defaults to RoundRobinPolicy.
func NewPhasePolicy(name string) (PhasePolicy, error) {
	switch name {
	case "", "round-robin":
		return &RoundRobinPolicy{}, nil
	case "max-queue":
		return NewMaxQueuePolicy(), nil
	default:
		return nil, fmt.Errorf("unknown phase policy %q", name)
	}
}
