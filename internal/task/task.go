// Package task owns the report-generation lifecycle: an explicit state
// machine per task, a registry safe for concurrent polling, and the
// pipeline runner that drives each task to a terminal state.
package task

import (
	"fmt"
	"time"
)

// State is a task lifecycle state. The happy path is
// starting -> collecting -> generating -> [generating_ai] -> completed.
type State string

const (
	StateStarting     State = "starting"
	StateCollecting   State = "collecting"
	StateGenerating   State = "generating"
	StateGeneratingAI State = "generating_ai"
	StateCompleted    State = "completed"
	StateError        State = "error"
)

// transitions is the full legal transition table. generating_ai cannot
// reach error: by then a usable deterministic artifact exists on disk and
// the task must land in completed regardless of the AI outcome.
var transitions = map[State][]State{
	StateStarting:     {StateCollecting, StateError},
	StateCollecting:   {StateGenerating, StateError},
	StateGenerating:   {StateGeneratingAI, StateCompleted, StateError},
	StateGeneratingAI: {StateCompleted},
	StateCompleted:    {},
	StateError:        {},
}

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateError
}

func canTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Status is an immutable snapshot of one task. Readers always observe a
// consistent (State, Message) pair: updates replace the whole snapshot,
// never individual fields.
type Status struct {
	ID        string    `json:"taskId"`
	State     State     `json:"state"`
	Message   string    `json:"message"`
	UseAI     bool      `json:"useAI"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// ArtifactPath points at the markdown report once the deterministic
	// report has been persisted. Set once, never cleared.
	ArtifactPath string `json:"-"`
}

// ArtifactAvailable reports whether the report can be served.
func (s Status) ArtifactAvailable() bool {
	return s.State == StateCompleted && s.ArtifactPath != ""
}

// ErrIllegalTransition wraps a rejected state change. Seeing one means a
// pipeline bug, not a user error.
type ErrIllegalTransition struct {
	From, To State
}

func (e *ErrIllegalTransition) Error() string {
	return fmt.Sprintf("illegal task transition %s -> %s", e.From, e.To)
}
