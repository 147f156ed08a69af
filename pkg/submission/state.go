package submission

import "fmt"

// State is one step of a submission.
type State uint8

const (
	StateIdle State = iota
	StateSubmitted
	StateRejected
	StateForwarding
	StateFailed
	StateSucceeded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitted:
		return "submitted"
	case StateRejected:
		return "rejected"
	case StateForwarding:
		return "forwarding"
	case StateFailed:
		return "failed"
	case StateSucceeded:
		return "succeeded"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	return s == StateRejected || s == StateFailed || s == StateSucceeded
}

var transitions = map[State][]State{
	StateIdle:       {StateSubmitted},
	StateSubmitted:  {StateRejected, StateForwarding},
	StateForwarding: {StateRejected, StateFailed, StateSucceeded},
}

// CanTransition reports whether from -> to is a legal step.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// machine tracks one submission and records every state it enters.
type machine struct {
	state State
	trace []State
}

func newMachine() *machine {
	return &machine{state: StateIdle, trace: []State{StateIdle}}
}

func (m *machine) advance(to State) {
	if !CanTransition(m.state, to) {
		panic(fmt.Sprintf("submission: illegal transition %s -> %s", m.state, to))
	}
	m.state = to
	m.trace = append(m.trace, to)
}

// abort ends the submission in Failed from any non-terminal state. It is
// only used when the pipeline panics.
func (m *machine) abort() {
	if m.state.Terminal() {
		return
	}
	m.state = StateFailed
	m.trace = append(m.trace, StateFailed)
}

func (m *machine) snapshot() []State {
	return append([]State(nil), m.trace...)
}
