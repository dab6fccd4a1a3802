package treeio

import "github.com/arloliu/datatree/format"

type escalationState uint8

const (
	stateInitial escalationState = iota
	stateAppending
)

// modeEscalator tracks the mode passed to each group write. It starts in
// stateInitial with the caller's mode and moves to stateAppending after the
// first committed write, never back.
type modeEscalator struct {
	state    escalationState
	current  format.Mode
	escalate func(format.Mode) format.Mode
}

// newNetCDFEscalator switches to append after the first write, whatever the
// initial mode.
func newNetCDFEscalator(initial format.Mode) *modeEscalator {
	return &modeEscalator{
		current:  initial,
		escalate: func(format.Mode) format.Mode { return format.ModeAppend },
	}
}

// newZarrEscalator re-evaluates the mode after every write: create modes
// become append, append modes are kept.
func newZarrEscalator(initial format.Mode) *modeEscalator {
	return &modeEscalator{
		current: initial,
		escalate: func(m format.Mode) format.Mode {
			if m.IsCreate() {
				return format.ModeAppend
			}

			return m
		},
	}
}

// Mode returns the mode for the next write.
func (e *modeEscalator) Mode() format.Mode {
	return e.current
}

// State reports the current state.
func (e *modeEscalator) State() escalationState {
	return e.state
}

// Committed records a successful write.
func (e *modeEscalator) Committed() {
	e.state = stateAppending
	e.current = e.escalate(e.current)
}
