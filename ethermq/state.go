package ethermq

import "sync/atomic"

// State is the lifecycle state of a pump.
type State int32

const (
	// Starting is the state of a pump whose loops have not all reached their source yet.
	Starting State = iota
	// Running is the state of a pump whose loops are all blocking on their sources.
	Running
	// Terminated is the state of a pump any of whose loops has returned.
	Terminated
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// loopStates tracks the state of the loops of a pump; a pump's state is derived from them.
type loopStates struct {
	states []atomic.Int32
}

func newLoopStates(loops int) *loopStates {
	return &loopStates{states: make([]atomic.Int32, loops)}
}

func (l *loopStates) set(loop int, s State) {
	if State(l.states[loop].Load()) == Terminated {
		return
	}

	l.states[loop].Store(int32(s))
}

func (l *loopStates) state() State {
	running := 0

	for idx := range l.states {
		switch State(l.states[idx].Load()) {
		case Terminated:
			return Terminated
		case Running:
			running++
		case Starting:
		}
	}

	if running == len(l.states) {
		return Running
	}

	return Starting
}
