package recorder

import (
	"errors"
	"fmt"
)

// State is the lifecycle position of a voice memo session.
type State int

const (
	Idle State = iota
	Recording
	Stopped
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrNoMemo            = errors.New("no recorded memo")
)

// transitions lists every legal move of the session.
var transitions = map[State][]State{
	Idle:      {Recording},
	Recording: {Stopped},
	Stopped:   {Recording, Playing},
	Playing:   {Paused, Stopped},
	Paused:    {Playing, Stopped},
}

func canMove(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func transitionError(from, to State) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
