// Package workflow describes the one-way status lifecycle shared by reservations
// and complaints: an entity starts PENDING and moves once into a terminal state.
package workflow

import (
	"errors"
	"fmt"

	"estatehub/backend/internal/models"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// Machine is a status graph with a single initial state.
type Machine[S ~string] struct {
	Initial     S
	transitions map[S][]S
}

// NewMachine builds a machine where initial may move to any of terminals and
// terminals have no exits.
func NewMachine[S ~string](initial S, terminals ...S) Machine[S] {
	return Machine[S]{
		Initial:     initial,
		transitions: map[S][]S{initial: terminals},
	}
}

// Next lists the states reachable from s.
func (m Machine[S]) Next(s S) []S {
	return m.transitions[s]
}

// Known reports whether s is a state of the machine.
func (m Machine[S]) Known(s S) bool {
	if s == m.Initial {
		return true
	}
	for _, t := range m.transitions[m.Initial] {
		if t == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s has no outgoing transitions.
func (m Machine[S]) IsTerminal(s S) bool {
	return len(m.transitions[s]) == 0
}

// Check returns ErrInvalidTransition unless from -> to is an edge of the graph.
func (m Machine[S]) Check(from, to S) error {
	for _, t := range m.transitions[from] {
		if t == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

var (
	Reservations = NewMachine(models.ReservationPending, models.ReservationConfirmed, models.ReservationCancelled)
	Complaints   = NewMachine(models.ComplaintPending, models.ComplaintResolved, models.ComplaintRejected)
)
