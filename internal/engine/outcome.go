package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Status is the wire name of an outcome.
type Status string

const (
	StatusOK      Status = "OK"
	StatusKo      Status = "KO"
	StatusFullKo  Status = "FULL_KO"
	StatusEnd     Status = "END"
	StatusInvalid Status = "INVALID"
)

// Outcome is the result of a transition. It is one of Accepted,
// Repeated, Ended or Invalid.
type Outcome interface {
	Status() Status
	outcome()
}

// Accepted carries the ledger with the new state appended. Repetitions
// lists earlier occurrences of the new position, which only happens for
// passes or when superko is not enforced.
type Accepted struct {
	Ledger      *Ledger
	Repetitions []int
}

// Repeated rejects a move that recreates an earlier position.
type Repeated struct {
	Kind        Status
	Repetitions []int
}

// Ended reports two consecutive passes. The ledger no longer holds the
// first of the two passes.
type Ended struct {
	Ledger *Ledger
}

// Invalid rejects a move that is illegal on the board itself.
type Invalid struct {
	Reason error
}

func (Accepted) Status() Status   { return StatusOK }
func (r Repeated) Status() Status { return r.Kind }
func (Ended) Status() Status      { return StatusEnd }
func (Invalid) Status() Status    { return StatusInvalid }

func (Accepted) outcome() {}
func (Repeated) outcome() {}
func (Ended) outcome()    {}
func (Invalid) outcome()  {}

// Describe renders an outcome as a message for the player.
func Describe(o Outcome) string {
	switch o := o.(type) {
	case Accepted:
		return ""
	case Repeated:
		return fmt.Sprintf("%s: %s", o.Kind, joinIndices(o.Repetitions))
	case Ended:
		return "Game over: both players passed."
	case Invalid:
		return fmt.Sprintf("Illegal move: %v.", o.Reason)
	default:
		return ""
	}
}

func joinIndices(indices []int) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ",")
}
