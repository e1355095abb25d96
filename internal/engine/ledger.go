package engine

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"go_rules/internal/domain/game"
	errs "go_rules/internal/errors"
)

// Ledger is the accepted history of a game plus an index from each
// canonical position to the history indices where it occurred.
//
// A ledger returned by Transition is never modified afterwards.
// Transitions work on a clone, so old ledgers stay valid.
type Ledger struct {
	states []*game.GameState
	index  map[string][]int
}

// NewLedger returns a ledger holding only the empty board with black to move.
func NewLedger(boardSize int) *Ledger {
	l := &Ledger{index: make(map[string][]int)}
	l.checkAndAdd(game.NewGameState(boardSize), true)
	return l
}

// CanonicalKey identifies a position by board contents and side to move.
// The last move and capture counters are not part of it.
func CanonicalKey(s *game.GameState) string {
	var b strings.Builder
	size := s.Board.Size()
	b.Grow(size*(size+1) + 6)
	for _, row := range s.Board {
		for _, cell := range row {
			b.WriteByte('0' + byte(cell))
		}
		b.WriteByte('/')
	}
	b.WriteString(s.CurrentPlayer.String())
	return b.String()
}

// Len is the number of accepted states, the initial one included.
func (l *Ledger) Len() int {
	return len(l.states)
}

// Current returns the latest accepted state. Callers must not modify it.
func (l *Ledger) Current() *game.GameState {
	if len(l.states) == 0 {
		panic(errs.ErrEmptyLedger)
	}
	return l.states[len(l.states)-1]
}

// State returns the state at history index i. Callers must not modify it.
func (l *Ledger) State(i int) *game.GameState {
	return l.states[i]
}

// Occurrences returns the ascending history indices at which the
// position of s has occurred.
func (l *Ledger) Occurrences(s *game.GameState) []int {
	return slices.Clone(l.index[CanonicalKey(s)])
}

// Moves returns the actions that lead from the initial position to the
// current one, paired with the player who made each.
func (l *Ledger) Moves() []game.Move {
	moves := make([]game.Move, 0, len(l.states))
	for i := 1; i < len(l.states); i++ {
		mover := l.states[i-1].CurrentPlayer
		last := l.states[i].LastMove
		if last.IsPass() {
			moves = append(moves, game.NewMove(mover, game.Pass()))
		} else {
			moves = append(moves, game.NewMove(mover, game.Play(last.At)))
		}
	}
	return moves
}

func (l *Ledger) clone() *Ledger {
	return &Ledger{
		states: slices.Clone(l.states),
		index:  maps.Clone(l.index),
	}
}

// checkAndAdd runs the repetition check for candidate and appends it on
// success. Index lists may be shared with older ledgers, so they are
// always clipped before appending.
func (l *Ledger) checkAndAdd(candidate *game.GameState, fullKo bool) (Status, []int) {
	key := CanonicalKey(candidate)
	seen, ok := l.index[key]
	if ok {
		if len(seen) == 0 {
			panic(fmt.Errorf("%w: empty moves for %q", errs.ErrCorruptLedger, key))
		}
		if !candidate.LastMove.IsPass() {
			if seen[len(seen)-1] == len(l.states)-2 {
				return StatusKo, slices.Clone(seen)
			}
			if fullKo {
				return StatusFullKo, slices.Clone(seen)
			}
		}
	}

	l.index[key] = append(slices.Clip(seen), len(l.states))
	l.states = append(l.states, candidate)
	return StatusOK, slices.Clone(seen)
}

// removeLast drops the latest state and its index entry.
func (l *Ledger) removeLast() {
	if len(l.states) == 0 {
		panic(fmt.Errorf("%w: nothing to roll back", errs.ErrEmptyLedger))
	}
	last := l.states[len(l.states)-1]
	l.states = l.states[:len(l.states)-1]

	key := CanonicalKey(last)
	seen, ok := l.index[key]
	if !ok || len(seen) == 0 {
		panic(fmt.Errorf("%w: no index entry for %q", errs.ErrCorruptLedger, key))
	}
	if len(seen) == 1 {
		delete(l.index, key)
		return
	}
	l.index[key] = seen[:len(seen)-1]
}
