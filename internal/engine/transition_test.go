package engine

import (
	"errors"
	"slices"
	"testing"

	"go.uber.org/zap"

	"go_rules/internal/domain/game"
	errs "go_rules/internal/errors"
)

func newTestEngine(fullKo bool) *Engine {
	return New(Config{BoardSize: 19, FullKo: fullKo}, zap.NewNop().Sugar())
}

// playAll applies actions that are all expected to be accepted.
func playAll(t *testing.T, e *Engine, l *Ledger, actions ...game.Action) *Ledger {
	t.Helper()
	for _, a := range actions {
		outcome := e.Transition(l, a)
		accepted, ok := outcome.(Accepted)
		if !ok {
			t.Fatalf("action %s: expected OK, got %s (%s)", a, outcome.Status(), Describe(outcome))
		}
		l = accepted.Ledger
		assertLockstep(t, l)
	}
	return l
}

func assertLockstep(t *testing.T, l *Ledger) {
	t.Helper()
	total := 0
	for key, indices := range l.index {
		if len(indices) == 0 {
			t.Fatalf("empty index list for %q", key)
		}
		if !slices.IsSorted(indices) {
			t.Fatalf("index list not ascending: %v", indices)
		}
		total += len(indices)
	}
	if total != len(l.states) {
		t.Fatalf("index holds %d entries for %d states", total, len(l.states))
	}
	for i, s := range l.states {
		if !slices.Contains(l.index[CanonicalKey(s)], i) {
			t.Fatalf("state %d missing from index", i)
		}
	}
}

func p(row, col int) game.Action {
	return game.Play(at(row, col))
}

// koSetup builds two ko shapes. In the top-left one white holds the ko
// and black may take at (1,2); in the other black holds it and white
// may take at (11,11). Black is to move.
func koSetup(t *testing.T, e *Engine) *Ledger {
	t.Helper()
	return playAll(t, e, e.NewLedger(),
		p(0, 1), p(0, 2), p(1, 0), p(1, 3), p(2, 1), p(2, 2),
		p(10, 11), p(10, 12), p(11, 10), p(11, 13), p(12, 11), p(12, 12),
		p(11, 12), p(1, 1),
	)
}

func TestNewLedger(t *testing.T) {
	l := NewLedger(19)
	if l.Len() != 1 {
		t.Fatalf("expected 1 state, got %d", l.Len())
	}
	cur := l.Current()
	if cur.CurrentPlayer != game.PlayerBlack || cur.LastMove.Kind != game.MoveNone {
		t.Fatalf("unexpected initial state %+v", cur)
	}
	assertLockstep(t, l)
}

func TestCanonicalKeyIgnoresMoveAndCaptures(t *testing.T) {
	a := game.NewGameState(9)
	b := a.Clone()
	b.LastMove = game.Passed()
	b.BlackCapturedOpponent = 7
	if CanonicalKey(a) != CanonicalKey(b) {
		t.Fatal("last move and captures must not change the key")
	}
	b.CurrentPlayer = game.PlayerWhite
	if CanonicalKey(a) == CanonicalKey(b) {
		t.Fatal("side to move must change the key")
	}
	c := a.Clone()
	c.Board.Set(at(4, 4), game.CellBlack)
	if CanonicalKey(a) == CanonicalKey(c) {
		t.Fatal("board contents must change the key")
	}
}

func TestOccupiedSpotIsInvalid(t *testing.T) {
	e := newTestEngine(true)
	l := playAll(t, e, e.NewLedger(), p(3, 3))

	outcome := e.Transition(l, p(3, 3))
	invalid, ok := outcome.(Invalid)
	if !ok {
		t.Fatalf("expected INVALID, got %s", outcome.Status())
	}
	if !errors.Is(invalid.Reason, errs.ErrOccupied) {
		t.Fatalf("expected occupied, got %v", invalid.Reason)
	}
	if l.Len() != 2 {
		t.Fatalf("ledger must not grow, got %d", l.Len())
	}
}

func TestOutOfBoundsIsInvalid(t *testing.T) {
	e := newTestEngine(true)
	l := e.NewLedger()
	outcome := e.Transition(l, p(19, 3))
	if outcome.Status() != StatusInvalid {
		t.Fatalf("expected INVALID, got %s", outcome.Status())
	}
	if !errors.Is(outcome.(Invalid).Reason, errs.ErrOutOfBounds) {
		t.Fatalf("unexpected reason %v", outcome.(Invalid).Reason)
	}
}

func TestCaptureThroughTransition(t *testing.T) {
	e := newTestEngine(true)
	l := playAll(t, e, e.NewLedger(), p(1, 1), p(0, 1), p(0, 2), p(10, 10), p(0, 0))

	cur := l.Current()
	if cur.BlackCapturedOpponent != 1 {
		t.Fatalf("expected 1 capture for black, got %d", cur.BlackCapturedOpponent)
	}
	if cur.WhiteCapturedOpponent != 0 {
		t.Fatalf("expected no captures for white, got %d", cur.WhiteCapturedOpponent)
	}
	if cur.Board.At(at(0, 1)) != game.CellEmpty {
		t.Fatal("white stone should be removed")
	}
}

func TestSuicideThroughTransition(t *testing.T) {
	e := newTestEngine(true)
	l := playAll(t, e, e.NewLedger(), p(0, 1), p(18, 18), p(1, 0))

	outcome := e.Transition(l, p(0, 0))
	invalid, ok := outcome.(Invalid)
	if !ok || !errors.Is(invalid.Reason, errs.ErrSuicide) {
		t.Fatalf("expected suicide, got %s (%s)", outcome.Status(), Describe(outcome))
	}
	if l.Current().Board.At(at(0, 0)) != game.CellEmpty {
		t.Fatal("board must not change")
	}
}

func TestImmediateKo(t *testing.T) {
	e := newTestEngine(true)
	l := koSetup(t, e)
	l = playAll(t, e, l, p(1, 2))
	if l.Current().BlackCapturedOpponent != 1 {
		t.Fatalf("taking the ko should capture one stone")
	}
	before := l.Len()

	outcome := e.Transition(l, p(1, 1))
	repeated, ok := outcome.(Repeated)
	if !ok || repeated.Kind != StatusKo {
		t.Fatalf("expected KO, got %s", outcome.Status())
	}
	if !slices.Equal(repeated.Repetitions, []int{14}) {
		t.Fatalf("expected repetitions [14], got %v", repeated.Repetitions)
	}
	if l.Len() != before {
		t.Fatal("ledger must not grow on KO")
	}
	if l.Current().Board.At(at(1, 2)) != game.CellBlack {
		t.Fatal("board must not change on KO")
	}
	if got := Describe(outcome); got != "KO: 14" {
		t.Fatalf("unexpected message %q", got)
	}
}

// superkoCycle plays a double ko until black's next capture at (1,2)
// would recreate the position at index 15.
func superkoCycle(t *testing.T, e *Engine) *Ledger {
	t.Helper()
	l := koSetup(t, e)
	return playAll(t, e, l,
		p(1, 2),     // 15: black takes ko one
		p(11, 11),   // 16: white takes ko two
		game.Pass(), // 17
		p(1, 1),     // 18: white retakes ko one
		p(11, 12),   // 19: black retakes ko two
		game.Pass(), // 20: same position as 14
	)
}

func TestPassMayRepeatPosition(t *testing.T) {
	e := newTestEngine(true)
	l := superkoCycle(t, e)
	if got := l.Occurrences(l.Current()); !slices.Equal(got, []int{14, 20}) {
		t.Fatalf("expected occurrences [14 20], got %v", got)
	}
}

func TestFullKo(t *testing.T) {
	e := newTestEngine(true)
	l := superkoCycle(t, e)

	outcome := e.Transition(l, p(1, 2))
	repeated, ok := outcome.(Repeated)
	if !ok || repeated.Kind != StatusFullKo {
		t.Fatalf("expected FULL_KO, got %s", outcome.Status())
	}
	if !slices.Equal(repeated.Repetitions, []int{15}) {
		t.Fatalf("expected repetitions [15], got %v", repeated.Repetitions)
	}
	if l.Len() != 21 {
		t.Fatalf("ledger must not grow, got %d", l.Len())
	}
}

func TestSuperkoDisabledAllowsRepeat(t *testing.T) {
	e := newTestEngine(false)
	l := superkoCycle(t, e)

	outcome := e.Transition(l, p(1, 2))
	accepted, ok := outcome.(Accepted)
	if !ok {
		t.Fatalf("expected OK, got %s", outcome.Status())
	}
	if accepted.Ledger.Len() != l.Len()+1 {
		t.Fatalf("expected exactly one new state")
	}
	if !slices.Equal(accepted.Repetitions, []int{15}) {
		t.Fatalf("expected repetitions [15], got %v", accepted.Repetitions)
	}
	assertLockstep(t, accepted.Ledger)

	// the immediate recapture is still a plain ko
	outcome = e.Transition(accepted.Ledger, p(1, 1))
	if outcome.Status() != StatusKo {
		t.Fatalf("expected KO, got %s", outcome.Status())
	}
}

func TestDoublePassEndsGame(t *testing.T) {
	e := newTestEngine(true)
	l := playAll(t, e, e.NewLedger(), p(3, 3), p(15, 15))
	before := l.Len()
	beforeState := l.Current()

	afterPass := playAll(t, e, l, game.Pass())
	if afterPass.Len() != before+1 {
		t.Fatalf("first pass should be recorded")
	}

	outcome := e.Transition(afterPass, game.Pass())
	ended, ok := outcome.(Ended)
	if !ok {
		t.Fatalf("expected END, got %s", outcome.Status())
	}
	if ended.Ledger.Len() != before {
		t.Fatalf("expected history length %d, got %d", before, ended.Ledger.Len())
	}
	if ended.Ledger.Current() != beforeState {
		t.Fatal("history should end at the state before the first pass")
	}
	assertLockstep(t, ended.Ledger)
	if afterPass.Len() != before+1 {
		t.Fatal("the ledger passed in must not change")
	}
}

func TestPassFlipsPlayerOnly(t *testing.T) {
	e := newTestEngine(true)
	l := playAll(t, e, e.NewLedger(), p(3, 3), game.Pass())
	cur := l.Current()
	if cur.CurrentPlayer != game.PlayerBlack {
		t.Fatalf("expected black to move after white passed, got %s", cur.CurrentPlayer)
	}
	if !cur.LastMove.IsPass() {
		t.Fatal("last move should be a pass")
	}
	if cur.Board.At(at(3, 3)) != game.CellBlack {
		t.Fatal("pass must not touch the board")
	}
}

func TestTransitionDoesNotMutateInput(t *testing.T) {
	e := newTestEngine(true)
	base := playAll(t, e, e.NewLedger(), p(3, 3))

	a := playAll(t, e, base, p(4, 4))
	b := playAll(t, e, base, p(5, 5))

	if base.Len() != 2 {
		t.Fatalf("base ledger changed: %d states", base.Len())
	}
	if base.Current().Board.At(at(4, 4)) != game.CellEmpty {
		t.Fatal("base board changed")
	}
	if a.Current().Board.At(at(5, 5)) != game.CellEmpty || b.Current().Board.At(at(4, 4)) != game.CellEmpty {
		t.Fatal("sibling ledgers share state")
	}
	assertLockstep(t, base)
}

func TestEmptyLedgerPanics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, errs.ErrEmptyLedger) {
			t.Fatalf("expected empty ledger panic, got %v", r)
		}
	}()
	newTestEngine(true).Transition(&Ledger{index: map[string][]int{}}, game.Pass())
}

func TestCorruptIndexPanics(t *testing.T) {
	l := NewLedger(9)
	l.index[CanonicalKey(l.Current())] = []int{}
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, errs.ErrCorruptLedger) {
			t.Fatalf("expected corrupt ledger panic, got %v", r)
		}
	}()
	l.checkAndAdd(l.Current().Clone(), true)
}

func TestMovesAndReplay(t *testing.T) {
	e := newTestEngine(true)
	l := playAll(t, e, e.NewLedger(), p(1, 1), p(0, 1), p(0, 2), game.Pass(), p(0, 0))

	moves := l.Moves()
	if len(moves) != 5 {
		t.Fatalf("expected 5 moves, got %d", len(moves))
	}
	if moves[3].Color != "white" || !moves[3].Pass {
		t.Fatalf("unexpected fourth move %+v", moves[3])
	}

	replayed, err := e.Replay(moves)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if replayed.Len() != l.Len() {
		t.Fatalf("expected %d states, got %d", l.Len(), replayed.Len())
	}
	if CanonicalKey(replayed.Current()) != CanonicalKey(l.Current()) {
		t.Fatal("replay reached a different position")
	}
	if replayed.Current().BlackCapturedOpponent != 1 {
		t.Fatal("replay lost the capture count")
	}
}

func TestReplayRejectsIllegalHistory(t *testing.T) {
	e := newTestEngine(true)
	moves := []game.Move{
		game.NewMove(game.PlayerBlack, p(3, 3)),
		game.NewMove(game.PlayerWhite, p(3, 3)),
	}
	if _, err := e.Replay(moves); !errors.Is(err, errs.ErrCorruptHistory) {
		t.Fatalf("expected corrupt history, got %v", err)
	}
}

func TestStateWalksHistory(t *testing.T) {
	e := newTestEngine(true)
	l := playAll(t, e, e.NewLedger(), p(3, 3), game.Pass(), p(4, 4))

	if l.State(0).LastMove != (game.LastMove{}) || l.State(0).Board.At(at(3, 3)) != game.CellEmpty {
		t.Fatal("state 0 should be the empty initial position")
	}
	if l.State(1).LastMove != game.PlayedAt(at(3, 3)) || l.State(1).CurrentPlayer != game.PlayerWhite {
		t.Fatalf("unexpected state 1: %+v", l.State(1).LastMove)
	}
	if !l.State(2).LastMove.IsPass() || l.State(2).CurrentPlayer != game.PlayerBlack {
		t.Fatalf("state 2 should be white's pass: %+v", l.State(2).LastMove)
	}
	if l.State(l.Len()-1) != l.Current() {
		t.Fatal("last state should be the current one")
	}
	for i := 0; i < l.Len(); i++ {
		if !slices.Contains(l.Occurrences(l.State(i)), i) {
			t.Fatalf("state %d not found among its own occurrences", i)
		}
	}
}
