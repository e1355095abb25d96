package engine

import (
	"fmt"

	"go.uber.org/zap"

	"go_rules/internal/domain/game"
	errs "go_rules/internal/errors"
)

// Config fixes the rules of one game.
type Config struct {
	BoardSize int
	// FullKo rejects any repeated position, not only immediate recaptures.
	FullKo bool
}

// Engine applies actions to ledgers under one Config. It holds no game
// state itself, so one Engine may serve any number of ledgers.
type Engine struct {
	cfg Config
	log *zap.SugaredLogger
}

// New returns an engine that logs rejected moves to log at debug level.
func New(cfg Config, log *zap.SugaredLogger) *Engine {
	return &Engine{cfg: cfg, log: log}
}

// NewLedger starts a game on an empty board of the configured size.
func (e *Engine) NewLedger() *Ledger {
	return NewLedger(e.cfg.BoardSize)
}

// Transition applies action to the current state of ledger. ledger is
// never modified; Accepted and Ended carry a new one.
func (e *Engine) Transition(ledger *Ledger, action game.Action) Outcome {
	if ledger == nil || ledger.Len() == 0 {
		panic(errs.ErrEmptyLedger)
	}
	last := ledger.Current()

	switch action.Kind {
	case game.ActionPass:
		if last.LastMove.IsPass() {
			next := ledger.clone()
			next.removeLast()
			e.log.Debugw("game ended by two passes", "history", next.Len())
			return Ended{Ledger: next}
		}

		candidate := last.Clone()
		candidate.LastMove = game.Passed()
		candidate.CurrentPlayer = last.CurrentPlayer.Opponent()

		next := ledger.clone()
		status, repetitions := next.checkAndAdd(candidate, e.cfg.FullKo)
		if status != StatusOK {
			panic(fmt.Errorf("%w: unexpected status %s on pass", errs.ErrCorruptLedger, status))
		}
		return Accepted{Ledger: next, Repetitions: repetitions}

	case game.ActionPlay:
		candidate := last.Clone()
		if err := PlaceStoneIgnoringRepetition(candidate, action.At, last.CurrentPlayer); err != nil {
			e.log.Debugw("move rejected", "player", last.CurrentPlayer, "at", action.At, "error", err)
			return Invalid{Reason: err}
		}

		next := ledger.clone()
		status, repetitions := next.checkAndAdd(candidate, e.cfg.FullKo)
		if status != StatusOK {
			e.log.Debugw("move repeats an earlier position",
				"player", last.CurrentPlayer, "at", action.At, "status", status, "repetitions", repetitions)
			return Repeated{Kind: status, Repetitions: repetitions}
		}
		return Accepted{Ledger: next, Repetitions: repetitions}
	}

	return Invalid{Reason: fmt.Errorf("unknown action kind %d", action.Kind)}
}

// Replay rebuilds a ledger from a recorded sequence of accepted moves.
func (e *Engine) Replay(moves []game.Move) (*Ledger, error) {
	ledger := e.NewLedger()
	for i, move := range moves {
		outcome := e.Transition(ledger, move.Action())
		accepted, ok := outcome.(Accepted)
		if !ok {
			return nil, fmt.Errorf("move %d (%s) gave %s: %w", i+1, move.Action(), outcome.Status(), errs.ErrCorruptHistory)
		}
		ledger = accepted.Ledger
	}
	return ledger, nil
}
