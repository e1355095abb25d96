package engine

import (
	"fmt"

	"go_rules/internal/domain/game"
	errs "go_rules/internal/errors"
)

// ApplyCaptures removes every opponent group adjacent to the stone at c
// that has no liberties left and returns the number of stones removed.
func ApplyCaptures(board game.Board, c game.Coordinates) int {
	if !board.InBounds(c) {
		return 0
	}
	color := board.At(c)
	if color == game.CellEmpty {
		return 0
	}
	opponent := game.CellBlack
	if color == game.CellBlack {
		opponent = game.CellWhite
	}

	captured := 0
	for _, n := range Neighbors(c, board.Size()) {
		if board.At(n) != opponent {
			continue
		}
		group := FindGroup(board, n)
		if len(group.Liberties) > 0 {
			continue
		}
		for _, stone := range group.Stones {
			board.Set(stone, game.CellEmpty)
			captured++
		}
	}
	return captured
}

// PlaceStoneIgnoringRepetition plays a stone for player at c on state,
// which must be a working copy. Repetition of earlier positions is not
// checked here. On error the copy must be discarded.
func PlaceStoneIgnoringRepetition(state *game.GameState, c game.Coordinates, player game.Player) error {
	board := state.Board
	if !board.InBounds(c) {
		return fmt.Errorf("spot %s: %w", c, errs.ErrOutOfBounds)
	}
	if board.At(c) != game.CellEmpty {
		return fmt.Errorf("spot %s: %w", c, errs.ErrOccupied)
	}

	board.Set(c, player.Stone())
	captured := ApplyCaptures(board, c)

	if len(FindGroup(board, c).Liberties) == 0 {
		board.Set(c, game.CellEmpty)
		return fmt.Errorf("spot %s: %w", c, errs.ErrSuicide)
	}

	if player == game.PlayerBlack {
		state.BlackCapturedOpponent += captured
	} else {
		state.WhiteCapturedOpponent += captured
	}
	state.CurrentPlayer = player.Opponent()
	state.LastMove = game.PlayedAt(c)
	return nil
}
