package errors

import "errors"

var (
	ErrOutOfBounds    = errors.New("spot is out of bounds")
	ErrOccupied       = errors.New("spot is occupied")
	ErrSuicide        = errors.New("suicide is not allowed")
	ErrGameNotFound   = errors.New("game not found")
	ErrGameFinished   = errors.New("game is already finished")
	ErrCreateGame     = errors.New("create game failed")
	ErrCorruptHistory = errors.New("stored move history does not replay")
	ErrMissingCoords  = errors.New("row and col are required")

	// invariant violations, raised as panics
	ErrEmptyLedger   = errors.New("empty states record")
	ErrCorruptLedger = errors.New("invalid game state")
)
