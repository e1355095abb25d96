package game

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Player uint8

const (
	PlayerBlack Player = iota
	PlayerWhite
)

func (p Player) Opponent() Player {
	if p == PlayerBlack {
		return PlayerWhite
	}
	return PlayerBlack
}

// Stone returns the cell state a stone of this player occupies.
func (p Player) Stone() CellState {
	if p == PlayerBlack {
		return CellBlack
	}
	return CellWhite
}

func (p Player) String() string {
	if p == PlayerBlack {
		return "black"
	}
	return "white"
}

func (p Player) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Player) UnmarshalText(text []byte) error {
	switch string(text) {
	case "black":
		*p = PlayerBlack
	case "white":
		*p = PlayerWhite
	default:
		return fmt.Errorf("unknown player %q", text)
	}
	return nil
}

type MoveKind uint8

const (
	MoveNone MoveKind = iota
	MovePlay
	MovePass
)

// LastMove is the move that produced a state: nothing for the initial
// position, a pass, or a stone played at At.
type LastMove struct {
	Kind MoveKind
	At   Coordinates
}

func PlayedAt(c Coordinates) LastMove {
	return LastMove{Kind: MovePlay, At: c}
}

func Passed() LastMove {
	return LastMove{Kind: MovePass}
}

func (m LastMove) IsPass() bool {
	return m.Kind == MovePass
}

var passJSON = []byte(`"PASS"`)

func (m LastMove) MarshalJSON() ([]byte, error) {
	switch m.Kind {
	case MovePass:
		return passJSON, nil
	case MovePlay:
		return json.Marshal(m.At)
	default:
		return []byte("null"), nil
	}
}

func (m *LastMove) UnmarshalJSON(data []byte) error {
	switch {
	case bytes.Equal(data, []byte("null")):
		*m = LastMove{}
	case bytes.Equal(data, passJSON):
		*m = Passed()
	default:
		var c Coordinates
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		*m = PlayedAt(c)
	}
	return nil
}

// GameState is one position of a game. CurrentPlayer names whose turn
// is next. States stored in a ledger are never mutated.
type GameState struct {
	Board                 Board    `json:"board"`
	CurrentPlayer         Player   `json:"current_player"`
	LastMove              LastMove `json:"last_move"`
	BlackCapturedOpponent int      `json:"black_captured_opponent"`
	WhiteCapturedOpponent int      `json:"white_captured_opponent"`
}

// NewGameState returns the empty-board position with black to move.
func NewGameState(boardSize int) *GameState {
	return &GameState{
		Board:         NewBoard(boardSize),
		CurrentPlayer: PlayerBlack,
	}
}

func (s *GameState) Clone() *GameState {
	clone := *s
	clone.Board = s.Board.Clone()
	return &clone
}

// Captured returns how many opponent stones p has removed so far.
func (s *GameState) Captured(p Player) int {
	if p == PlayerBlack {
		return s.BlackCapturedOpponent
	}
	return s.WhiteCapturedOpponent
}
