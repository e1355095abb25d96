package game

import "fmt"

type CellState int

const (
	CellEmpty CellState = iota
	CellBlack
	CellWhite
)

type Coordinates struct {
	Row int `json:"row" bson:"row"`
	Col int `json:"col" bson:"col"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Board is indexed as Board[row][col].
type Board [][]CellState

func NewBoard(size int) Board {
	board := make(Board, size)
	for i := range board {
		board[i] = make([]CellState, size)
	}
	return board
}

func (b Board) Size() int {
	return len(b)
}

func (b Board) InBounds(c Coordinates) bool {
	return InBounds(c, b.Size())
}

func (b Board) At(c Coordinates) CellState {
	return b[c.Row][c.Col]
}

func (b Board) Set(c Coordinates, s CellState) {
	b[c.Row][c.Col] = s
}

func (b Board) Clone() Board {
	clone := make(Board, len(b))
	for i, row := range b {
		clone[i] = append([]CellState(nil), row...)
	}
	return clone
}

func InBounds(c Coordinates, boardSize int) bool {
	return 0 <= c.Row && c.Row < boardSize && 0 <= c.Col && c.Col < boardSize
}
