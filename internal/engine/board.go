// Package engine enforces the rules of Go with strict positional superko.
package engine

import "go_rules/internal/domain/game"

var directions = [4][2]int{
	{0, 1},
	{0, -1},
	{1, 0},
	{-1, 0},
}

// Group is a maximal set of connected same-coloured stones together
// with the distinct empty points touching it.
type Group struct {
	Stones    []game.Coordinates
	Liberties []game.Coordinates
}

// Neighbors returns the orthogonally adjacent in-bounds points of c.
func Neighbors(c game.Coordinates, boardSize int) []game.Coordinates {
	neighbors := make([]game.Coordinates, 0, 4)
	for _, d := range directions {
		n := game.Coordinates{Row: c.Row + d[0], Col: c.Col + d[1]}
		if game.InBounds(n, boardSize) {
			neighbors = append(neighbors, n)
		}
	}
	return neighbors
}

// FindGroup flood-fills the group containing c. An empty or
// out-of-bounds point yields an empty group.
func FindGroup(board game.Board, c game.Coordinates) Group {
	if !board.InBounds(c) {
		return Group{}
	}
	color := board.At(c)
	if color == game.CellEmpty {
		return Group{}
	}

	var group Group
	visited := map[game.Coordinates]bool{c: true}
	stack := []game.Coordinates{c}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		group.Stones = append(group.Stones, cur)

		for _, n := range Neighbors(cur, board.Size()) {
			if visited[n] {
				continue
			}
			switch board.At(n) {
			case game.CellEmpty:
				group.Liberties = append(group.Liberties, n)
				visited[n] = true
			case color:
				stack = append(stack, n)
				visited[n] = true
			}
		}
	}
	return group
}
