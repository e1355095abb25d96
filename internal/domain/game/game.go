package game

import "time"

type Game struct {
	ID         string     `json:"id" bson:"_id"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" bson:"finished_at,omitempty"`
	Status     string     `json:"status" bson:"status"`
	BoardSize  int        `json:"board_size" bson:"board_size"`
	FullKo     bool       `json:"full_ko" bson:"full_ko"`
	Moves      []Move     `json:"moves" bson:"moves"`
}

type CreateGameRequest struct {
	BoardSize int   `json:"board_size,omitempty"`
	FullKo    *bool `json:"full_ko,omitempty"`
}

type GameCreateResponse struct {
	ID string `json:"id"`
}

// @name GameStateResponse
type GameStateResponse struct {
	Game        Game       `json:"game"`
	State       *GameState `json:"state"`
	Status      string     `json:"status,omitempty"`
	Message     string     `json:"message,omitempty"`
	Repetitions []int      `json:"repetitions,omitempty"`
}
