package game

import errs "go_rules/internal/errors"

type ActionKind uint8

const (
	ActionPlay ActionKind = iota
	ActionPass
)

// Action is a discrete request against the current position.
type Action struct {
	Kind ActionKind
	At   Coordinates
}

func Play(c Coordinates) Action {
	return Action{Kind: ActionPlay, At: c}
}

func Pass() Action {
	return Action{Kind: ActionPass}
}

func (a Action) String() string {
	if a.Kind == ActionPass {
		return "PASS"
	}
	return a.At.String()
}

// @name Move
type Move struct {
	Color string `json:"color" bson:"color"`
	Pass  bool   `json:"pass,omitempty" bson:"pass,omitempty"`
	Row   int    `json:"row" bson:"row"`
	Col   int    `json:"col" bson:"col"`
}

func NewMove(p Player, a Action) Move {
	return Move{
		Color: p.String(),
		Pass:  a.Kind == ActionPass,
		Row:   a.At.Row,
		Col:   a.At.Col,
	}
}

func (m Move) Action() Action {
	if m.Pass {
		return Pass()
	}
	return Play(Coordinates{Row: m.Row, Col: m.Col})
}

// @name MoveRequest
type MoveRequest struct {
	Pass bool `json:"pass,omitempty"`
	Row  *int `json:"row,omitempty"`
	Col  *int `json:"col,omitempty"`
}

func PlayRequest(c Coordinates) MoveRequest {
	return MoveRequest{Row: &c.Row, Col: &c.Col}
}

// Action converts the request. A play without both coordinates is
// rejected rather than defaulting to the corner.
func (r MoveRequest) Action() (Action, error) {
	if r.Pass {
		return Pass(), nil
	}
	if r.Row == nil || r.Col == nil {
		return Action{}, errs.ErrMissingCoords
	}
	return Play(Coordinates{Row: *r.Row, Col: *r.Col}), nil
}
