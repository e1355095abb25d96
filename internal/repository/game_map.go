package repo

import (
	"context"
	"slices"
	"sync"

	"go_rules/internal/domain/game"
	errs "go_rules/internal/errors"
)

// GameMapStorage is an in-process store and archive.
type GameMapStorage struct {
	mu       sync.RWMutex
	games    map[string]game.Game
	archived map[string]game.Game
}

func NewGameMapStorage() *GameMapStorage {
	return &GameMapStorage{
		games:    make(map[string]game.Game),
		archived: make(map[string]game.Game),
	}
}

func copyGame(g game.Game) game.Game {
	g.Moves = slices.Clone(g.Moves)
	return g
}

func (s *GameMapStorage) SaveGame(_ context.Context, gameData game.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[gameData.ID] = copyGame(gameData)
	return nil
}

func (s *GameMapStorage) GetGame(_ context.Context, id string) (game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found, ok := s.games[id]
	if !ok {
		return game.Game{}, errs.ErrGameNotFound
	}
	return copyGame(found), nil
}

func (s *GameMapStorage) DeleteGame(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
	return nil
}

func (s *GameMapStorage) ArchiveGame(_ context.Context, gameData game.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archived[gameData.ID] = copyGame(gameData)
	return nil
}

func (s *GameMapStorage) GetArchivedGame(_ context.Context, id string) (game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found, ok := s.archived[id]
	if !ok {
		return game.Game{}, errs.ErrGameNotFound
	}
	return copyGame(found), nil
}
