package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go_rules/internal/bootstrap"
	"go_rules/internal/domain/game"
	"go_rules/internal/engine"
	errs "go_rules/internal/errors"
	"go_rules/internal/statuses"
)

type GameStore interface {
	SaveGame(ctx context.Context, gameData game.Game) error
	GetGame(ctx context.Context, id string) (game.Game, error)
	DeleteGame(ctx context.Context, id string) error
}

type GameArchive interface {
	ArchiveGame(ctx context.Context, gameData game.Game) error
	GetArchivedGame(ctx context.Context, id string) (game.Game, error)
}

const defaultSessionCacheSize = 1024

// session pairs a stored game with its rebuilt ledger.
type session struct {
	engine *engine.Engine
	ledger *engine.Ledger
	used   uint64
}

type gameLock struct {
	mu   sync.Mutex
	refs int
}

type PlayResult struct {
	Outcome engine.Outcome
	Game    game.Game
	State   *game.GameState
}

type GameUseCase struct {
	cfg     bootstrap.Config
	log     *zap.SugaredLogger
	store   GameStore
	archive GameArchive

	// mu guards the maps below; a game is written only under its own lock
	mu          sync.Mutex
	locks       map[string]*gameLock
	sessions    map[string]*session
	maxSessions int
	clock       uint64
}

func NewGameUseCase(cfg bootstrap.Config, log *zap.SugaredLogger, store GameStore, archive GameArchive) *GameUseCase {
	maxSessions := cfg.SessionCacheSize
	if maxSessions < 1 {
		maxSessions = defaultSessionCacheSize
	}
	return &GameUseCase{
		cfg:         cfg,
		log:         log,
		store:       store,
		archive:     archive,
		locks:       make(map[string]*gameLock),
		sessions:    make(map[string]*session),
		maxSessions: maxSessions,
	}
}

func (g *GameUseCase) newEngine(gameData game.Game) *engine.Engine {
	return engine.New(engine.Config{BoardSize: gameData.BoardSize, FullKo: gameData.FullKo}, g.log)
}

// lockGame serializes writers of one game and returns the unlock func.
func (g *GameUseCase) lockGame(id string) func() {
	g.mu.Lock()
	l, ok := g.locks[id]
	if !ok {
		l = &gameLock{}
		g.locks[id] = l
	}
	l.refs++
	g.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		g.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(g.locks, id)
		}
		g.mu.Unlock()
	}
}

func (g *GameUseCase) cachedSession(id string) (*session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[id]
	if ok {
		g.clock++
		s.used = g.clock
	}
	return s, ok
}

// cacheSession stores s, evicting the least recently used session when
// the cache is full. Evicted ledgers are rebuilt from the store on demand.
func (g *GameUseCase) cacheSession(id string, s *session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clock++
	s.used = g.clock
	g.sessions[id] = s

	for len(g.sessions) > g.maxSessions {
		var oldestID string
		var oldest uint64
		for sid, cached := range g.sessions {
			if oldestID == "" || cached.used < oldest {
				oldestID, oldest = sid, cached.used
			}
		}
		delete(g.sessions, oldestID)
		g.log.Debugw("session evicted", "id", oldestID)
	}
}

func (g *GameUseCase) dropSession(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.sessions, id)
}

func (g *GameUseCase) CreateGame(ctx context.Context, req game.CreateGameRequest) (game.Game, error) {
	boardSize := g.cfg.BoardSize
	if req.BoardSize != 0 {
		if !bootstrap.ValidBoardSize(req.BoardSize) {
			return game.Game{}, fmt.Errorf("board size %d: %w", req.BoardSize, errs.ErrCreateGame)
		}
		boardSize = req.BoardSize
	}
	fullKo := g.cfg.FullKo
	if req.FullKo != nil {
		fullKo = *req.FullKo
	}

	newGame := game.Game{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		Status:    statuses.StatusActive,
		BoardSize: boardSize,
		FullKo:    fullKo,
		Moves:     []game.Move{},
	}

	if err := g.store.SaveGame(ctx, newGame); err != nil {
		g.log.Errorf("failed to create game: %v", err)
		return game.Game{}, errs.ErrCreateGame
	}
	e := g.newEngine(newGame)
	g.cacheSession(newGame.ID, &session{engine: e, ledger: e.NewLedger()})

	g.log.Infow("game created", "id", newGame.ID, "board_size", boardSize, "full_ko", fullKo)
	return newGame, nil
}

// load returns the stored game and its session, rebuilding the ledger
// from the recorded moves when it is not cached. Caller holds the game lock.
func (g *GameUseCase) load(ctx context.Context, id string) (game.Game, *session, error) {
	gameData, err := g.store.GetGame(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrGameNotFound) {
			// expired or removed behind our back
			g.dropSession(id)
		}
		return game.Game{}, nil, err
	}
	if s, ok := g.cachedSession(id); ok && s.ledger.Len() == len(gameData.Moves)+1 {
		return gameData, s, nil
	}

	e := g.newEngine(gameData)
	ledger, err := e.Replay(gameData.Moves)
	if err != nil {
		g.log.Errorw("stored game does not replay", "id", id, "error", err)
		return game.Game{}, nil, err
	}
	s := &session{engine: e, ledger: ledger}
	g.cacheSession(id, s)
	return gameData, s, nil
}

// Play submits one action for the player to move in game id.
func (g *GameUseCase) Play(ctx context.Context, id string, action game.Action) (PlayResult, error) {
	unlock := g.lockGame(id)
	defer unlock()

	gameData, s, err := g.load(ctx, id)
	if errors.Is(err, errs.ErrGameNotFound) {
		if _, archErr := g.archive.GetArchivedGame(ctx, id); archErr == nil {
			return PlayResult{}, errs.ErrGameFinished
		}
		return PlayResult{}, err
	} else if err != nil {
		return PlayResult{}, err
	}
	if gameData.Status == statuses.StatusCompleted {
		return PlayResult{}, errs.ErrGameFinished
	}

	mover := s.ledger.Current().CurrentPlayer
	outcome := s.engine.Transition(s.ledger, action)

	switch o := outcome.(type) {
	case engine.Accepted:
		gameData.Moves = append(gameData.Moves, game.NewMove(mover, action))
		if err := g.store.SaveGame(ctx, gameData); err != nil {
			return PlayResult{}, err
		}
		s.ledger = o.Ledger
		g.log.Infow("move accepted", "id", id, "player", mover, "action", action.String(),
			"history", o.Ledger.Len(), "captured", o.Ledger.Current().Captured(mover))

	case engine.Ended:
		now := time.Now()
		gameData.Moves = o.Ledger.Moves()
		gameData.Status = statuses.StatusCompleted
		gameData.FinishedAt = &now
		if err := g.archive.ArchiveGame(ctx, gameData); err != nil {
			return PlayResult{}, err
		}
		// a copy left behind by a failed delete must still read as finished
		if err := g.store.SaveGame(ctx, gameData); err != nil {
			return PlayResult{}, err
		}
		if err := g.store.DeleteGame(ctx, id); err != nil {
			g.log.Warnf("failed to drop finished game %s from active store: %v", id, err)
		}
		g.dropSession(id)
		s.ledger = o.Ledger
		g.log.Infow("game ended", "id", id, "moves", len(gameData.Moves))

	default:
		g.log.Infow("move rejected", "id", id, "player", mover, "action", action.String(),
			"status", outcome.Status(), "message", engine.Describe(outcome))
	}

	return PlayResult{Outcome: outcome, Game: gameData, State: s.ledger.Current()}, nil
}

// GetGame returns a game and its current position, looking in the
// archive when the game is no longer active.
func (g *GameUseCase) GetGame(ctx context.Context, id string) (game.Game, *game.GameState, error) {
	unlock := g.lockGame(id)
	defer unlock()

	gameData, s, err := g.load(ctx, id)
	if err == nil {
		return gameData, s.ledger.Current(), nil
	}
	if !errors.Is(err, errs.ErrGameNotFound) {
		return game.Game{}, nil, err
	}

	archived, err := g.archive.GetArchivedGame(ctx, id)
	if err != nil {
		return game.Game{}, nil, err
	}
	ledger, err := g.newEngine(archived).Replay(archived.Moves)
	if err != nil {
		return game.Game{}, nil, err
	}
	return archived, ledger.Current(), nil
}
