package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"go_rules/internal/domain/game"
	errs "go_rules/internal/errors"
)

const gameKeyPrefix = "game:"

// RedisGameStore keeps games that are still being played.
type RedisGameStore struct {
	log   *zap.SugaredLogger
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisGameStore(log *zap.SugaredLogger, redis *redis.Client, ttl time.Duration) *RedisGameStore {
	return &RedisGameStore{
		log:   log,
		redis: redis,
		ttl:   ttl,
	}
}

func gameKey(id string) string {
	return gameKeyPrefix + id
}

func (g *RedisGameStore) SaveGame(ctx context.Context, gameData game.Game) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	raw, err := json.Marshal(gameData)
	if err != nil {
		return fmt.Errorf("marshal game %s: %w", gameData.ID, err)
	}
	if err := g.redis.Set(ctx, gameKey(gameData.ID), raw, g.ttl).Err(); err != nil {
		g.log.Errorf("failed to save game %s to redis: %v", gameData.ID, err)
		return err
	}
	return nil
}

func (g *RedisGameStore) GetGame(ctx context.Context, id string) (game.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	raw, err := g.redis.Get(ctx, gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return game.Game{}, errs.ErrGameNotFound
	} else if err != nil {
		g.log.Errorf("failed to load game %s from redis: %v", id, err)
		return game.Game{}, err
	}

	var found game.Game
	if err := json.Unmarshal(raw, &found); err != nil {
		return game.Game{}, fmt.Errorf("decode game %s: %w", id, err)
	}
	return found, nil
}

func (g *RedisGameStore) DeleteGame(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return g.redis.Del(ctx, gameKey(id)).Err()
}
