package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"go_rules/internal/adapters"
	"go_rules/internal/domain/game"
	errs "go_rules/internal/errors"
)

const gamesCollection = "games"

// MongoGameArchive stores finished games.
type MongoGameArchive struct {
	adapter *adapters.AdapterMongo
	log     *zap.SugaredLogger
}

func NewMongoGameArchive(adapter *adapters.AdapterMongo, log *zap.SugaredLogger) *MongoGameArchive {
	return &MongoGameArchive{adapter: adapter, log: log}
}

func (m *MongoGameArchive) ArchiveGame(ctx context.Context, gameData game.Game) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := m.adapter.Database.Collection(gamesCollection)
	filter := bson.M{"_id": gameData.ID}
	opts := options.Replace().SetUpsert(true)

	if _, err := collection.ReplaceOne(ctx, filter, gameData, opts); err != nil {
		m.log.Errorf("failed to archive game %s: %v", gameData.ID, err)
		return err
	}

	m.log.Infof("game archived: %s", gameData.ID)
	return nil
}

func (m *MongoGameArchive) GetArchivedGame(ctx context.Context, id string) (game.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := m.adapter.Database.Collection(gamesCollection)

	var found game.Game
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&found)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return game.Game{}, errs.ErrGameNotFound
	} else if err != nil {
		m.log.Error(err)
		return game.Game{}, err
	}
	return found, nil
}
