package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"go_rules/internal/adapters"
	"go_rules/internal/bootstrap"
	gameDelivery "go_rules/internal/delivery/game"
	ownMiddleware "go_rules/internal/middleware"
	repo "go_rules/internal/repository"
	gameuc "go_rules/internal/usecase/game"
)

type storage struct {
	store   gameuc.GameStore
	archive gameuc.GameArchive
	close   func(ctx context.Context)
}

func main() {
	logger := NewLogger()
	defer logger.Sync()

	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Errorw("Failed to setup configuration", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := initStorage(ctx, logger, cfg)
	defer st.close(context.Background())

	gameUC := gameuc.NewGameUseCase(*cfg, logger, st.store, st.archive)
	handler := gameDelivery.NewGameHandler(logger, gameUC)

	r := chi.NewRouter()
	if cfg.IsLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	handler.Routes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}
	go handleShutdown(srv, cancel, logger)

	logger.Infof("Server is running on port %s", cfg.ServerPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalw("Failed to start server", "error", err)
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

// initStorage keeps active games in Redis and finished ones in MongoDB,
// or everything in memory when STORAGE=memory.
func initStorage(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) storage {
	if cfg.Storage == bootstrap.StorageMemory {
		mem := repo.NewGameMapStorage()
		log.Info("using in-memory game storage")
		return storage{store: mem, archive: mem, close: func(context.Context) {}}
	}

	redisAdapter := adapters.NewAdapterRedis(cfg, log)
	if err := redisAdapter.Init(ctx); err != nil {
		log.Fatalw("Failed to initialize Redis", "error", err)
	}
	mongoAdapter := adapters.NewAdapterMongo(cfg, log)
	if err := mongoAdapter.Init(ctx); err != nil {
		log.Fatalw("Failed to initialize MongoDB", "error", err)
	}

	ttl := time.Duration(cfg.GameTTLHours) * time.Hour
	return storage{
		store:   repo.NewRedisGameStore(log, redisAdapter.GetClient(), ttl),
		archive: repo.NewMongoGameArchive(mongoAdapter, log),
		close: func(ctx context.Context) {
			_ = mongoAdapter.Close(ctx)
			_ = redisAdapter.Close(ctx)
		},
	}
}

func handleShutdown(srv *http.Server, cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("Failed to shut down server", "error", err)
	}
}
