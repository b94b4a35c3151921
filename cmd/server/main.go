// @title        TechNotes API
// @version      1.0
// @description  User and note management for the TechNotes repair shop.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/technotes/notes-api/internal/api"
	"github.com/technotes/notes-api/internal/api/middleware"
	"github.com/technotes/notes-api/internal/core/ports"
	"github.com/technotes/notes-api/internal/core/service"
	"github.com/technotes/notes-api/internal/infrastructure/db/memory"
	mongodb "github.com/technotes/notes-api/internal/infrastructure/db/mongo"
	"github.com/technotes/notes-api/internal/infrastructure/db/redis"
	"github.com/technotes/notes-api/internal/infrastructure/eventlog"
	"github.com/technotes/notes-api/internal/infrastructure/security"
	"github.com/technotes/notes-api/internal/pkg/config"
	"github.com/technotes/notes-api/pkg/logger"
)

type storage struct {
	users ports.UserRepository
	notes ports.NoteRepository
	tx    ports.Transactor

	client *mongo.Client
	db     *mongo.Database
}

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "notes-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to open storage")
	}

	var (
		rdb   *goredis.Client
		cache ports.UsernameCache
	)
	if cfg.Redis.Enabled {
		rdb, err = redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		cache = redis.NewUsernameCache(rdb, cfg.Redis.UsernameTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("username cache enabled")
	}

	logFile, err := eventlog.OpenFile(cfg.LogDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open error log")
	}
	sink := eventlog.NewSink(logFile, 0)
	sink.Start()

	users := service.NewUserService(store.users, store.notes, security.NewBcryptHasher(cfg.BcryptCost), store.tx, cache, log)
	notes := service.NewNoteService(store.notes, store.users, cache, log)

	e := api.NewRouter(api.Deps{
		Users:   users,
		Notes:   notes,
		Origins: middleware.NewOriginFilter(cfg.AllowedOrigins...),
		Logger:  log,
		Errors:  sink,
		Mongo:   store.db,
		Redis:   rdb,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Strs("origins", cfg.AllowedOrigins).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := sink.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error log flush")
	}
	_ = logFile.Close()
	if rdb != nil {
		_ = rdb.Close()
	}
	if store.client != nil {
		if err := store.client.Disconnect(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		mem := memory.NewStore()
		return &storage{users: mem.Users(), notes: mem.Notes(), tx: memory.Transactor{}}, nil
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Bool("transactions", cfg.Mongo.Transactions).Msg("connected to mongodb")

	return &storage{
		users:  mongodb.NewUserRepository(db),
		notes:  mongodb.NewNoteRepository(db),
		tx:     mongodb.NewTransactor(client, cfg.Mongo.Transactions),
		client: client,
		db:     db,
	}, nil
}
