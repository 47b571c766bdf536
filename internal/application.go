package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/xox-backend/internal/config"
	"github.com/rocketscienceinc/xox-backend/internal/metrics"
	"github.com/rocketscienceinc/xox-backend/internal/notifier"
	"github.com/rocketscienceinc/xox-backend/internal/repository"
	"github.com/rocketscienceinc/xox-backend/internal/repository/memory"
	"github.com/rocketscienceinc/xox-backend/internal/repository/postgres"
	"github.com/rocketscienceinc/xox-backend/internal/repository/storage"
	"github.com/rocketscienceinc/xox-backend/internal/usecase"
	"github.com/rocketscienceinc/xox-backend/transport/rest"
	"github.com/rocketscienceinc/xox-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	var redisStorage *redis.Client
	if conf.Storage == config.StorageRedis || conf.Notifier == config.NotifierRedis {
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return ErrAddrNotFound
		}

		var err error
		if redisStorage, err = storage.NewRedis(ctx, redisAddrString); err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()
	}

	sessions, users, closeStore, err := openStore(ctx, conf, redisStorage)
	if err != nil {
		return err
	}
	defer closeStore()

	appMetrics := metrics.New(prometheus.DefaultRegisterer)

	hub := websocket.NewHub(logger)

	var broadcaster notifier.Broadcaster = hub
	if conf.Notifier == config.NotifierRedis {
		broadcaster = notifier.NewRedisBroadcaster(redisStorage)
	}

	dispatcher := notifier.NewDispatcher(logger, broadcaster, appMetrics, notifier.Options{
		Workers:          conf.Dispatcher.Workers,
		QueueSize:        conf.Dispatcher.QueueSize,
		BroadcastTimeout: conf.Dispatcher.BroadcastTimeout,
	})

	sessionManager := usecase.NewSessionManager(logger, sessions, users, dispatcher, appMetrics, usecase.Options{
		BoardWidth:         conf.Board.Width,
		BoardHeight:        conf.Board.Height,
		DefaultMark:        conf.DefaultMark,
		MaxConflictRetries: conf.MaxConflictRetries,
		StoreTimeout:       conf.StoreTimeout,
	})

	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		dispatcher.Run(ctx)
	}()

	relayErrCh := make(chan error, 1)
	if conf.Notifier == config.NotifierRedis {
		go func() {
			if relayErr := hub.Relay(ctx, redisStorage); relayErr != nil {
				relayErrCh <- relayErr
			}
		}()
	}

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, logger, conf.HTTPPort, sessionManager); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		if wsErr := websocket.Start(ctx, conf.SocketPort, hub, sessionManager); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		err = fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		err = fmt.Errorf("WebSocket server error: %w", err)
	case err = <-relayErrCh:
		err = fmt.Errorf("redis relay error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	cancel()
	<-dispatcherDone

	return err
}

// openStore - session and user repositories of the configured driver.
func openStore(ctx context.Context, conf *config.Config, redisStorage *redis.Client) (
	repository.SessionRepository, repository.UserRepository, func(), error,
) {
	switch conf.Storage {
	case config.StorageRedis:
		return repository.NewSessionRepository(redisStorage), repository.NewUserRepository(redisStorage), func() {}, nil
	case config.StoragePostgres:
		pool, err := storage.NewPostgres(ctx, conf.Postgres.DSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("could not connect to postgres storage: %w", err)
		}

		if err = storage.InitPostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("could not init postgres storage: %w", err)
		}

		return postgres.NewSessionRepository(pool), postgres.NewUserRepository(pool), pool.Close, nil
	default:
		return memory.NewSessionRepository(), memory.NewUserRepository(), func() {}, nil
	}
}
