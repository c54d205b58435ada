package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"taskdeck/internal/auth"
	"taskdeck/internal/config"
	"taskdeck/internal/logging"
	"taskdeck/internal/repository"
	"taskdeck/internal/storage"
)

const connectTimeout = 10 * time.Second

// app is everything a command needs, wired from the config file.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	session *auth.Local
	repo    *repository.Repository
	closers []func() error
}

func openApp(ctx context.Context, configPath, user string) (*app, error) {
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	zap.ReplaceGlobals(logger)

	a := &app{cfg: cfg, logger: logger}
	a.closers = append(a.closers, func() error {
		_ = logger.Sync()
		return nil
	})

	gateway, err := a.openGateway(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	if user == "" {
		user = cfg.User
	}
	a.session = auth.NewLocal()
	if err := a.session.SignIn(auth.User{UID: user}); err != nil {
		a.Close()
		return nil, fmt.Errorf("sign in: %w", err)
	}
	a.repo = repository.New(gateway, a.session, repository.WithLogger(logger))
	a.closers = append(a.closers, func() error {
		a.repo.Close()
		return nil
	})
	logger.Info("session started",
		zap.String("backend", cfg.Backend), zap.String("uid", user))
	return a, nil
}

func (a *app) openGateway(ctx context.Context) (repository.Gateway, error) {
	switch a.cfg.Backend {
	case config.BackendMongo:
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		store, err := storage.OpenMongo(ctx, a.cfg.Mongo.URI, a.cfg.Mongo.Database)
		if err != nil {
			return nil, fmt.Errorf("open mongo: %w", err)
		}
		a.closers = append(a.closers, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
			defer cancel()
			return store.Close(ctx)
		})
		return store, nil
	default:
		store, err := storage.OpenSQLite(a.cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	}
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
