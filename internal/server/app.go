// Package server initializes and runs the authentication server.
// It wires the group parameters, the user registry, the session store and
// the gRPC endpoint, and handles graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/zkpauth/internal/logging"
	"github.com/dmitrijs2005/zkpauth/internal/server/authn"
	"github.com/dmitrijs2005/zkpauth/internal/server/config"
	"github.com/dmitrijs2005/zkpauth/internal/server/sessions"
	"github.com/dmitrijs2005/zkpauth/internal/server/shared/db"
	"github.com/dmitrijs2005/zkpauth/internal/zkp"

	gs "github.com/dmitrijs2005/zkpauth/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	manager db.RepositoryManager
	store   *sessions.Store
	authn   *authn.Service
}

func NewApp(c *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	params, err := zkp.ParamsByName(c.ParamSet)
	if err != nil {
		return nil, fmt.Errorf("param set %q: %w", c.ParamSet, err)
	}

	// New validates the group; a server must refuse to start on bad parameters.
	engine, err := zkp.New(params)
	if err != nil {
		return nil, fmt.Errorf("zkp engine init error: %w", err)
	}

	var manager db.RepositoryManager
	if c.DatabaseDSN != "" {
		manager, err = db.NewPostgresRepositoryManager(c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
	} else {
		manager = db.NewInMemoryRepositoryManager()
	}

	store := sessions.NewStore(c.SessionTTL, logger)

	svc := authn.NewService(engine, manager.Users(), store, []byte(c.SecretKey), c.TokenValidityDuration)

	return &App{config: c, logger: logger, manager: manager, store: store, authn: svc}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.authn)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "param_set", app.config.ParamSet)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.store.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.manager.Close(); err != nil {
		app.logger.Error(ctx, "Error closing storage", "error", err.Error())
	}
}
