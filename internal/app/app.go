package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirecanvas-server/internal/config"
	"github.com/vovakirdan/wirecanvas-server/internal/core"
	"github.com/vovakirdan/wirecanvas-server/internal/discovery"
	"github.com/vovakirdan/wirecanvas-server/internal/store"
	"github.com/vovakirdan/wirecanvas-server/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/wirecanvas-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	cfg             *config.Config
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	journal         *store.Queue
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var (
		recorder core.Recorder
		queue    *store.Queue
	)
	if cfg.JournalPath != "" {
		st, err := sqlite.New(cfg.JournalPath)
		if err != nil {
			return nil, fmt.Errorf("init journal: %w", err)
		}
		queue = store.NewQueue(st, 0, logger)
		recorder = queue
		logger.Info().Str("journal_path", cfg.JournalPath).Msg("journal initialized")
	}

	hub := core.NewHub(logger, recorder)
	server := transporthttp.NewServer(hub, cfg, logger)

	return &App{
		cfg:             cfg,
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		journal:         queue,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go a.hub.Run(hubCtx)

	var advertiser *discovery.Advertiser
	if a.cfg.MDNSEnabled {
		adv, err := discovery.Advertise(a.cfg.MDNSInstance, a.cfg.Addr, a.log)
		if err != nil {
			a.log.Warn().Err(err).Msg("mdns advertising disabled")
		} else {
			advertiser = adv
		}
	}

	go func() {
		a.log.Info().Str("addr", a.cfg.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup(stopHub, advertiser)
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup(stopHub, advertiser)
			return err
		}

		a.cleanup(stopHub, advertiser)
		return <-serverErr
	}
}

// cleanup stops the hub, then flushes the journal once no room can record.
func (a *App) cleanup(stopHub context.CancelFunc, advertiser *discovery.Advertiser) {
	if err := advertiser.Shutdown(); err != nil {
		a.log.Warn().Err(err).Msg("failed to stop mdns")
	}

	stopHub()
	select {
	case <-a.hub.Done():
	case <-time.After(a.shutdownTimeout):
		a.log.Warn().Msg("hub did not stop in time")
	}

	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close journal")
		} else {
			a.log.Info().Msg("journal closed")
		}
	}
}
