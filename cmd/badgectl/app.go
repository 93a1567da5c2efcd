package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/NicolasHaas/badgeboard/pkg/api"
	"github.com/NicolasHaas/badgeboard/pkg/client"
	"github.com/NicolasHaas/badgeboard/pkg/crypto"
	"github.com/NicolasHaas/badgeboard/pkg/logging"
	"github.com/NicolasHaas/badgeboard/pkg/store"
)

const sessionKeyFile = "session.key"

// app bundles the storage, API client and coordinator one command uses.
type app struct {
	storage  *store.SQLiteStorage
	sessions *store.SessionStore
	prefs    *store.Preferences
	backend  *api.Client
	metrics  *client.Metrics
	coord    *client.Coordinator
}

// openStorage opens local state only, for commands that never reach the server.
func openStorage() (*app, error) {
	storage, err := store.OpenDir(cfg.Storage.Dir)
	if err != nil {
		return nil, err
	}

	opts := []store.SessionOption{store.WithSessionLogger(logging.Component("session"))}
	if cfg.Storage.Seal {
		sealer, err := openSealer(cfg.Storage.Dir)
		if err != nil {
			_ = storage.Close()
			return nil, err
		}
		opts = append(opts, store.WithSealer(sealer))
	}

	return &app{
		storage:  storage,
		sessions: store.NewSessionStore(storage, opts...),
		prefs:    store.NewPreferences(storage),
	}, nil
}

func openSealer(dir string) (*crypto.Sealer, error) {
	method := crypto.XChaCha20Poly1305
	key, err := crypto.LoadOrCreateKey(filepath.Join(dir, sessionKeyFile), method.KeySize())
	if err != nil {
		return nil, fmt.Errorf("session key: %w", err)
	}
	return crypto.NewSealer(method, key)
}

// openApp opens storage and builds a coordinator for page. It does not start it.
func openApp(page client.Page) (*app, error) {
	a, err := openStorage()
	if err != nil {
		return nil, err
	}

	a.metrics = client.NewMetrics()
	a.backend = api.NewClient(
		api.WithBaseURL(cfg.Server.BaseURL),
		api.WithTimeout(cfg.Server.Timeout),
		api.WithObserver(a.metrics.ObserveAPI),
		api.WithLogger(logging.Component("api")),
	)
	a.coord = client.NewCoordinator(a.backend, a.sessions,
		client.WithPage(page),
		client.WithMetrics(a.metrics),
		client.WithLogger(logging.Component("coordinator")),
	)
	a.coord.OnNotice = printNotice
	a.coord.OnRedirect = func(to client.Page) {
		slog.Warn("page requires an admin session", "redirected_to", to)
	}
	return a, nil
}

// startApp opens the app and hydrates the coordinator.
func startApp(ctx context.Context, page client.Page) (*app, error) {
	a, err := openApp(page)
	if err != nil {
		return nil, err
	}
	if err := a.coord.Start(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) Close() {
	if a.coord != nil {
		a.coord.Close()
	}
	if err := a.storage.Close(); err != nil {
		slog.Warn("close storage", "err", err)
	}
}

// printNotice shows confirmations on stdout. Failures surface as the
// command's error, so error notices only go to the log.
func printNotice(n client.Notice) {
	if n.Level == client.NoticeError {
		slog.Warn(n.Message)
		return
	}
	if !jsonOut {
		fmt.Println(n.Message)
	}
}
