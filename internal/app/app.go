package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/churl/internal/config"
	"github.com/samvad-hq/churl/internal/domain"
	"github.com/samvad-hq/churl/internal/logger"
	"github.com/samvad-hq/churl/internal/runner"
	"github.com/samvad-hq/churl/internal/storage"
	"github.com/samvad-hq/churl/pkg/httpclient"
	"github.com/samvad-hq/churl/pkg/publishers"
)

// App holds the wired runtime: request client, history store, publishers and runner.
type App struct {
	cfg    *config.Config
	client *httpclient.Client
	store  storage.Store
	fanout *publishers.Fanout
	runner *runner.Runner
	log    logger.Logger
}

// New builds the runtime from config. Publishers are optional; history is
// disabled unless a storage type is configured.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	opts := []httpclient.Option{httpclient.WithLogger(log)}
	if logger.S != nil {
		opts = append(opts, httpclient.WithTransportLogger(logger.S))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, httpclient.WithDefaultHeader("User-Agent", cfg.UserAgent))
	}
	client := httpclient.New(opts...)

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		TTL:             cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.DebugObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"ttl_seconds":              int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &App{
		cfg:    cfg,
		client: client,
		store:  store,
		fanout: fanout,
		runner: runner.New(client, store, fanout, cfg.AppName),
		log:    log,
	}, nil
}

func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if path == "" {
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()
	if len(enabled) == 0 {
		log.WarnObj("no enabled publishers", "publishers_file", path)
		return publishers.NewFanout(nil), nil
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Runner returns the request runner.
func (a *App) Runner() *runner.Runner { return a.runner }

// Client returns the shared request client.
func (a *App) Client() *httpclient.Client { return a.client }

// History returns up to limit recorded exchanges, newest first.
func (a *App) History(limit int) ([]domain.Exchange, error) {
	if a == nil || a.store == nil {
		return nil, nil
	}
	return a.store.Recent(limit)
}

// Close releases publishers and the history store.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	if err := a.fanout.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publishers: %w", err))
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	return errors.Join(errs...)
}
