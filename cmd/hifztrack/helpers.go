package main

import (
	"fmt"
	"time"

	"hifztrack/internal/api"
	"hifztrack/internal/config"
	"hifztrack/internal/session"
	"hifztrack/internal/store"
)

// app bundles the shared wiring behind every command: config, the backend
// client, and the local database.
type app struct {
	cfg    *config.Config
	client *api.Client
	store  *store.Store
}

func newApp() (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	localStore, err := store.Open(cfg.Storage.Directory)
	if err != nil {
		return nil, fmt.Errorf("store.Open(%s) > %w", cfg.Storage.Directory, err)
	}

	return &app{
		cfg:    cfg,
		client: api.NewClient(cfg.API.BaseURL),
		store:  localStore,
	}, nil
}

func (a *app) Close() {
	_ = a.client.Close()
	_ = a.store.Close()
}

func (a *app) newService() (*session.Service, error) {
	return a.newServiceWithFailureListener(nil)
}

func (a *app) newServiceWithFailureListener(onPermanentFailure func(item store.QueueItem, err error)) (*session.Service, error) {
	service, err := session.NewService(a.client, a.store, session.Config{
		RetryUnit:          time.Duration(a.cfg.Submission.RetryUnitMS) * time.Millisecond,
		ProbeInterval:      time.Duration(a.cfg.Submission.ProbeIntervalSeconds) * time.Second,
		OnPermanentFailure: onPermanentFailure,
	})
	if err != nil {
		return nil, fmt.Errorf("session.NewService > %w", err)
	}
	return service, nil
}
