package main

import (
	"context"
	"fmt"
	"time"

	"github.com/example/revtrack/internal/commands"
	"github.com/example/revtrack/internal/config"
	"github.com/example/revtrack/internal/database"
	"github.com/example/revtrack/internal/reminder"
	"github.com/example/revtrack/internal/storage"
	"github.com/example/revtrack/internal/store"
	"github.com/jmoiron/sqlx"
)

// app wires configuration, storage and the dispatcher for one invocation
type app struct {
	cfg        config.Config
	db         *sqlx.DB
	store      *store.Store
	notifier   *reminder.LogNotifier
	reminders  *reminder.Scheduler
	dispatcher *commands.Dispatcher
	loc        *time.Location
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, loc: loc}

	var kv storage.KV
	if cfg.Storage.Driver == "memory" {
		kv = storage.NewMemory()
	} else {
		a.db, err = database.Connect(database.Options{
			Driver:  cfg.Storage.Driver,
			DSN:     cfg.Storage.DSN,
			DataDir: cfg.Storage.DataDir,
		})
		if err != nil {
			return nil, err
		}
		kv = database.NewKVRepository(a.db)
	}

	a.store = store.New(kv, store.Options{
		Key:      cfg.Storage.Key,
		Recovery: cfg.RecoveryPolicy(),
		Policy:   policy,
	})
	if _, err := a.store.Load(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load revisions: %w", err)
	}

	a.notifier = reminder.NewLogNotifier(cfg.Reminder.AllowNotifications)
	a.reminders = reminder.New(a.store, a.notifier, loc)
	a.dispatcher = commands.NewDispatcher(a.store, a.notifier, time.Now)
	if cfg.Reminder.Enabled {
		a.dispatcher.OnNotifyTime = a.reminders.Reschedule
	}
	return a, nil
}

func (a *app) today() time.Time {
	return time.Now().In(a.loc)
}

func (a *app) Close() error {
	if a.reminders != nil {
		a.reminders.Stop()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
