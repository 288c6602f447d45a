// Package commands turns user actions into store operations.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/revtrack/internal/reminder"
	"github.com/example/revtrack/pkg/models"
)

// ErrUnknownCommand is returned for a Kind the dispatcher does not handle
var ErrUnknownCommand = errors.New("unknown command")

// Kind identifies a user action
type Kind int

const (
	AddRevision Kind = iota + 1
	MarkReviewed
	SetNotifyTime
)

func (k Kind) String() string {
	switch k {
	case AddRevision:
		return "add-revision"
	case MarkReviewed:
		return "mark-reviewed"
	case SetNotifyTime:
		return "set-notify-time"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Command is a user action and its arguments. Only the fields relevant to
// Kind are read.
type Command struct {
	Kind       Kind
	Selections []models.Selection // AddRevision
	ID         int64              // MarkReviewed
	NotifyTime string             // SetNotifyTime, "" clears
}

// Result reports what a command changed
type Result struct {
	Created    []models.RevisionItem // AddRevision
	Reviewed   bool                  // MarkReviewed: false when the id was not found
	Item       *models.RevisionItem  // MarkReviewed: the item after review
	Permission reminder.Permission   // SetNotifyTime
}

// Store is the subset of store.Store the dispatcher mutates
type Store interface {
	AddItems(ctx context.Context, selections []models.Selection, now time.Time) ([]models.RevisionItem, error)
	MarkReviewed(ctx context.Context, id int64, now time.Time) (bool, error)
	Item(id int64) (models.RevisionItem, bool)
	SetSetting(ctx context.Context, key, value string) error
}

// Dispatcher routes commands to the store
type Dispatcher struct {
	store    Store
	notifier reminder.Notifier
	now      func() time.Time

	// OnNotifyTime, when set, runs after the notify time is saved
	OnNotifyTime func(notifyTime string) error
}

// NewDispatcher creates a dispatcher. notifier may be nil.
func NewDispatcher(store Store, notifier reminder.Notifier, now func() time.Time) *Dispatcher {
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{store: store, notifier: notifier, now: now}
}

// Dispatch executes cmd
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (*Result, error) {
	switch cmd.Kind {
	case AddRevision:
		created, err := d.store.AddItems(ctx, cmd.Selections, d.now())
		if err != nil {
			return nil, err
		}
		return &Result{Created: created}, nil

	case MarkReviewed:
		ok, err := d.store.MarkReviewed(ctx, cmd.ID, d.now())
		if err != nil {
			return nil, err
		}
		res := &Result{Reviewed: ok}
		if ok {
			if item, found := d.store.Item(cmd.ID); found {
				res.Item = &item
			}
		}
		return res, nil

	case SetNotifyTime:
		return d.setNotifyTime(ctx, cmd.NotifyTime)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownCommand, cmd.Kind)
}

func (d *Dispatcher) setNotifyTime(ctx context.Context, notifyTime string) (*Result, error) {
	if err := d.store.SetSetting(ctx, models.SettingNotifyTime, notifyTime); err != nil {
		return nil, err
	}

	res := &Result{}
	if notifyTime != "" && d.notifier != nil {
		p, err := d.notifier.RequestPermission()
		if err != nil {
			log.Printf("Failed to request notification permission: %v", err)
		}
		res.Permission = p
	}
	if d.OnNotifyTime != nil {
		if err := d.OnNotifyTime(notifyTime); err != nil {
			return res, fmt.Errorf("failed to apply notify time: %w", err)
		}
	}
	return res, nil
}
