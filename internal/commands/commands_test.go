package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/revtrack/internal/reminder"
	"github.com/example/revtrack/internal/storage"
	"github.com/example/revtrack/internal/store"
	"github.com/example/revtrack/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newDispatcher(t *testing.T, notifier reminder.Notifier) (*Dispatcher, *store.Store) {
	t.Helper()
	s := store.New(storage.NewMemory(), store.Options{})
	_, err := s.Load(context.Background())
	require.NoError(t, err)
	return NewDispatcher(s, notifier, func() time.Time { return t0 }), s
}

func TestDispatchAddAndReview(t *testing.T) {
	ctx := context.Background()
	d, s := newDispatcher(t, nil)

	res, err := d.Dispatch(ctx, Command{
		Kind: AddRevision,
		Selections: []models.Selection{
			{Subject: "History", Topic: "Rome", Subtopic: "Republic"},
			{Subject: "History", Topic: "Rome", Subtopic: "Empire"},
			{Subject: "History", Topic: "Greece", Subtopic: "Athens"},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Created, 2)

	res, err = d.Dispatch(ctx, Command{Kind: MarkReviewed, ID: res.Created[0].ID})
	require.NoError(t, err)
	assert.True(t, res.Reviewed)
	require.NotNil(t, res.Item)
	assert.Equal(t, 1, res.Item.RevCount)
	assert.Equal(t, t0.AddDate(0, 0, 3), *res.Item.NextRevision)

	assert.Len(t, s.Snapshot().Revisions, 2)
}

func TestDispatchReviewUnknownID(t *testing.T) {
	d, _ := newDispatcher(t, nil)
	res, err := d.Dispatch(context.Background(), Command{Kind: MarkReviewed, ID: 99})
	require.NoError(t, err)
	assert.False(t, res.Reviewed)
	assert.Nil(t, res.Item)
}

func TestDispatchEmptySelection(t *testing.T) {
	d, _ := newDispatcher(t, nil)
	_, err := d.Dispatch(context.Background(), Command{Kind: AddRevision})
	assert.ErrorIs(t, err, store.ErrEmptySelection)
}

func TestDispatchSetNotifyTime(t *testing.T) {
	ctx := context.Background()
	d, s := newDispatcher(t, reminder.NewLogNotifier(true))

	var applied []string
	d.OnNotifyTime = func(notifyTime string) error {
		applied = append(applied, notifyTime)
		return nil
	}

	res, err := d.Dispatch(ctx, Command{Kind: SetNotifyTime, NotifyTime: "08:00"})
	require.NoError(t, err)
	assert.Equal(t, reminder.PermissionGranted, res.Permission)
	assert.Equal(t, "08:00", s.Snapshot().Settings.NotifyTime)

	_, err = d.Dispatch(ctx, Command{Kind: SetNotifyTime, NotifyTime: ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"08:00", ""}, applied)

	_, err = d.Dispatch(ctx, Command{Kind: SetNotifyTime, NotifyTime: "8"})
	assert.ErrorIs(t, err, store.ErrInvalidSetting)
}

func TestDispatchNotifyHookError(t *testing.T) {
	d, _ := newDispatcher(t, nil)
	boom := errors.New("boom")
	d.OnNotifyTime = func(string) error { return boom }

	_, err := d.Dispatch(context.Background(), Command{Kind: SetNotifyTime, NotifyTime: "10:00"})
	assert.ErrorIs(t, err, boom)
}

func TestDispatchUnknownKind(t *testing.T) {
	d, _ := newDispatcher(t, nil)
	_, err := d.Dispatch(context.Background(), Command{Kind: Kind(42)})
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.Equal(t, "Kind(42)", Kind(42).String())
}
