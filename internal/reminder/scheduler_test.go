package reminder

import (
	"errors"
	"testing"
	"time"

	"github.com/example/revtrack/internal/spaced_repetition"
	"github.com/example/revtrack/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	data  models.AppData
	sched *spaced_repetition.Scheduler
}

func (f *fakeSource) Snapshot() models.AppData { return f.data.Clone() }
func (f *fakeSource) Scheduler() *spaced_repetition.Scheduler { return f.sched }

type recordingNotifier struct {
	reminded []int
	err      error
}

func (r *recordingNotifier) RequestPermission() (Permission, error) { return PermissionGranted, nil }

func (r *recordingNotifier) Remind(due int) error {
	r.reminded = append(r.reminded, due)
	return r.err
}

func newSource(t *testing.T, created ...time.Time) *fakeSource {
	t.Helper()
	sched := spaced_repetition.NewScheduler(spaced_repetition.DefaultPolicy())
	data := models.NewAppData()
	for i, c := range created {
		data.Revisions = append(data.Revisions, sched.NewItem(int64(i+1), "S", "T", []string{"a"}, c))
	}
	return &fakeSource{data: data, sched: sched}
}

func TestCheckNowCountsDueItems(t *testing.T) {
	src := newSource(t,
		time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),  // due 06-02, missed
		time.Date(2024, 6, 9, 9, 0, 0, 0, time.UTC),  // due 06-10, today
		time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC), // due 06-11
	)
	n := &recordingNotifier{}
	s := New(src, n, time.UTC)
	s.now = func() time.Time { return time.Date(2024, 6, 10, 7, 0, 0, 0, time.UTC) }

	due, err := s.CheckNow()
	require.NoError(t, err)
	assert.Equal(t, 2, due)
	assert.Equal(t, []int{2}, n.reminded)
}

func TestCheckNowNothingDue(t *testing.T) {
	src := newSource(t, time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC))
	n := &recordingNotifier{}
	s := New(src, n, time.UTC)
	s.now = func() time.Time { return time.Date(2024, 6, 10, 7, 0, 0, 0, time.UTC) }

	due, err := s.CheckNow()
	require.NoError(t, err)
	assert.Zero(t, due)
	assert.Empty(t, n.reminded)
}

func TestCheckNowNotifierError(t *testing.T) {
	src := newSource(t, time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	boom := errors.New("boom")
	s := New(src, &recordingNotifier{err: boom}, time.UTC)
	s.now = func() time.Time { return time.Date(2024, 6, 10, 7, 0, 0, 0, time.UTC) }

	due, err := s.CheckNow()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, due)
}

func TestReschedule(t *testing.T) {
	s := New(newSource(t), &recordingNotifier{}, time.UTC)
	assert.False(t, s.Scheduled())

	require.NoError(t, s.Reschedule("08:30"))
	assert.True(t, s.Scheduled())

	require.NoError(t, s.Reschedule("19:00"))
	assert.Len(t, s.scheduler.Jobs(), 1)

	require.NoError(t, s.Reschedule(""))
	assert.False(t, s.Scheduled())

	assert.Error(t, s.Reschedule("7pm"))
}

func TestLogNotifierPermission(t *testing.T) {
	denied := NewLogNotifier(false)
	assert.ErrorIs(t, denied.Remind(1), ErrPermissionDenied)
	p, err := denied.RequestPermission()
	require.NoError(t, err)
	assert.Equal(t, PermissionDenied, p)
	assert.ErrorIs(t, denied.Remind(1), ErrPermissionDenied)

	granted := NewLogNotifier(true)
	assert.Equal(t, PermissionDefault, granted.Permission())
	p, err = granted.RequestPermission()
	require.NoError(t, err)
	assert.Equal(t, PermissionGranted, p)
	assert.Equal(t, "granted", p.String())
	assert.NoError(t, granted.Remind(3))
}
