package reminder

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/revtrack/internal/spaced_repetition"
	"github.com/example/revtrack/pkg/models"
	"github.com/go-co-op/gocron"
)

const jobTag = "daily-reminder"

// Source provides the revision data reminders are computed from
type Source interface {
	Snapshot() models.AppData
	Scheduler() *spaced_repetition.Scheduler
}

// Scheduler runs the daily reminder at the user's notify time
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	source    Source
	loc       *time.Location
	now       func() time.Time
}

// New creates a reminder scheduler in loc
func New(source Source, notifier Notifier, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		notifier:  notifier,
		source:    source,
		loc:       loc,
		now:       time.Now,
	}
}

// Start begins running scheduled reminders in the background
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled reminders
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Reschedule replaces the daily reminder with one at notifyTime (HH:MM).
// An empty notifyTime removes it.
func (s *Scheduler) Reschedule(notifyTime string) error {
	if err := s.scheduler.RemoveByTag(jobTag); err != nil && !errors.Is(err, gocron.ErrJobNotFoundWithTag) {
		return fmt.Errorf("failed to remove reminder: %w", err)
	}
	if notifyTime == "" {
		return nil
	}
	if !models.ValidNotifyTime(notifyTime) {
		return fmt.Errorf("invalid notify time %q", notifyTime)
	}

	_, err := s.scheduler.Every(1).Day().At(notifyTime).Tag(jobTag).Do(s.checkAndRemind)
	if err != nil {
		return fmt.Errorf("failed to schedule reminder: %w", err)
	}
	return nil
}

// Scheduled reports whether a daily reminder is registered
func (s *Scheduler) Scheduled() bool {
	for _, job := range s.scheduler.Jobs() {
		for _, tag := range job.Tags() {
			if tag == jobTag {
				return true
			}
		}
	}
	return false
}

// CheckNow counts the revisions due today or earlier and sends a reminder
// when there are any. It returns the number of due revisions.
func (s *Scheduler) CheckNow() (int, error) {
	data := s.source.Snapshot()
	sched := s.source.Scheduler()
	today := s.now().In(s.loc)

	due := 0
	for _, item := range data.Revisions {
		if sched.IsDue(item, today) {
			due++
		}
	}
	if due == 0 {
		return 0, nil
	}
	if err := s.notifier.Remind(due); err != nil {
		return due, err
	}
	return due, nil
}

func (s *Scheduler) checkAndRemind() {
	due, err := s.CheckNow()
	if err != nil {
		log.Printf("Error sending reminder for %d due revisions: %v", due, err)
		return
	}
	if due == 0 {
		log.Println("No revisions due, skipping reminder")
	}
}
