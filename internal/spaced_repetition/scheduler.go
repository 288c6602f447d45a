package spaced_repetition

import (
	"fmt"
	"sort"
	"time"

	"github.com/example/revtrack/pkg/models"
)

// Status is the derived state of a revision item relative to a date
type Status int

const (
	// Upcoming items are due today or later
	StatusUpcoming Status = iota
	// Missed items were due before today
	StatusMissed
	// Completed items have used every interval
	StatusCompleted
)

var statusNames = [...]string{
	StatusUpcoming:  "upcoming",
	StatusMissed:    "missed",
	StatusCompleted: "completed",
}

// String returns the lower-case status name
func (s Status) String() string {
	if s >= StatusUpcoming && s <= StatusCompleted {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	if s < StatusUpcoming || s > StatusCompleted {
		return nil, fmt.Errorf("invalid status: %d", int(s))
	}
	return []byte(statusNames[s]), nil
}

// Scheduler applies an interval policy to revision items.
// All methods are pure given their arguments.
type Scheduler struct {
	Policy IntervalPolicy
}

// NewScheduler creates a scheduler with the given policy
func NewScheduler(policy IntervalPolicy) *Scheduler {
	return &Scheduler{Policy: policy}
}

// InitialDueDate returns the first due date for an item created at now
func (s *Scheduler) InitialDueDate(now time.Time) time.Time {
	gap, _ := s.Policy.Gap(0)
	return now.AddDate(0, 0, gap).UTC()
}

// NewItem builds a freshly scheduled item
func (s *Scheduler) NewItem(id int64, subject, topic string, subtopics []string, now time.Time) models.RevisionItem {
	next := s.InitialDueDate(now)
	return models.RevisionItem{
		ID:           id,
		Subject:      subject,
		Topic:        topic,
		Subtopics:    append([]string(nil), subtopics...),
		RevCount:     0,
		NextRevision: &next,
		CreatedAt:    now.UTC(),
		History:      []models.HistoryEntry{},
	}
}

// RecordReview applies one completed review to the item in place.
// Completed items are left untouched.
func (s *Scheduler) RecordReview(item *models.RevisionItem, now time.Time) {
	if item.Completed() {
		return
	}

	item.RevCount++
	item.History = append(item.History, models.HistoryEntry{
		Date:     now.UTC(),
		RevCount: item.RevCount,
	})

	if gap, ok := s.Policy.Gap(item.RevCount); ok {
		next := now.AddDate(0, 0, gap).UTC()
		item.NextRevision = &next
	} else {
		item.NextRevision = nil
	}
}

// ClassifyStatus derives the status of item on the day containing today.
// Dates are compared at midnight in today's location, so an item due
// today is upcoming.
func (s *Scheduler) ClassifyStatus(item models.RevisionItem, today time.Time) Status {
	if item.NextRevision == nil {
		return StatusCompleted
	}
	if midnight(item.NextRevision.In(today.Location())).Before(midnight(today)) {
		return StatusMissed
	}
	return StatusUpcoming
}

// IsDue reports whether a review is expected on or before today
func (s *Scheduler) IsDue(item models.RevisionItem, today time.Time) bool {
	if item.NextRevision == nil {
		return false
	}
	return !midnight(item.NextRevision.In(today.Location())).After(midnight(today))
}

// SortByDue returns a copy of items ordered by next revision date.
// Completed items sort last; ties keep their original order.
func SortByDue(items []models.RevisionItem) []models.RevisionItem {
	sorted := append([]models.RevisionItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].NextRevision, sorted[j].NextRevision
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return a.Before(*b)
	})
	return sorted
}

// Partition splits scheduled items into missed and upcoming lists, both
// ordered by due date. Completed items are dropped.
func (s *Scheduler) Partition(items []models.RevisionItem, today time.Time) (missed, upcoming []models.RevisionItem) {
	for _, item := range SortByDue(items) {
		switch s.ClassifyStatus(item, today) {
		case StatusMissed:
			missed = append(missed, item)
		case StatusUpcoming:
			upcoming = append(upcoming, item)
		}
	}
	return missed, upcoming
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
