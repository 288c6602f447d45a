package analytics

import (
	"errors"
	"sort"
	"time"

	"github.com/example/revtrack/internal/spaced_repetition"
	"github.com/example/revtrack/pkg/models"
)

// ErrNoData is returned when there are no revisions to report on
var ErrNoData = errors.New("no data available")

// Overview counts items still scheduled against items that used every interval
type Overview struct {
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}

// DayCount is the number of reviews recorded on one calendar day
type DayCount struct {
	Day   time.Time `json:"day"` // midnight in the report location
	Count int       `json:"count"`
}

// Report is everything the analytics view shows
type Report struct {
	Overview Overview              `json:"overview"`
	Activity []DayCount            `json:"activity"`
	Upcoming []models.RevisionItem `json:"upcoming"`
	Missed   []models.RevisionItem `json:"missed"`
}

// Build computes the report for revisions as of today. Days are bucketed in
// today's location.
func Build(s *spaced_repetition.Scheduler, revisions []models.RevisionItem, today time.Time) (*Report, error) {
	if len(revisions) == 0 {
		return nil, ErrNoData
	}

	missed, upcoming := s.Partition(revisions, today)
	return &Report{
		Overview: Summarize(revisions),
		Activity: DailyActivity(revisions, today.Location()),
		Upcoming: upcoming,
		Missed:   missed,
	}, nil
}

// Summarize counts pending and completed items
func Summarize(revisions []models.RevisionItem) Overview {
	var o Overview
	for _, r := range revisions {
		if r.Completed() {
			o.Completed++
		} else {
			o.Pending++
		}
	}
	return o
}

// DailyActivity counts history entries per calendar day in loc, oldest first
func DailyActivity(revisions []models.RevisionItem, loc *time.Location) []DayCount {
	counts := make(map[time.Time]int)
	for _, r := range revisions {
		for _, h := range r.History {
			y, m, d := h.Date.In(loc).Date()
			counts[time.Date(y, m, d, 0, 0, 0, 0, loc)]++
		}
	}

	days := make([]DayCount, 0, len(counts))
	for day, n := range counts {
		days = append(days, DayCount{Day: day, Count: n})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day.Before(days[j].Day) })
	return days
}
