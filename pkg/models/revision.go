package models

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// RevisionItem is one schedulable unit of study material
type RevisionItem struct {
	ID           int64          `json:"id"`
	Subject      string         `json:"subject"`
	Topic        string         `json:"topic"`
	Subtopics    []string       `json:"subtopics"`
	RevCount     int            `json:"revCount"`
	NextRevision *time.Time     `json:"nextRevision"` // nil once every interval has been used
	CreatedAt    time.Time      `json:"createdAt"`
	History      []HistoryEntry `json:"history"`
}

// HistoryEntry records a completed review
type HistoryEntry struct {
	Date     time.Time `json:"date"`
	RevCount int       `json:"revCount"`
}

// Selection is a single checked subtopic under a subject and topic
type Selection struct {
	Subject  string `json:"subject"`
	Topic    string `json:"topic"`
	Subtopic string `json:"subtopic"`
}

// Clone returns a deep copy of the item
func (r RevisionItem) Clone() RevisionItem {
	out := r
	out.Subtopics = append([]string(nil), r.Subtopics...)
	out.History = append([]HistoryEntry(nil), r.History...)
	if r.NextRevision != nil {
		next := *r.NextRevision
		out.NextRevision = &next
	}
	if out.Subtopics == nil {
		out.Subtopics = []string{}
	}
	if out.History == nil {
		out.History = []HistoryEntry{}
	}
	return out
}

// UnmarshalJSON accepts integer ids and the fractional ids of browser
// blobs, which are truncated to whole milliseconds
func (r *RevisionItem) UnmarshalJSON(b []byte) error {
	type plain RevisionItem
	aux := struct {
		*plain
		ID json.Number `json:"id"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	if id, err := aux.ID.Int64(); err == nil {
		r.ID = id
		return nil
	}
	f, err := aux.ID.Float64()
	if err != nil || f < 0 || f >= math.MaxInt64 {
		return fmt.Errorf("invalid revision id %q", aux.ID.String())
	}
	r.ID = int64(math.Floor(f))
	return nil
}

// Completed reports whether no further review is scheduled
func (r RevisionItem) Completed() bool {
	return r.NextRevision == nil
}
