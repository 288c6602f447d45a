package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// SettingNotifyTime is the only recognized settings key
const SettingNotifyTime = "notifyTime"

var notifyTimePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ErrMalformed marks persisted data that does not satisfy the schema
var ErrMalformed = errors.New("malformed app data")

// Settings holds user preferences
type Settings struct {
	NotifyTime string `json:"notifyTime,omitempty"` // HH:MM, empty when unset
}

// AppData is the root persisted object
type AppData struct {
	Revisions []RevisionItem `json:"revisions"`
	Settings  Settings       `json:"settings"`
}

// NewAppData returns the empty state
func NewAppData() AppData {
	return AppData{Revisions: []RevisionItem{}}
}

// Clone returns a deep copy
func (a AppData) Clone() AppData {
	out := AppData{
		Revisions: make([]RevisionItem, len(a.Revisions)),
		Settings:  a.Settings,
	}
	for i, r := range a.Revisions {
		out.Revisions[i] = r.Clone()
	}
	return out
}

// UnmarshalJSON decodes the persisted layout. Blobs written by the browser
// tracker carry fractional ids (Date.now() + Math.random()); those are
// truncated to milliseconds and, where that collides with another id, moved
// past the highest id.
func (a *AppData) UnmarshalJSON(b []byte) error {
	type plain AppData
	if err := json.Unmarshal(b, (*plain)(a)); err != nil {
		return err
	}

	var raw struct {
		Revisions []struct {
			ID json.Number `json:"id"`
		} `json:"revisions"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	used := make(map[int64]bool, len(a.Revisions))
	var maxID int64
	fractional := make([]bool, len(a.Revisions))
	for i, r := range a.Revisions {
		if r.ID > maxID {
			maxID = r.ID
		}
		if _, err := raw.Revisions[i].ID.Int64(); err != nil {
			fractional[i] = true
			continue
		}
		used[r.ID] = true
	}
	for i := range a.Revisions {
		if !fractional[i] {
			continue
		}
		if used[a.Revisions[i].ID] {
			maxID++
			a.Revisions[i].ID = maxID
		}
		used[a.Revisions[i].ID] = true
	}
	return nil
}

// ValidNotifyTime reports whether s is a 24h HH:MM time of day
func ValidNotifyTime(s string) bool {
	return notifyTimePattern.MatchString(s)
}

// Validate checks the invariants of every item that hold under any interval
// policy, so data written under one policy still loads under another.
// Errors wrap ErrMalformed.
func (a AppData) Validate() error {
	if a.Revisions == nil {
		return fmt.Errorf("%w: missing revisions", ErrMalformed)
	}
	if a.Settings.NotifyTime != "" && !ValidNotifyTime(a.Settings.NotifyTime) {
		return fmt.Errorf("%w: invalid notify time %q", ErrMalformed, a.Settings.NotifyTime)
	}

	seen := make(map[int64]bool, len(a.Revisions))
	for i, r := range a.Revisions {
		if seen[r.ID] {
			return fmt.Errorf("%w: duplicate id %d", ErrMalformed, r.ID)
		}
		seen[r.ID] = true

		if len(r.Subtopics) == 0 {
			return fmt.Errorf("%w: revision %d has no subtopics", ErrMalformed, i)
		}
		if r.RevCount < 0 {
			return fmt.Errorf("%w: revision %d has negative revCount", ErrMalformed, i)
		}
		if len(r.History) != r.RevCount {
			return fmt.Errorf("%w: revision %d history length %d != revCount %d",
				ErrMalformed, i, len(r.History), r.RevCount)
		}
		for j, h := range r.History {
			if h.RevCount != j+1 {
				return fmt.Errorf("%w: revision %d history entry %d out of order", ErrMalformed, i, j)
			}
		}
		if r.NextRevision == nil && r.RevCount == 0 {
			return fmt.Errorf("%w: revision %d completed without a review", ErrMalformed, i)
		}
	}
	return nil
}
