// Package store owns the canonical revision data and persists it as a single
// JSON blob through a storage.KV.
//
// Every mutating call is applied to a copy, written wholesale, and only then
// becomes the in-memory state, so a failed write leaves the store unchanged.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/example/revtrack/internal/spaced_repetition"
	"github.com/example/revtrack/internal/storage"
	"github.com/example/revtrack/pkg/models"
	"github.com/google/uuid"
)

// DefaultKey is the storage key of the persisted blob
const DefaultKey = "revisionAppData"

var (
	ErrEmptySelection   = errors.New("no subtopics selected")
	ErrInvalidSelection = errors.New("selection is missing a subject, topic or subtopic")
	ErrUnknownSetting   = errors.New("unknown setting")
	ErrInvalidSetting   = errors.New("invalid setting value")
)

// RecoveryPolicy decides what happens to a blob that cannot be parsed
type RecoveryPolicy string

const (
	// RecoveryReset discards the corrupt blob
	RecoveryReset RecoveryPolicy = "reset"
	// RecoveryQuarantine copies the corrupt blob aside before resetting
	RecoveryQuarantine RecoveryPolicy = "quarantine"
)

// ParseRecoveryPolicy accepts "reset" or "quarantine"; empty means reset
func ParseRecoveryPolicy(s string) (RecoveryPolicy, error) {
	switch RecoveryPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", RecoveryReset:
		return RecoveryReset, nil
	case RecoveryQuarantine:
		return RecoveryQuarantine, nil
	}
	return "", fmt.Errorf("unknown recovery policy %q", s)
}

// Options configures a Store
type Options struct {
	Key      string
	Recovery RecoveryPolicy
	Policy   spaced_repetition.IntervalPolicy
}

// Store holds the AppData of the single local user
type Store struct {
	mu        sync.Mutex
	kv        storage.KV
	key       string
	recovery  RecoveryPolicy
	scheduler *spaced_repetition.Scheduler
	data      models.AppData
	lastID    int64
}

// New creates a store over kv. Call Load before use.
func New(kv storage.KV, opts Options) *Store {
	key := opts.Key
	if key == "" {
		key = DefaultKey
	}
	recovery := opts.Recovery
	if recovery == "" {
		recovery = RecoveryReset
	}
	policy := opts.Policy
	if policy.Len() == 0 {
		policy = spaced_repetition.DefaultPolicy()
	}
	return &Store{
		kv:        kv,
		key:       key,
		recovery:  recovery,
		scheduler: spaced_repetition.NewScheduler(policy),
		data:      models.NewAppData(),
	}
}

// Scheduler returns the scheduler the store applies to its items
func (s *Store) Scheduler() *spaced_repetition.Scheduler {
	return s.scheduler
}

// Key returns the storage key of the blob
func (s *Store) Key() string {
	return s.key
}

// Load reads the persisted blob and makes it the current state. A missing
// blob yields empty data. A blob that fails to parse or validate also
// yields empty data and no error, after applying the recovery policy.
// Only storage failures are returned.
func (s *Store) Load(ctx context.Context) (models.AppData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return models.NewAppData(), fmt.Errorf("failed to read %s: %w", s.key, err)
	}

	data := models.NewAppData()
	if ok {
		parsed, err := s.decode(raw)
		if err != nil {
			log.Printf("Discarding unreadable %s: %v", s.key, err)
			s.quarantine(ctx, raw)
		} else {
			data = parsed
		}
	}

	s.setData(data)
	return data.Clone(), nil
}

// Save validates and writes data, replacing the persisted blob and the
// in-memory state.
func (s *Store) Save(ctx context.Context, data models.AppData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data = data.Clone()
	if err := data.Validate(); err != nil {
		return err
	}
	if err := s.persist(ctx, data); err != nil {
		return err
	}
	s.setData(data)
	return nil
}

// Snapshot returns a deep copy of the current state
func (s *Store) Snapshot() models.AppData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

// AddItems merges selections by subject and topic into new items, one per
// distinct pair, and persists them. Pairs and subtopics keep the order in
// which they were first selected; a subtopic selected twice under the same
// pair is stored once.
func (s *Store) AddItems(ctx context.Context, selections []models.Selection, now time.Time) ([]models.RevisionItem, error) {
	if len(selections) == 0 {
		return nil, ErrEmptySelection
	}

	groups, err := groupSelections(selections)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.Clone()
	lastID := s.lastID
	created := make([]models.RevisionItem, 0, len(groups))
	for _, g := range groups {
		lastID = nextID(lastID, now)
		item := s.scheduler.NewItem(lastID, g.subject, g.topic, g.subtopics, now)
		next.Revisions = append(next.Revisions, item)
		created = append(created, item.Clone())
	}

	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}
	s.data = next
	s.lastID = lastID
	return created, nil
}

// UpdateItem applies mutate to the item with the given id and persists.
// It reports false, without error, when no such item exists. A mutation
// that leaves the data invalid is rejected and nothing is written.
func (s *Store) UpdateItem(ctx context.Context, id int64, mutate func(*models.RevisionItem)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.data.Revisions {
		if s.data.Revisions[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, nil
	}

	next := s.data.Clone()
	mutate(&next.Revisions[idx])
	if err := next.Validate(); err != nil {
		return false, err
	}
	if err := s.persist(ctx, next); err != nil {
		return false, err
	}
	s.data = next
	return true, nil
}

// MarkReviewed records a completed review of the item with the given id
func (s *Store) MarkReviewed(ctx context.Context, id int64, now time.Time) (bool, error) {
	return s.UpdateItem(ctx, id, func(item *models.RevisionItem) {
		s.scheduler.RecordReview(item, now)
	})
}

// Item returns a copy of the item with the given id
func (s *Store) Item(id int64) (models.RevisionItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.data.Revisions {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return models.RevisionItem{}, false
}

// SetSetting stores a recognized setting and persists. An empty value
// clears it.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	if key != models.SettingNotifyTime {
		return fmt.Errorf("%w: %q", ErrUnknownSetting, key)
	}
	if value != "" && !models.ValidNotifyTime(value) {
		return fmt.Errorf("%w: %s must be HH:MM, got %q", ErrInvalidSetting, key, value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.Clone()
	next.Settings.NotifyTime = value
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.data = next
	return nil
}

// Quarantined lists the keys of blobs set aside by RecoveryQuarantine.
// Stores whose backend cannot enumerate keys report none.
func (s *Store) Quarantined(ctx context.Context) ([]string, error) {
	lister, ok := s.kv.(storage.Lister)
	if !ok {
		return nil, nil
	}
	return lister.Keys(ctx, s.quarantinePrefix())
}

func (s *Store) decode(raw string) (models.AppData, error) {
	var data models.AppData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return models.AppData{}, fmt.Errorf("%w: %v", models.ErrMalformed, err)
	}
	if err := data.Validate(); err != nil {
		return models.AppData{}, err
	}
	return data, nil
}

func (s *Store) quarantine(ctx context.Context, raw string) {
	if s.recovery != RecoveryQuarantine {
		return
	}
	key := s.quarantinePrefix() + uuid.New().String()
	if err := s.kv.Set(ctx, key, raw); err != nil {
		log.Printf("Failed to quarantine %s: %v", s.key, err)
		return
	}
	log.Printf("Quarantined unreadable %s as %s", s.key, key)

	// the copy is safe, replace the original so it is quarantined only once
	if err := s.persist(ctx, models.NewAppData()); err != nil {
		log.Printf("Failed to reset %s: %v", s.key, err)
	}
}

func (s *Store) quarantinePrefix() string {
	return s.key + ".corrupt."
}

func (s *Store) persist(ctx context.Context, data models.AppData) error {
	blob, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.key, err)
	}
	if err := s.kv.Set(ctx, s.key, string(blob)); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.key, err)
	}
	return nil
}

func (s *Store) setData(data models.AppData) {
	s.data = data
	s.lastID = 0
	for _, r := range data.Revisions {
		if r.ID > s.lastID {
			s.lastID = r.ID
		}
	}
}

// nextID returns a millisecond timestamp id, bumped past last when the
// clock has not advanced.
func nextID(last int64, now time.Time) int64 {
	id := now.UnixMilli()
	if id <= last {
		id = last + 1
	}
	return id
}

type selectionGroup struct {
	subject   string
	topic     string
	subtopics []string
}

func groupSelections(selections []models.Selection) ([]*selectionGroup, error) {
	var groups []*selectionGroup
	byKey := make(map[[2]string]*selectionGroup)
	seen := make(map[[3]string]bool)

	for _, sel := range selections {
		if sel.Subject == "" || sel.Topic == "" || sel.Subtopic == "" {
			return nil, fmt.Errorf("%w: %+v", ErrInvalidSelection, sel)
		}
		key := [2]string{sel.Subject, sel.Topic}
		g, ok := byKey[key]
		if !ok {
			g = &selectionGroup{subject: sel.Subject, topic: sel.Topic}
			byKey[key] = g
			groups = append(groups, g)
		}
		subKey := [3]string{sel.Subject, sel.Topic, sel.Subtopic}
		if seen[subKey] {
			continue
		}
		seen[subKey] = true
		g.subtopics = append(g.subtopics, sel.Subtopic)
	}
	return groups, nil
}
