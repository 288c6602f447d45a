package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduledItem(id int64) RevisionItem {
	next := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	return RevisionItem{
		ID:           id,
		Subject:      "Economics",
		Topic:        "Demand",
		Subtopics:    []string{"Elasticity"},
		NextRevision: &next,
		CreatedAt:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		History:      []HistoryEntry{},
	}
}

func TestValidate(t *testing.T) {
	completed := scheduledItem(3)
	completed.NextRevision = nil
	completed.RevCount = 2
	completed.History = []HistoryEntry{{RevCount: 1}, {RevCount: 2}}

	ok := AppData{Revisions: []RevisionItem{scheduledItem(1), completed}}
	require.NoError(t, ok.Validate())

	// a completed item stays valid whatever the current policy length
	longer := ok.Clone()
	longer.Revisions[1].RevCount = 5
	longer.Revisions[1].History = []HistoryEntry{{RevCount: 1}, {RevCount: 2}, {RevCount: 3}, {RevCount: 4}, {RevCount: 5}}
	longer.Revisions[0].RevCount = 7
	for k := 1; k <= 7; k++ {
		longer.Revisions[0].History = append(longer.Revisions[0].History, HistoryEntry{RevCount: k})
	}
	require.NoError(t, longer.Validate())

	tests := []struct {
		name   string
		mutate func(*AppData)
	}{
		{"nil revisions", func(a *AppData) { a.Revisions = nil }},
		{"duplicate id", func(a *AppData) { a.Revisions[1].ID = 1 }},
		{"no subtopics", func(a *AppData) { a.Revisions[0].Subtopics = nil }},
		{"negative count", func(a *AppData) { a.Revisions[0].RevCount = -1 }},
		{"history length", func(a *AppData) { a.Revisions[1].History = a.Revisions[1].History[:1] }},
		{"history order", func(a *AppData) { a.Revisions[1].History[0].RevCount = 2 }},
		{"completed too early", func(a *AppData) { a.Revisions[0].NextRevision = nil }},
		{"bad notify time", func(a *AppData) { a.Settings.NotifyTime = "9am" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := ok.Clone()
			tt.mutate(&data)
			assert.ErrorIs(t, data.Validate(), ErrMalformed)
		})
	}
}

func TestValidNotifyTime(t *testing.T) {
	for _, s := range []string{"00:00", "09:30", "23:59"} {
		assert.True(t, ValidNotifyTime(s), s)
	}
	for _, s := range []string{"", "24:00", "9:30", "12:60", "noon"} {
		assert.False(t, ValidNotifyTime(s), s)
	}
}

func TestAppDataJSONLayout(t *testing.T) {
	item := scheduledItem(1718000000000)
	item.NextRevision = nil
	data := AppData{Revisions: []RevisionItem{item}}

	out, err := json.Marshal(data)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"revisions": [{
			"id": 1718000000000,
			"subject": "Economics",
			"topic": "Demand",
			"subtopics": ["Elasticity"],
			"revCount": 0,
			"nextRevision": null,
			"createdAt": "2024-06-01T00:00:00Z",
			"history": []
		}],
		"settings": {}
	}`, string(out))
}

func TestCloneIsDeep(t *testing.T) {
	data := AppData{Revisions: []RevisionItem{scheduledItem(1)}, Settings: Settings{NotifyTime: "08:00"}}
	clone := data.Clone()

	clone.Revisions[0].Subtopics[0] = "x"
	*clone.Revisions[0].NextRevision = time.Time{}
	clone.Revisions[0].History = append(clone.Revisions[0].History, HistoryEntry{RevCount: 1})

	assert.Equal(t, "Elasticity", data.Revisions[0].Subtopics[0])
	assert.False(t, data.Revisions[0].NextRevision.IsZero())
	assert.Empty(t, data.Revisions[0].History)
	assert.Equal(t, "08:00", clone.Settings.NotifyTime)
}

func TestUnmarshalFractionalIDs(t *testing.T) {
	blob := `{"revisions":[` +
		`{"id":1718000000000.25,"subject":"Economics","topic":"Demand","subtopics":["Elasticity"],` +
		`"revCount":0,"nextRevision":"2024-06-11T10:00:00.000Z","createdAt":"2024-06-10T10:00:00.000Z","history":[]},` +
		`{"id":1718000000000.75,"subject":"Economics","topic":"Supply","subtopics":["Curve"],` +
		`"revCount":0,"nextRevision":"2024-06-11T10:00:00.000Z","createdAt":"2024-06-10T10:00:00.000Z","history":[]},` +
		`{"id":1718000000001,"subject":"History","topic":"Rome","subtopics":["Empire"],` +
		`"revCount":0,"nextRevision":"2024-06-11T10:00:00.000Z","createdAt":"2024-06-10T10:00:00.000Z","history":[]}` +
		`],"settings":{}}`

	var data AppData
	require.NoError(t, json.Unmarshal([]byte(blob), &data))
	require.Len(t, data.Revisions, 3)
	assert.Equal(t, int64(1718000000000), data.Revisions[0].ID)
	assert.Equal(t, int64(1718000000002), data.Revisions[1].ID)
	assert.Equal(t, int64(1718000000001), data.Revisions[2].ID)
	assert.Equal(t, "Supply", data.Revisions[1].Topic)
	require.NoError(t, data.Validate())
}

func TestUnmarshalRejectsBadID(t *testing.T) {
	var item RevisionItem
	assert.Error(t, json.Unmarshal([]byte(`{"id":"abc","subtopics":["x"]}`), &item))
	assert.Error(t, json.Unmarshal([]byte(`{"id":-1.5,"subtopics":["x"]}`), &item))
}
