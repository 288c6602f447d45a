package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/example/revtrack/internal/database"
	"github.com/example/revtrack/pkg/models"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const economicsJSON = `{
  "subject": "Economics",
  "units": [
    {"unit": "Micro", "topics": [
      {"topic": "Demand", "subtopics": ["Elasticity", "Law of demand"]},
      {"topic": "Supply", "subtopics": ["Curve"]}
    ]}
  ]
}`

type testEnv struct {
	dataDir    string
	catalogDir string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	t.Setenv("REVTRACK_TIMEZONE", "UTC")
	t.Cleanup(viper.Reset)

	env := testEnv{dataDir: t.TempDir(), catalogDir: t.TempDir()}
	require.NoError(t, os.WriteFile(filepath.Join(env.catalogDir, "economics.json"), []byte(economicsJSON), 0644))
	return env
}

func (e testEnv) run(args ...string) (string, error) {
	viper.Reset()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--data-dir", e.dataDir, "--catalog-dir", e.catalogDir}, args...))
	err := root.Execute()
	return out.String(), err
}

func (e testEnv) items(t *testing.T) []models.RevisionItem {
	t.Helper()
	out, err := e.run("list", "--json")
	require.NoError(t, err)
	var items []models.RevisionItem
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	return items
}

func TestList_Empty(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "No topics added yet")

	out, err = env.run("stats")
	require.NoError(t, err)
	assert.Contains(t, out, "No data available")
}

func TestAddReviewList(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("add", "--subject", "economics", "--select", "Demand/Elasticity", "--select", "Supply")
	require.NoError(t, err)
	assert.Contains(t, out, "Demand (Economics) [Elasticity]")
	assert.Contains(t, out, "Supply (Economics) [Curve]")

	out, err = env.run("add", "--subject", "Physics", "--topic", "Optics", "--subtopic", "Lenses")
	require.NoError(t, err)
	assert.Contains(t, out, "Optics (Physics) [Lenses]")

	items := env.items(t)
	require.Len(t, items, 3)
	for _, item := range items {
		assert.Equal(t, 0, item.RevCount)
		require.NotNil(t, item.NextRevision)
	}

	out, err = env.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "Next revision on")
	assert.Contains(t, out, "Revision #1")

	id := strconv.FormatInt(items[0].ID, 10)
	out, err = env.run("review", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Next revision on")

	items = env.items(t)
	var reviewed models.RevisionItem
	for _, item := range items {
		if item.ID == items[0].ID {
			reviewed = item
		}
	}
	assert.Equal(t, 1, reviewed.RevCount)
	assert.Len(t, reviewed.History, 1)

	out, err = env.run("review", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "No revision with id 42")

	out, err = env.run("stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Pending: 3  Completed: 0")
}

func TestAdd_Errors(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("add", "--subject", "economics")
	assert.EqualError(t, err, "please select at least one subtopic to revise")

	_, err = env.run("add", "--subject", "economics", "--select", "Inflation")
	assert.Error(t, err)

	_, err = env.run("add", "--subject", "chemistry", "--select", "Acids")
	assert.Error(t, err)

	_, err = env.run("review", "abc")
	assert.EqualError(t, err, `invalid id "abc"`)
}

func TestSettingsNotifyTime(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "notify time: not set")

	out, err = env.run("settings", "notify-time", "07:30")
	require.NoError(t, err)
	assert.Contains(t, out, "Daily reminder set for 07:30 (notifications granted)")

	out, err = env.run("settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "notify time: 07:30")

	_, err = env.run("settings", "notify-time", "25:00")
	assert.Error(t, err)

	_, err = env.run("settings", "notify-time")
	assert.Error(t, err)

	out, err = env.run("settings", "notify-time", "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Daily reminder cleared")
}

func TestRemindOnce(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("add", "--subject", "economics", "--select", "Supply")
	require.NoError(t, err)

	out, err := env.run("remind", "--once")
	require.NoError(t, err)
	assert.Contains(t, out, "0 revisions due")
}

func TestRemind_InvalidReload(t *testing.T) {
	env := newTestEnv(t)

	for _, v := range []string{"0", "-1m"} {
		_, err := env.run("remind", "--reload", v)
		assert.ErrorContains(t, err, "--reload must be positive")
	}
}

func TestCatalogCommands(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("catalog", "list")
	require.NoError(t, err)
	assert.Equal(t, "Economics\n", out)

	out, err = env.run("catalog", "show", "economics")
	require.NoError(t, err)
	assert.Contains(t, out, "Demand: Elasticity, Law of demand")

	csvPath := filepath.Join(t.TempDir(), "topics.csv")
	csvData := "Subject,Unit,Topic,Subtopic\nHistory,Ancient,Rome,Republic\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csvData), 0644))

	out, err = env.run("import", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "history.json")

	out, err = env.run("catalog", "list")
	require.NoError(t, err)
	assert.Equal(t, "Economics\nHistory\n", out)
}

func TestQuarantine(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("REVTRACK_RECOVERY", "quarantine")

	db, err := database.Connect(database.Options{Driver: database.DriverSQLite, DataDir: env.dataDir})
	require.NoError(t, err)
	require.NoError(t, database.NewKVRepository(db).Set(context.Background(), "revisionAppData", "{not json"))
	require.NoError(t, db.Close())

	out, err := env.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "No topics added yet")

	out, err = env.run("quarantine")
	require.NoError(t, err)
	assert.Contains(t, out, "revisionAppData.corrupt.")
}
