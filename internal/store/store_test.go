package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardninja/cardsync/internal/model"
)

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card_sources.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"cards": [
			{"id": "visa-x", "name": "Visa X", "issuer": "BigBank", "url": "https://bigbank.example/visa-x", "color": "#123456"},
			{"id": "amex-y", "name": "Amex Y", "issuer": "OtherBank", "url": "https://otherbank.example/amex-y", "color": "#654321"}
		]
	}`), 0o644))

	sources, err := LoadCatalog(path)

	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "visa-x", sources[0].ID)
	assert.Equal(t, "OtherBank", sources[1].Issuer)
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadCatalogBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card_sources.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"cards": [`), 0o644))

	_, err := LoadCatalog(path)
	assert.Error(t, err)
}

func TestLoadDatasetMissingFile(t *testing.T) {
	ds := LoadDataset(filepath.Join(t.TempDir(), "cards.json"))

	require.NotNil(t, ds)
	assert.Empty(t, ds.Cards)
	assert.True(t, ds.LastUpdated.IsZero())
}

func TestLoadDatasetCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"cards": [{"id":`), 0o644))

	ds := LoadDataset(path)

	require.NotNil(t, ds)
	assert.Empty(t, ds.Cards)
}

func TestSaveDatasetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	ds := &model.Dataset{
		LastUpdated: now,
		Cards: []model.CardRecord{
			{
				ID:          "visa-x",
				Name:        "Visa X",
				Issuer:      "BigBank",
				Categories:  model.BaseCategories(),
				RewardType:  "cashback",
				LastUpdated: now,
			},
		},
	}

	require.NoError(t, SaveDataset(path, ds))

	// No temp file left behind.
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	got := LoadDataset(path)
	require.Len(t, got.Cards, 1)
	assert.Equal(t, ds.Cards[0], got.Cards[0])
	assert.True(t, got.LastUpdated.Equal(now))
}

func TestSaveDatasetOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")

	require.NoError(t, SaveDataset(path, &model.Dataset{Cards: []model.CardRecord{{ID: "a"}, {ID: "b"}}}))
	require.NoError(t, SaveDataset(path, &model.Dataset{Cards: []model.CardRecord{{ID: "a"}}}))

	got := LoadDataset(path)
	require.Len(t, got.Cards, 1)
	assert.Equal(t, "a", got.Cards[0].ID)
}

func TestAppendRunLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "update_log.txt")
	entry := RunEntry{
		Timestamp: time.Date(2026, 8, 30, 14, 30, 0, 0, time.UTC),
		Provider:  "gemini",
		Model:     "gemini-2.0-flash-exp",
		Updated: []model.CardSource{
			{ID: "visa-x", Name: "Visa X", Issuer: "BigBank"},
		},
		Failed: []model.CardSource{
			{ID: "amex-y", Name: "Amex Y", Issuer: "OtherBank"},
		},
	}

	require.NoError(t, AppendRunLog(path, entry))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "Update: 2026-08-30 14:30:00")
	assert.Contains(t, content, "Provider: gemini / Model: gemini-2.0-flash-exp")
	assert.Contains(t, content, "Successfully Updated (1):")
	assert.Contains(t, content, "   - BigBank Visa X")
	assert.Contains(t, content, "Failed/Defaults (1):")
	assert.Contains(t, content, "   - OtherBank Amex Y")
	assert.Contains(t, content, "Total: 1 succeeded, 1 failed")
}

func TestAppendRunLogAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "update_log.txt")
	first := RunEntry{Timestamp: time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC), Provider: "gemini", Model: "m"}
	second := RunEntry{Timestamp: time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC), Provider: "groq", Model: "m"}

	require.NoError(t, AppendRunLog(path, first))
	require.NoError(t, AppendRunLog(path, second))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Update: 2026-08-29 09:00:00")
	assert.Contains(t, string(data), "Update: 2026-08-30 09:00:00")
}
