package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "baristabot_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromPath_Valid(t *testing.T) {
	path := writeConfigFile(t, `
databaseURL: postgres://localhost/baristabot
spreadsheetID: sheet-123
credentialsPath: /etc/baristabot/credentials.json
points:
  - ДЕ
  - УЯ
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/baristabot", cfg.DatabaseURL)
	assert.Equal(t, "sheet-123", cfg.SpreadsheetID)
	assert.Equal(t, []string{"ДЕ", "УЯ"}, cfg.Points)
	assert.Equal(t, DefaultLookaheadDays, cfg.LookaheadDays)
	assert.Equal(t, DefaultSyncTimeoutSecs, cfg.SyncTimeoutSecs)
	assert.Equal(t, "prod", cfg.Env)
}

func TestLoadFromPath_ExplicitOverrides(t *testing.T) {
	path := writeConfigFile(t, `
databaseURL: postgres://localhost/baristabot
spreadsheetID: sheet-123
credentialsPath: /etc/baristabot/credentials.json
points: [ДЕ]
lookaheadDays: 14
syncTimeoutSecs: 5
env: staging
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, 14, cfg.LookaheadDays)
	assert.Equal(t, 5, cfg.SyncTimeoutSecs)
	assert.Equal(t, "staging", cfg.Env)
}

func TestLoadFromPath_MissingRequiredField(t *testing.T) {
	path := writeConfigFile(t, `
databaseURL: postgres://localhost/baristabot
points: [ДЕ]
`)

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromPath_ValidClosureRule(t *testing.T) {
	path := writeConfigFile(t, `
databaseURL: postgres://localhost/baristabot
spreadsheetID: sheet-123
credentialsPath: /etc/baristabot/credentials.json
points: [ДЕ, УЯ]
closures:
  - point: ДЕ
    rrule: "FREQ=YEARLY;BYMONTH=1;BYMONTHDAY=1"
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Len(t, cfg.Closures, 1)
	assert.Equal(t, "ДЕ", cfg.Closures[0].Point)
}

func TestLoadFromPath_InvalidClosureRule(t *testing.T) {
	path := writeConfigFile(t, `
databaseURL: postgres://localhost/baristabot
spreadsheetID: sheet-123
credentialsPath: /etc/baristabot/credentials.json
points: [ДЕ]
closures:
  - point: ДЕ
    rrule: "FREQ=NONSENSE"
`)

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rrule")
}

func TestLoadFromPath_MalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "::not yaml::\n\t")

	_, err := LoadFromPath(path)
	require.Error(t, err)
}
