package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "replay.cfg.json"), []byte(content), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"dataset": { "path": "/data/oresund.json", "sessionName": "oresund" },
		"playback": { "speed": 4 }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "/data/oresund.json", viper.GetString("dataset.path"))
	assert.Equal(t, "oresund", viper.GetString("dataset.sessionName"))
	assert.Equal(t, 4.0, viper.GetFloat64("playback.speed"))
	// Unset keys keep their defaults.
	assert.Equal(t, 250, viper.GetInt("playback.tickMs"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./replaylogs", viper.GetString("logsDir"))
	assert.Equal(t, "./dataset.json", viper.GetString("dataset.path"))
	assert.Equal(t, 60.0, viper.GetFloat64("playback.baseRatio"))
	assert.Equal(t, 1.0, viper.GetFloat64("playback.speed"))
	assert.Equal(t, 0.25, viper.GetFloat64("playback.dimmedOpacity"))
	assert.Equal(t, "", viper.GetString("palette.homeCategory"))
	assert.Equal(t, "#808080", viper.GetString("palette.fallbackColor"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
	assert.Equal(t, "./sessions", viper.GetString("storage.memory.outputDir"))
	assert.Equal(t, true, viper.GetBool("storage.memory.compressOutput"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "5432", viper.GetString("db.port"))
	assert.Equal(t, "replay", viper.GetString("db.database"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, "8086", viper.GetString("influx.port"))
	assert.Equal(t, false, viper.GetBool("otel.enabled"))
	assert.Equal(t, "vessel-replay", viper.GetString("otel.serviceName"))
	assert.Equal(t, "5s", viper.GetString("otel.batchTimeout"))
	assert.Equal(t, true, viper.GetBool("otel.insecure"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestSnapshot_ValidatedDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{}`)
	require.NoError(t, Load(dir))

	cfg, err := Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 60.0, cfg.Playback.BaseRatio)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, "#808080", cfg.Palette.FallbackColor)
}

func TestSnapshot_RejectsBadValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "verbose",
		"playback": { "speed": -2 }
	}`)
	require.NoError(t, Load(dir))

	_, err := Snapshot()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", 42)
	assert.Equal(t, 42, GetInt("testKey"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", true)
	assert.Equal(t, true, GetBool("testKey"))
}
