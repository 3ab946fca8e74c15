package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsWithNoFileOrFlags(t *testing.T) {
	cfg, err := Load(nil, "")
	require.NoError(t, err)

	assert.Equal(t, "im-delivery-service", cfg.Kafka.Group)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, int64(100), cfg.Redis.SeqStep)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "im_delivery", cfg.AMQP.Exchange)
}

func TestLoadReadsFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\nredis:\n  port: 7000\n"), 0o644))

	cfg, err := Load(nil, path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 7000, cfg.Redis.Port)
	// untouched keys keep their defaults
	assert.Equal(t, int64(100), cfg.Redis.SeqStep)
}

func TestLoadFlagsOverrideFileValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log.level", "warn", "")
	require.NoError(t, flags.Set("log.level", "error"))

	cfg, err := Load(flags, path)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoadRejectsMissingConfigFile(t *testing.T) {
	_, err := Load(nil, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWatchReloadNoopsWithoutConfigPath(t *testing.T) {
	err := WatchReload(nil, "", func(*Config) { t.Fatal("onChange should not fire") })
	assert.NoError(t, err)
}
