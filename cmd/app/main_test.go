package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"edulift/config"
	"edulift/internal/log"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestReloadLogLevelLeavesSharedConfigAlone(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(file, []byte("LOG:\n  LEVEL: debug\nRATE_LIMIT:\n  ENABLED: false\n"), 0o600))

	v := viper.NewWithOptions(viper.KeyDelimiter("__"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.SetConfigFile(file)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadInConfig())

	previous := conf
	t.Cleanup(func() {
		conf = previous
		log.SetLevel("info")
	})
	conf = &config.Configuration{}
	conf.RateLimit.Enabled = true
	shared := conf

	require.NoError(t, reloadLogLevel(v))
	assert.Same(t, shared, conf)
	assert.True(t, conf.RateLimit.Enabled)

	assert.Equal(t, zapcore.DebugLevel, log.CurrentLevel())
}

func TestReloadLogLevelRejectsUnknownLevel(t *testing.T) {
	v := viper.NewWithOptions(viper.KeyDelimiter("__"))
	v.Set("LOG__LEVEL", "chatty")
	assert.Error(t, reloadLogLevel(v))
}
