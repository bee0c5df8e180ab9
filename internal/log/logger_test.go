package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"edulift/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	for raw, want := range map[string]zapcore.Level{
		"":       zapcore.InfoLevel,
		"debug":  zapcore.DebugLevel,
		"WARN":   zapcore.WarnLevel,
		" error": zapcore.ErrorLevel,
	} {
		got, ok := ParseLevel(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
	got, ok := ParseLevel("verbose")
	assert.False(t, ok)
	assert.Equal(t, zapcore.InfoLevel, got)
}

func TestLoggerSplitsStreams(t *testing.T) {
	conf := &config.Configuration{}
	conf.Log.Level = "info"
	conf.App.Version = "1.2.3"

	var out, errOut bytes.Buffer
	logger := newLogger(conf, &out, &errOut)
	logger.Debug("hidden")
	logger.Info("to stdout")
	logger.Warn("to stderr")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "to stdout")
	assert.NotContains(t, out.String(), "to stderr")
	assert.Contains(t, errOut.String(), "to stderr")

	lines := strings.Split(strings.TrimSpace(errOut.String()), "\n")
	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &record))
	assert.Equal(t, "warn", record["level"])
	assert.Equal(t, "edulift", record["service"])
	assert.Equal(t, "1.2.3", record["version"])
}

func TestSetLevel(t *testing.T) {
	conf := &config.Configuration{}
	var out, errOut bytes.Buffer
	logger := newLogger(conf, &out, &errOut)

	assert.False(t, SetLevel("loud"))
	assert.True(t, SetLevel("debug"))
	logger.Debug("now visible")
	assert.Contains(t, out.String(), "now visible")

	assert.True(t, SetLevel("error"))
	logger.Warn("suppressed")
	assert.NotContains(t, errOut.String(), "suppressed")
	SetLevel("info")
}
