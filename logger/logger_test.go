package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))
}

func TestFileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "femesh.log")
	cfg := FileConfig{
		Path:       logFile,
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
	}
	require.NoError(t, InitWithFileConfig("debug", cfg, false))
	defer func() {
		Log = zap.NewNop()
		Sugar = Log.Sugar()
	}()

	Named("refine").Debug("iteration", zap.Int("iter", 1), zap.Int("elements", 32))
	Sugar.Infof("wrote %d nodes", 25)
	Sync()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `"logger":"refine"`) || strings.Contains(text, "refine"))
	assert.Contains(t, text, `"elements":32`)
	assert.Contains(t, text, "wrote 25 nodes")
}

func TestLevelFilter(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "warn.log")
	require.NoError(t, InitWithFileConfig("warn", FileConfig{Path: logFile, MaxSizeMB: 1}, false))
	defer func() {
		Log = zap.NewNop()
		Sugar = Log.Sugar()
	}()

	Log.Info("hidden message")
	Log.Warn("visible message")
	Sync()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden message")
	assert.Contains(t, string(data), "visible message")
}
