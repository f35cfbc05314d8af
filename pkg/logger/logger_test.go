package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerLevel(t *testing.T) {
	InitLogger(Options{Level: "debug"})
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())

	InitLogger(Options{Level: "nonsense"})
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
}

func TestInitLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questline.log")
	InitLogger(Options{File: path})
	Log.WithField("journey_id", "abc").Info("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"journey_id":"abc"`)
	assert.Contains(t, string(data), `"msg":"hello"`)
}
