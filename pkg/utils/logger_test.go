package utils

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger("debug", "json", "stdout", ""))
	assert.Equal(t, logrus.DebugLevel, GetLogger().GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, GetLogger().Formatter)

	require.NoError(t, InitLogger("warn", "text", "stderr", ""))
	assert.Equal(t, logrus.WarnLevel, GetLogger().GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, GetLogger().Formatter)
}

func TestInitLoggerRejectsBadLevel(t *testing.T) {
	assert.Error(t, InitLogger("chatty", "json", "stdout", ""))
}

func TestComponentLogger(t *testing.T) {
	require.NoError(t, InitLogger("info", "json", "stdout", ""))

	entry := ComponentLogger("sync")
	assert.Equal(t, "sync", entry.Data["component"])
}
