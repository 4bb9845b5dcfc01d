package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ProductionUsesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(&buf, "production", "info")

	logger.WithField("op", "signup").Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "signup", entry["op"])
}

func TestNew_DevUsesText(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(&buf, "dev", "debug")

	logger.Debug("dbg")

	assert.Contains(t, buf.String(), "msg=dbg")
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	logger := NewWithOutput(&bytes.Buffer{}, "production", "loud")
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}
