package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valeriaulyamaeva/budget-ledger/internal/config"
	"github.com/valeriaulyamaeva/budget-ledger/internal/logging"
)

func TestNewWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithOutput(config.Log{Level: "debug", Format: "json"}, &buf)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithField(logging.FieldAccountID, "abc").Info("balance corrected")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "balance corrected", entry["msg"])
	assert.Equal(t, "abc", entry[logging.FieldAccountID])
}

func TestNewWithOutput_InvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithOutput(config.Log{Level: "chatty", Format: "text"}, &buf)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.Contains(t, buf.String(), "Invalid log level")
}

func TestDiscard(t *testing.T) {
	logger := logging.Discard()
	assert.NotPanics(t, func() { logger.Error("dropped") })
}
