package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWriterJSON(t *testing.T) {
	t.Cleanup(func() { _ = Setup("info", "text") })

	var buf bytes.Buffer
	require.NoError(t, SetupWriter(&buf, "debug", "json"))
	log.WithField("user", "ana").Debug("day closed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "day closed", entry["msg"])
	assert.Equal(t, "ana", entry["user"])
	assert.Equal(t, log.DebugLevel, log.GetLevel())
}

func TestSetupWriterRejectsBadInput(t *testing.T) {
	t.Cleanup(func() { _ = Setup("info", "text") })

	var buf bytes.Buffer
	assert.Error(t, SetupWriter(&buf, "loud", "text"))
	assert.Error(t, SetupWriter(&buf, "info", "xml"))
}
