package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup("debug", "json", &buf))

	For("envelope").WithFields(Operation("seal", "ok", logrus.Fields{"size": 5})).Info("sealed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "envelope", entry["package"])
	assert.Equal(t, "seal", entry["operation"])
	assert.Equal(t, "ok", entry["status"])
	assert.Equal(t, float64(5), entry["size"])
	assert.Equal(t, "sealed", entry["msg"])
}

func TestSetupLevel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup("warn", "text", &buf))

	For("core").Info("hidden")
	assert.Empty(t, buf.String())

	For("core").Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetupInvalidLevel(t *testing.T) {
	assert.Error(t, Setup("loud", "text", nil))
}
