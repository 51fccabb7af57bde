package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestNew(t *testing.T) {
	log := New()
	assert.NotNil(t, log)
	log.Info("Test message: %s", "info")
}

func TestLogger_Formatting(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions("debug", true, &buf)

	log.Info("User %s logged in with ID %d", "john", 123)
	log.Error("Failed to process request %d: %s", 404, "not found")

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 2)
	assert.Equal(t, "info", recs[0]["level"])
	assert.Equal(t, "User john logged in with ID 123", recs[0]["message"])
	assert.Equal(t, "error", recs[1]["level"])
	assert.Equal(t, "fanvault", recs[1]["service"])
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions("warn", true, &buf)

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("Warning: %s count is %d", "items", 5)

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "warn", recs[0]["level"])
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions("info", true, &buf).With("ledger")

	log.Info("earnings updated")

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "ledger", recs[0]["component"])
}

func TestLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions("loud", true, &buf)

	log.Debug("hidden")
	log.Info("shown")

	assert.Len(t, decodeLines(t, &buf), 1)
}
