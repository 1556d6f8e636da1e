package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsToInfoLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("not-a-level", &buf)

	log.Debug().Msg("hidden")
	log.Info().Msg("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}

func TestLogEventFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)

	log.Info().
		Str("method", "GET").
		Int("status", 200).
		Int64("attempt", 3).
		Bytes("body", []byte("ok")).
		Msg("request done")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "GET", entry["method"])
	assert.EqualValues(t, 200, entry["status"])
	assert.EqualValues(t, 3, entry["attempt"])
	assert.Equal(t, "request done", entry["message"])
}

func TestSensitiveStringFieldIsRedacted(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)

	log.Info().Str("Authorization", "Bearer secret-token").Msg("out")

	assert.NotContains(t, buf.String(), "secret-token")
	assert.Contains(t, buf.String(), redactedValue)
}

func TestHeaderMapIsRedacted(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)

	headers := http.Header{
		"Cookie":     []string{"session=abc123"},
		"Accept":     []string{"application/json"},
		"Set-Cookie": []string{"token=xyz"},
	}
	log.Info().Interface("headers", headers).Msg("out")

	out := buf.String()
	assert.NotContains(t, out, "abc123")
	assert.NotContains(t, out, "token=xyz")
	assert.Contains(t, out, "application/json")
}

func TestWithFieldsRedaction(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)

	log.WithFields(map[string]any{
		"cookie": "session=abc123",
		"url":    "https://example.com",
	}).Info().Msg("out")

	assert.NotContains(t, buf.String(), "abc123")
	assert.Contains(t, buf.String(), "https://example.com")
}

func TestHeaderFilterCustomNames(t *testing.T) {
	f := NewHeaderFilter([]string{"X-Secret"})

	assert.True(t, f.IsSensitive("x-secret"))
	assert.False(t, f.IsSensitive("authorization"))
	assert.Equal(t, redactedValue, f.RedactString("X-Secret", "value"))
	assert.Equal(t, "value", f.RedactString("Other", "value"))
}

func TestNopLoggerDiscards(t *testing.T) {
	log := Nop()
	// must not panic
	log.Info().Str("k", "v").Msg("dropped")
	log.Error().Err(assert.AnError).Msg("dropped")
}
