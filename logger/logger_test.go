package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", Format: "json"}, &buf)

	l.WithField("component", "cache").Debug("evicted")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "evicted", line["msg"])
	assert.Equal(t, "cache", line["component"])
	assert.Equal(t, "debug", line["level"])
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	l := New(Config{Level: "chatty"}, &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}

func TestWithComponent(t *testing.T) {
	Init(Config{Level: "warn"})
	e := WithComponent("server")
	assert.Equal(t, "server", e.Data["component"])
	assert.Equal(t, logrus.WarnLevel, e.Logger.GetLevel())
}

func TestDiscard(t *testing.T) {
	e := Discard()
	e.Error("nobody hears this")
	assert.NotNil(t, e.Logger)
}
