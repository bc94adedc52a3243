package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput_Level(t *testing.T) {
	require.Equal(t, logrus.DebugLevel, NewWithOutput("debug", "text", &bytes.Buffer{}).GetLevel())
	require.Equal(t, logrus.InfoLevel, NewWithOutput("loud", "text", &bytes.Buffer{}).GetLevel())
}

func TestNewWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput("info", "json", &buf)
	l.WithField("member_id", 3).Info("Wishlist item added")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "Wishlist item added", entry["msg"])
	require.Equal(t, "info", entry["level"])
	require.EqualValues(t, 3, entry["member_id"])
}

func TestNewWithOutput_Text(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput("warn", "text", &buf)
	l.Info("hidden")
	l.Warn("shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}
