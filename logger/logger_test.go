package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: WARN, Output: &buf})

	l.Info("hidden %d", 1)
	l.Warn("shown %d", 2)
	_ = l.Sync()

	out := buf.String()
	assert.NotContains(t, out, "hidden 1")
	assert.Contains(t, out, "shown 2")
	assert.Contains(t, out, "WARN")

	buf.Reset()
	l.SetLevel(DEBUG)
	l.Debug("now visible")
	_ = l.Sync()
	assert.Contains(t, buf.String(), "now visible")
}

func TestLoggerWithFieldsJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: INFO, Output: &buf, JSON: true})

	l.WithFields(map[string]interface{}{"cohort_id": 7}).Info("enrolled")
	_ = l.Sync()

	out := buf.String()
	assert.Contains(t, out, `"msg":"enrolled"`)
	assert.Contains(t, out, `"cohort_id":7`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DEBUG},
		{" WARN ", WARN},
		{"warning", WARN},
		{"error", ERROR},
		{"", INFO},
		{"verbose", INFO},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}
