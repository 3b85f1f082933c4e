package log

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewWithWriterLevels(t *testing.T) {
	cases := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.WarnLevel},
		{"nonsense", zerolog.WarnLevel},
	}
	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			logger := NewWithWriter(&bytes.Buffer{}, tc.level)
			assert.Equal(t, tc.want, logger.GetLevel())
		})
	}
}

func TestNewWithWriterOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "info")

	logger.Debug().Msg("hidden")
	logger.Info().Str("op", "ListBans").Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "op=ListBans")
	assert.Contains(t, out, "app=panelctl")
}
