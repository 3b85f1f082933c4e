package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportLine(t *testing.T) {
	cases := map[string]string{
		"posix":      `export PANEL_TOKEN="abc"`,
		"zsh":        `export PANEL_TOKEN="abc"`,
		"fish":       `set -x PANEL_TOKEN "abc"`,
		"powershell": `$env:PANEL_TOKEN="abc"`,
	}
	for format, want := range cases {
		got, err := exportLine(format, "abc")
		require.NoError(t, err, format)
		assert.Equal(t, want, got, format)
	}

	_, err := exportLine("cmd.exe", "abc")
	assert.ErrorContains(t, err, "unsupported shell format")
}

func TestDetectShell(t *testing.T) {
	for shell, want := range map[string]string{
		"":                "posix",
		"/bin/bash":       "posix",
		"/usr/bin/fish":   "fish",
		"/usr/local/pwsh": "powershell",
	} {
		t.Setenv("SHELL", shell)
		assert.Equal(t, want, detectShell(), shell)
	}
}

func TestReadAllTrim(t *testing.T) {
	got, err := readAllTrim(strings.NewReader("hunter22\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "hunter22", got)
}
