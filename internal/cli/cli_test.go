package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/specialistvlad/hclgraph/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTerminal(t *testing.T, v bool) {
	t.Helper()
	prev := isTerminal
	isTerminal = func() bool { return v }
	t.Cleanup(func() { isTerminal = prev })
}

func TestParse_Flags(t *testing.T) {
	withTerminal(t, false)

	cfg, exit, err := Parse([]string{"-strict", "-output", "yaml", "-select", "content", "-watch", "-log-level", "DEBUG", "main.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, exit)
	assert.Equal(t, &app.Config{
		DocPath:   "main.hcl",
		Strict:    true,
		Output:    "yaml",
		Select:    "content",
		Watch:     true,
		LogFormat: "json",
		LogLevel:  "debug",
	}, cfg)
}

func TestParse_PathPrecedence(t *testing.T) {
	withTerminal(t, true)

	cfg, _, err := Parse([]string{"-doc", "a.hcl", "-d", "b.hcl", "c.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "a.hcl", cfg.DocPath)
	assert.Equal(t, "text", cfg.LogFormat, "terminal defaults to text logs")

	cfg, _, err = Parse([]string{"-d", "b.hcl", "c.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "b.hcl", cfg.DocPath)
}

func TestParse_UsageExits(t *testing.T) {
	for _, args := range [][]string{nil, {"-h"}} {
		out := &bytes.Buffer{}
		cfg, exit, err := Parse(args, out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{"unknown flag", []string{"-nope"}, "flag provided but not defined"},
		{"log format", []string{"-log-format", "xml", "d.hcl"}, "invalid log-format"},
		{"log level", []string{"-log-level", "loud", "d.hcl"}, "invalid log-level"},
		{"output", []string{"-output", "toml", "d.hcl"}, "unknown output format"},
		{"select", []string{"-select", "a[x]", "d.hcl"}, "invalid select path"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}
