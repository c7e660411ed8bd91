package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJobPathSources(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"long flag", []string{"--job", "jobs/demo.hcl"}, "jobs/demo.hcl"},
		{"short flag", []string{"-j", "jobs/demo.hcl"}, "jobs/demo.hcl"},
		{"positional", []string{"jobs/demo.hcl"}, "jobs/demo.hcl"},
		{"long flag wins over positional", []string{"--job", "a.hcl", "b.hcl"}, "a.hcl"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, shouldExit, err := Parse(tc.args, &bytes.Buffer{})
			require.NoError(t, err)
			require.False(t, shouldExit)
			assert.Equal(t, tc.want, cfg.JobPath)
		})
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, shouldExit, err := Parse([]string{"job.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, shouldExit)

	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 0, cfg.HealthcheckPort)
	assert.Equal(t, 10, cfg.WorkerCount)
}

func TestParseNoArgsPrintsUsage(t *testing.T) {
	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse(nil, out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParseRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		args []string
	}{
		{"bad log format", []string{"--log-format", "xml", "job.hcl"}},
		{"bad log level", []string{"--log-level", "loud", "job.hcl"}},
		{"zero workers", []string{"--workers", "0", "job.hcl"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
		})
	}
}

func TestParseNormalizesCase(t *testing.T) {
	cfg, _, err := Parse([]string{"--log-format", "TEXT", "--log-level", "Debug", "job.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}
