package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullFlags(t *testing.T) {
	out := &bytes.Buffer{}
	cfg, exit, err := Parse([]string{
		"--workflow", "workflows/ci.hcl",
		"--workers", "8",
		"--task-timeout", "2m",
		"--continue-on-error",
		"--no-recovery",
		"--log-format", "json",
		"--log-level", "debug",
		"--healthcheck-port", "8080",
	}, out)
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, "workflows/ci.hcl", cfg.WorkflowPath)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 2*time.Minute, cfg.TaskTimeout)
	assert.True(t, cfg.ContinueOnError)
	assert.True(t, cfg.NoRecovery)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.HealthcheckPort)
}

func TestParse_PositionalPath(t *testing.T) {
	cfg, exit, err := Parse([]string{"workflows"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, exit)
	assert.Equal(t, "workflows", cfg.WorkflowPath)
	assert.False(t, cfg.ContinueOnError)
	assert.False(t, cfg.NoRecovery)
}

func TestParse_ShorthandFlag(t *testing.T) {
	cfg, _, err := Parse([]string{"-w", "ci.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "ci.hcl", cfg.WorkflowPath)
}

func TestParse_NoPathPrintsUsage(t *testing.T) {
	out := &bytes.Buffer{}
	cfg, exit, err := Parse(nil, out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "WORKFLOW_PATH")
}

func TestParse_InvalidValues(t *testing.T) {
	t.Run("log format", func(t *testing.T) {
		_, _, err := Parse([]string{"-w", "x", "--log-format", "xml"}, &bytes.Buffer{})
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("log level", func(t *testing.T) {
		_, _, err := Parse([]string{"-w", "x", "--log-level", "loud"}, &bytes.Buffer{})
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("unknown flag", func(t *testing.T) {
		_, _, err := Parse([]string{"--bogus"}, &bytes.Buffer{})
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})
}
