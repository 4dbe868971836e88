package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// An HCL syntax error makes app.New panic during loading; run must
	// turn that into a plain error.
	invalidHCL := `
		task "print" "a" {
			arguments {
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0o600))

	out := &bytes.Buffer{}
	err := run(out, []string{filePath})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "critical startup error")
}

func TestRun_NoArgsPrintsUsage(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, nil)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "WORKFLOW_PATH")
}

func TestRun_ExecutesWorkflow(t *testing.T) {
	t.Parallel()

	workflow := `
task "print" "hello" {
  arguments {
    message = "hello from the workflow"
  }
}
`
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "main.hcl"), []byte(workflow), 0o600))

	out := &bytes.Buffer{}
	err := run(out, []string{"--log-level", "debug", tempDir})
	require.NoError(t, err)
}
