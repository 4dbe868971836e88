// Package testutil provides shared helpers for integration-style tests:
// a thread-safe log buffer and a harness that runs a full application
// lifecycle against workflow files written to a temporary directory.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vk/flowforgego/internal/app"
	"github.com/vk/flowforgego/internal/hcl"
	"github.com/vk/flowforgego/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// RunWorkflowTest provides a standardized harness for running integration
// tests using a default background context.
func RunWorkflowTest(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunWorkflowTestWithConfig(context.Background(), t, files, nil, modules...)
}

// RunWorkflowTestWithConfig runs the full application lifecycle against the
// given workflow files. A nil config gets sensible test defaults. Startup
// panics are recovered into the result's Err.
func RunWorkflowTestWithConfig(
	ctx context.Context,
	t *testing.T,
	files map[string]string,
	appConfig *app.Config,
	modules ...registry.Module,
) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	if appConfig == nil {
		appConfig = &app.Config{
			Workers:     4,
			TaskTimeout: 30 * time.Second,
		}
	}
	appConfig.WorkflowPath = tmpDir
	appConfig.LogLevel = "debug"
	appConfig.LogFormat = "text"

	logBuffer := &SafeBuffer{}
	t.Cleanup(func() {
		if os.Getenv("FLOWFORGE_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.New(logBuffer, appConfig, hcl.NewLoader(), modules...)
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	runErr := testApp.Run(ctx)
	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
}
