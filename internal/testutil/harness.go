package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/hclgraph/internal/app"
	"github.com/specialistvlad/hclgraph/internal/registry"
	"github.com/stretchr/testify/require"
)

// HarnessResult holds the outcomes of an app test run.
type HarnessResult struct {
	Output    string
	LogOutput string
	Err       error
	App       *app.App
}

// RunApp writes doc to a temporary file, points cfg at it, and runs the
// app once. A panic during startup is returned as Err.
func RunApp(t *testing.T, doc string, cfg app.Config, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunAppWithContext(context.Background(), t, doc, cfg, modules...)
}

// RunAppWithContext is RunApp with a caller-provided context.
func RunAppWithContext(ctx context.Context, t *testing.T, doc string, cfg app.Config, modules ...registry.Module) *HarnessResult {
	t.Helper()

	path := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg.DocPath = path
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	config, err := app.NewConfig(cfg)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	logBuffer := &SafeBuffer{}
	result := &HarnessResult{}

	func() {
		defer func() {
			if r := recover(); r != nil {
				result.Err = fmt.Errorf("app startup panicked: %v", r)
			}
		}()
		result.App = app.NewApp(out, logBuffer, config, modules...)
	}()
	if result.Err == nil {
		result.Err = result.App.Run(ctx)
	}

	result.Output = out.String()
	result.LogOutput = logBuffer.String()

	t.Cleanup(func() {
		if os.Getenv("HCLGRAPH_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), result.LogOutput)
		}
	})
	return result
}
