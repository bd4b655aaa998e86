package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/dataexpr/internal/app"
	"github.com/specialistvlad/dataexpr/internal/fileconfig"
)

// HarnessResult holds the outcomes of an app run.
type HarnessResult struct {
	Root      string
	Output    string
	LogOutput string
	Err       error
	App       *app.App
}

// RunApp writes files into a temporary directory, points cfg at it and runs
// the app once with a debug-level text logger. A startup panic is reported
// as Err.
func RunApp(ctx context.Context, t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()

	root := WriteFiles(t, files)
	cfg.ConfigPaths = []string{root}
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"

	out := &SafeBuffer{}
	logBuffer := &SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(out, logBuffer, &cfg, fileconfig.NewLoader())
	}()

	if panicErr != nil {
		return &HarnessResult{
			Root:      root,
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	runErr := testApp.Run(ctx)

	if os.Getenv("DATAEXPR_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		Root:      root,
		Output:    out.String(),
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
}

// Lines splits output into its non-empty lines.
func Lines(output string) []string {
	var out []string
	for _, l := range bytes.Split([]byte(output), []byte("\n")) {
		if len(bytes.TrimSpace(l)) > 0 {
			out = append(out, string(l))
		}
	}
	return out
}

// Path joins a slash-separated relative path onto root.
func Path(root, name string) string {
	return filepath.Join(root, filepath.FromSlash(name))
}
