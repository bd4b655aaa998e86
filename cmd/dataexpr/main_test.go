package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/dataexpr/internal/binding"
	"github.com/specialistvlad/dataexpr/internal/cli"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	filePath := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(filePath, []byte(content), 0600), "failed to set up test file")
	return filePath
}

func TestRun_ResolvesValue(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	filePath := writeConfig(t, "main.hcl", `
key          = "id"
display_expr = "name"
item {
  id   = 1
  name = "one"
}
item {
  id   = 2
  name = "two"
}
`)
	out := &bytes.Buffer{}
	logs := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, logs, []string{"-value", "2", filePath})

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, out.String(), `"resolved":true`)
	require.Contains(t, out.String(), `"display":"two"`)
	require.Contains(t, logs.String(), "Value resolved.")
}

func TestRun_NotResolved(t *testing.T) {
	t.Parallel()

	filePath := writeConfig(t, "main.yaml", "key: id\nitems:\n  - id: 1\n")
	out := &bytes.Buffer{}

	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-value", "5", filePath})

	require.Error(t, err)
	require.ErrorIs(t, err, binding.ErrNotResolved)
	require.Contains(t, out.String(), `"resolved":false`)
}

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A syntax error makes configuration loading panic inside app.NewApp().
	filePath := writeConfig(t, "main.hcl", `
		item {
			id = 1
		// Missing closing brace here
	`)
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(context.Background(), out, &bytes.Buffer{}, []string{filePath})

	// --- Assert ---
	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")

	errStr := runErr.Error()
	require.True(t, strings.Contains(errStr, "application startup panicked"), "The error message should indicate that a panic was recovered.")
	require.True(t, strings.Contains(errStr, "failed to parse"), "The error message should contain the underlying reason for the panic.")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}
