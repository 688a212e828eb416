package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// useTestConfig points --config at a fresh sqlite registry and template file
// under t.TempDir and returns the directory.
func useTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestConfig(t, dir, fmt.Sprintf("  path: %s\n", filepath.Join(dir, "templates.yaml")))
	return dir
}

// writeTestConfig writes a config under dir with templatesBlock as the body of
// the templates section and points --config at it.
func writeTestConfig(t *testing.T, dir, templatesBlock string) {
	t.Helper()

	path := filepath.Join(dir, "config.yaml")
	data := fmt.Sprintf(`registry:
  backend: sqlite
  sqlite:
    path: %s
templates:
%sserver:
  listen_address: 127.0.0.1:0
  shutdown_timeout: 1s
telemetry:
  logging:
    level: warn
    format: text
`, filepath.Join(dir, "data", "statusboard.db"), templatesBlock)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	prevCfg, prevLevel := cfgFile, logLevel
	cfgFile, logLevel = path, ""
	t.Cleanup(func() { cfgFile, logLevel = prevCfg, prevLevel })
}

// newTestCommand returns a command whose output is captured.
func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetContext(context.Background())
	return cmd, out
}

// run executes fn against a fresh captured command.
func run(t *testing.T, fn func(*cobra.Command, []string) error, args ...string) (string, error) {
	t.Helper()
	cmd, out := newTestCommand()
	err := fn(cmd, args)
	return out.String(), err
}
