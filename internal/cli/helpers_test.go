package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/actionroute/internal/config"
)

var (
	testRegistry  = filepath.Join("..", "harness", "testdata", "registry")
	testUIDir     = filepath.Join("..", "harness", "testdata", "ui")
	testScenarios = filepath.Join("..", "harness", "testdata", "scenarios")
	testGoldenDir = filepath.Join("..", "harness", "testdata", "golden")
	testCard      = filepath.Join("testdata", "card.yaml")
)

// testOptions returns root options with a config built from env alone, so
// the host environment and any .env file never leak into tests.
func testOptions(t *testing.T, format string, env map[string]string) *RootOptions {
	t.Helper()
	if env == nil {
		env = map[string]string{}
	}
	cfg, err := config.Parse(env)
	require.NoError(t, err)
	return &RootOptions{Format: format, cfg: cfg}
}

// execute runs cmd with args and returns stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// decodeResponse parses a JSON CLIResponse with Data as a generic map.
func decodeResponse(t *testing.T, out string) (CLIResponse, map[string]any) {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	data, _ := resp.Data.(map[string]any)
	return resp, data
}
