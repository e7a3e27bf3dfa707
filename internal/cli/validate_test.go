package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestValidate_ValidRegistry(t *testing.T) {
	cmd := NewValidateCommand(testOptions(t, "text", nil))
	out, err := execute(t, cmd, testRegistry, "--ui-dir", testUIDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Registry valid (schema 1.0.0): 6 action(s), 1 compound(s), 1 UI definition(s)")
}

func TestValidate_ValidRegistryJSON(t *testing.T) {
	cmd := NewValidateCommand(testOptions(t, "json", nil))
	out, err := execute(t, cmd, testRegistry)
	require.NoError(t, err)

	resp, data := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, true, data["valid"])
	assert.Equal(t, "1.0.0", data["schema_version"])
	assert.EqualValues(t, 6, data["actions"])
}

func TestValidate_DefaultsToConfiguredDir(t *testing.T) {
	opts := testOptions(t, "text", map[string]string{"ACTIONROUTE_REGISTRY_DIR": testRegistry})
	out, err := execute(t, NewValidateCommand(opts))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Registry valid")
}

func TestValidate_NonExistentDirectory(t *testing.T) {
	cmd := NewValidateCommand(testOptions(t, "text", nil))
	out, err := execute(t, cmd, "/nonexistent/directory/path")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
	assert.Contains(t, out, "not found")
}

func TestValidate_EmptyDirectory(t *testing.T) {
	cmd := NewValidateCommand(testOptions(t, "text", nil))
	_, err := execute(t, cmd, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E003")
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "registry.cue", `package registry

schema_version: "1.0.0"

action: view_order: {mode: "inbox", kind: "goto"}
action: pay: {mode: "mail", placeholder: "sometimes"}
compound: followup: steps: ["view_order", "ghost"]
`)

	cmd := NewValidateCommand(testOptions(t, "text", nil))
	out, err := execute(t, cmd, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed with 3 error(s)")
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "E201")
	assert.Contains(t, out, "E203")
	assert.Contains(t, out, "E211")
}

func TestValidate_ProblemsJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "registry.cue", `package registry

schema_version: "1.0.0"

action: view_order: {mode: "inbox"}
`)

	cmd := NewValidateCommand(testOptions(t, "json", nil))
	out, err := execute(t, cmd, dir)
	require.Error(t, err)

	resp, data := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "E201", resp.Error.Code)
	assert.Equal(t, false, data["valid"])
}

func TestValidate_CompileError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "registry.cue", `package registry

schema_version: "1.0.0"

action: view_order: {mode: "mail", kind: "teleport"}
`)

	cmd := NewValidateCommand(testOptions(t, "text", nil))
	out, err := execute(t, cmd, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E001: action.view_order.kind")
}

func TestValidate_UnsupportedSchemaVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "registry.cue", `package registry

schema_version: "2.1.0"
`)

	cmd := NewValidateCommand(testOptions(t, "text", nil))
	out, err := execute(t, cmd, dir)
	require.Error(t, err)
	assert.Contains(t, out, "unsupported schema version")
}

func TestValidate_MissingUIDefinition(t *testing.T) {
	cmd := NewValidateCommand(testOptions(t, "text", nil))
	out, err := execute(t, cmd, testRegistry, "--ui-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, out, "E302: action.invoice_form.generic_ui")
}

func TestValidate_InvalidUIDefinition(t *testing.T) {
	uiDir := t.TempDir()
	writeFile(t, uiDir, "invoice_form.json", `{"name":"invoice_form","version":1,"components":[{"type":"amount","bind":"amount"}]}`)
	writeFile(t, uiDir, "broken.json", `{"name":"broken","version":0,"components":[]}`)
	writeFile(t, uiDir, "notes.txt", "ignored")

	cmd := NewValidateCommand(testOptions(t, "text", nil))
	out, err := execute(t, cmd, testRegistry, "--ui-dir", uiDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed with 1 error(s)")
	assert.Contains(t, out, "E301: ui.broken")
}

func TestDefinitionNames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "")
	writeFile(t, dir, "a.json", "")
	writeFile(t, dir, "a.yml", "")
	writeFile(t, dir, "c.txt", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "d.json"), 0o755))

	names, err := definitionNames(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}
