package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistration(t *testing.T) {
	expected := []string{"up", "down", "status", "validate", "version", "self-update"}

	registered := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}

	for _, name := range expected {
		assert.True(t, registered[name], "command %q not registered", name)
	}
}

func TestRootPersistentFlags(t *testing.T) {
	for _, name := range []string{"context", "catalog", "verbose"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "flag %q not registered", name)
	}
}

func TestUpGroupFlagsMutuallyExclusive(t *testing.T) {
	defer resetFlags(t)

	rootCmd.SetArgs([]string{"up", "--apps-only", "--monitoring-only"})
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}

func TestValidateCommand(t *testing.T) {
	defer resetFlags(t)

	catalogPath := writeCatalog(t, `
services:
  - name: postgres
    tier: database
  - name: rental-service
    tier: backend
    dependsOn: [postgres]
  - name: frontend
    tier: frontend
`)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"validate", "--catalog", catalogPath})

	require.NoError(t, rootCmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "Catalog valid: 3 service(s) in 3 tier(s)")
	assert.Contains(t, out, "database: postgres")
	assert.Contains(t, out, "frontend: frontend")
}

func TestValidateCommand_BadCatalog(t *testing.T) {
	defer resetFlags(t)

	catalogPath := writeCatalog(t, `
services:
  - name: postgres
    tier: database
    dependsOn: [frontend]
  - name: frontend
    tier: frontend
`)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"validate", "--catalog", catalogPath})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "later tier")
}

// resetFlags restores the package-level flag state mutated by a command
// execution so tests stay independent.
func resetFlags(t *testing.T) {
	t.Helper()
	flagContext = ""
	flagCatalog = ""
	flagVerbose = false
	upAppsOnly = false
	upMonitoringOnly = false
	upGitopsOnly = false
	downRemoveVolumes = false
	downPruneImages = false
	rootCmd.SetArgs(nil)
	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
}

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
