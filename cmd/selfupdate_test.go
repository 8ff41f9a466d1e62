package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelfUpdate_DevVersionRefused(t *testing.T) {
	origVersion := rootCmd.Version
	defer func() { rootCmd.Version = origVersion }()

	for _, version := range []string{"", "dev"} {
		rootCmd.Version = version
		err := runSelfUpdate(newSelfUpdateCmd(), nil)
		require.Error(t, err, "version %q", version)
		assert.Contains(t, err.Error(), "cannot self-update a development version")
	}
}

func TestSelfUpdateCommandMetadata(t *testing.T) {
	cmd := newSelfUpdateCmd()
	assert.Equal(t, "self-update", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
}

func TestGithubRepoSlug(t *testing.T) {
	// The slug must stay owner/repo shaped or release detection breaks.
	assert.Regexp(t, `^[\w.-]+/[\w.-]+$`, githubRepoSlug)
}
