package main

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSync_ExplicitPackage(t *testing.T) {
	fs := setupProject(t, map[string]string{"ash": "Use code interfaces.\n"})

	runSync(context.Background(), fs, NewSyncConfig(), "CLAUDE.md", []string{"ash"})

	content, err := afero.ReadFile(fs, "CLAUDE.md")
	require.NoError(t, err)
	assert.Contains(t, string(content), "<!-- ash-start -->")
	assert.Contains(t, string(content), "## ash usage")
	assert.Contains(t, string(content), "Use code interfaces.")
	assert.Contains(t, string(content), "<!-- ash-end -->")
}

func TestRunSync_All(t *testing.T) {
	fs := setupProject(t, map[string]string{
		"ash":    "ash rules\n",
		"ex_doc": "ex_doc rules\n",
	})

	config := NewSyncConfig()
	config.All = true
	runSync(context.Background(), fs, config, "AGENTS.md", nil)

	content, err := afero.ReadFile(fs, "AGENTS.md")
	require.NoError(t, err)
	assert.Contains(t, string(content), "<!-- ash-start -->")
	assert.Contains(t, string(content), "<!-- ex_doc-start -->")
}

func TestRunSync_List_NoFileTouched(t *testing.T) {
	fs := setupProject(t, map[string]string{"ash": "rules\n"})

	config := NewSyncConfig()
	config.All = true
	config.List = true
	runSync(context.Background(), fs, config, "CLAUDE.md", nil)

	ok, err := afero.Exists(fs, "CLAUDE.md")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunSync_RemoveExplicit(t *testing.T) {
	fs := setupProject(t, map[string]string{
		"ash":    "ash rules\n",
		"ex_doc": "ex_doc rules\n",
	})

	config := NewSyncConfig()
	config.All = true
	runSync(context.Background(), fs, config, "CLAUDE.md", nil)

	remove := NewSyncConfig()
	remove.Remove = true
	runSync(context.Background(), fs, remove, "CLAUDE.md", []string{"ash"})

	content, err := afero.ReadFile(fs, "CLAUDE.md")
	require.NoError(t, err)
	assert.NotContains(t, string(content), "ash-start")
	assert.Contains(t, string(content), "ex_doc-start")
}

func TestRunSync_RemoveAll_UsesManagedSections(t *testing.T) {
	fs := setupProject(t, map[string]string{"ash": "ash rules\n"})

	config := NewSyncConfig()
	config.All = true
	runSync(context.Background(), fs, config, "CLAUDE.md", nil)

	// Simulate the dependency disappearing after its section was synced;
	// remove --all still cleans the stale section up.
	require.NoError(t, fs.RemoveAll("deps/ash"))

	remove := NewSyncConfig()
	remove.All = true
	remove.Remove = true
	runSync(context.Background(), fs, remove, "CLAUDE.md", nil)

	content, err := afero.ReadFile(fs, "CLAUDE.md")
	require.NoError(t, err)
	assert.NotContains(t, string(content), "ash-start")
}

func TestRunSync_Idempotent(t *testing.T) {
	fs := setupProject(t, map[string]string{"ash": "rules\n"})

	config := NewSyncConfig()
	runSync(context.Background(), fs, config, "CLAUDE.md", []string{"ash"})
	first, err := afero.ReadFile(fs, "CLAUDE.md")
	require.NoError(t, err)

	runSync(context.Background(), fs, config, "CLAUDE.md", []string{"ash"})
	second, err := afero.ReadFile(fs, "CLAUDE.md")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
