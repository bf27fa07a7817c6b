package skills

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := NewGenerator(fs)

	path, err := g.Generate("ash", "", "# Ash Usage Rules\n\nContent here")
	require.NoError(t, err)
	assert.Equal(t, ".claude/skills/ash/SKILL.md", path)

	content, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "name: ash")
	assert.Contains(t, string(content), "description: Guidance on working with Ash")
	assert.Contains(t, string(content), "# Ash Usage Rules\n\nContent here")
}

func TestGenerate_CustomOutputDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := NewGenerator(fs, WithOutputDir("docs/skills"))

	path, err := g.Generate("ex_doc", "", "rules")
	require.NoError(t, err)
	assert.Equal(t, "docs/skills/ex_doc/SKILL.md", path)

	ok, err := afero.Exists(fs, path)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGenerate_EmptyOutputDirKeepsDefault(t *testing.T) {
	g := NewGenerator(afero.NewMemMapFs(), WithOutputDir(""))
	assert.Equal(t, DefaultOutputDir, g.OutputDir())
}

func TestGenerate_Idempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := NewGenerator(fs)

	first, err := g.Generate("ash", "", "content")
	require.NoError(t, err)
	firstContent, err := afero.ReadFile(fs, first)
	require.NoError(t, err)

	second, err := g.Generate("ash", "", "content")
	require.NoError(t, err)
	secondContent, err := afero.ReadFile(fs, second)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstContent, secondContent)
}

func TestGenerate_OverwritesStaleContent(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := NewGenerator(fs)

	path, err := g.Generate("ash", "", "old content")
	require.NoError(t, err)

	_, err = g.Generate("ash", "", "new content")
	require.NoError(t, err)

	content, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "new content")
	assert.NotContains(t, string(content), "old content")
}
