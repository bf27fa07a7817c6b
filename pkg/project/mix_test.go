package project

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `defmodule Demo.MixProject do
  use Mix.Project

  def project do
    [
      app: :demo,
      version: "0.1.0",
      elixir: "~> 1.16",
      description: "A demo application",
      deps: deps()
    ]
  end

  defp deps do
    [
      {:ash, "~> 3.0"},
      {:phoenix_live_view, "~> 0.20"},
      {:ex_doc, "~> 0.31", only: :dev, runtime: false},
      {:internal_app, in_umbrella: true},
      {:forked_dep, github: "org/forked_dep", branch: "main"},
      {:local_dep, path: "../local_dep"}
    ]
  end
end
`

func TestParseManifestDeps(t *testing.T) {
	deps := parseManifestDeps(sampleManifest)

	names := make([]string, 0, len(deps))
	for _, dep := range deps {
		names = append(names, dep.Name)
	}

	assert.Equal(t, []string{"ash", "phoenix_live_view", "ex_doc", "internal_app", "forked_dep", "local_dep"}, names)
}

func TestParseManifestDeps_IgnoresResultTuples(t *testing.T) {
	content := `
  defp deps do
    [
      {:ash, "~> 3.0"}
    ]
  end

  def handle_call(request, state) do
    {:reply, request, state}
    {:ok, state}
  end
`
	deps := parseManifestDeps(content)

	require.Len(t, deps, 1)
	assert.Equal(t, "ash", deps[0].Name)
}

func TestParseManifestDescription(t *testing.T) {
	assert.Equal(t, "A demo application", parseManifestDescription(sampleManifest))
	assert.Empty(t, parseManifestDescription("defmodule Empty do\nend\n"))
}

func TestMixLister(t *testing.T) {
	t.Run("existing manifest", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "mix.exs", []byte(sampleManifest), 0o644))

		deps, err := NewMixLister(fs, "mix.exs").ListDependencies()
		require.NoError(t, err)
		assert.Len(t, deps, 6)
	})

	t.Run("missing manifest yields no deps", func(t *testing.T) {
		fs := afero.NewMemMapFs()

		deps, err := NewMixLister(fs, "mix.exs").ListDependencies()
		require.NoError(t, err)
		assert.Empty(t, deps)
	})
}

func TestUmbrellaLister(t *testing.T) {
	fs := afero.NewMemMapFs()

	appOne := `defp deps do
  [
    {:ash, "~> 3.0"},
    {:jason, "~> 1.4"}
  ]
end
`
	appTwo := `defp deps do
  [
    {:jason, "~> 1.4"},
    {:phoenix, "~> 1.7"}
  ]
end
`
	require.NoError(t, afero.WriteFile(fs, "apps/app_one/mix.exs", []byte(appOne), 0o644))
	require.NoError(t, afero.WriteFile(fs, "apps/app_two/mix.exs", []byte(appTwo), 0o644))

	deps, err := NewUmbrellaLister(fs, ".").ListDependencies()
	require.NoError(t, err)

	names := make([]string, 0, len(deps))
	for _, dep := range deps {
		names = append(names, dep.Name)
	}
	assert.ElementsMatch(t, []string{"ash", "jason", "phoenix"}, names)
}

func TestUmbrellaLister_NoAppsDir(t *testing.T) {
	fs := afero.NewMemMapFs()

	deps, err := NewUmbrellaLister(fs, ".").ListDependencies()
	require.NoError(t, err)
	assert.Empty(t, deps)
}
