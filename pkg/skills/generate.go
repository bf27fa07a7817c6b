package skills

import (
	"bytes"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Generator writes skill files into an output directory. Writes go through
// an injected afero.Fs so tests can run against an in-memory tree.
type Generator struct {
	fs        afero.Fs
	outputDir string
}

// Option configures a Generator
type Option func(*Generator)

// WithOutputDir overrides the default output directory
func WithOutputDir(dir string) Option {
	return func(g *Generator) {
		if dir != "" {
			g.outputDir = dir
		}
	}
}

// NewGenerator creates a Generator writing to DefaultOutputDir unless
// configured otherwise.
func NewGenerator(fs afero.Fs, opts ...Option) *Generator {
	g := &Generator{
		fs:        fs,
		outputDir: DefaultOutputDir,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// OutputDir returns the directory skills are generated into.
func (g *Generator) OutputDir() string {
	return g.outputDir
}

// SkillPath returns the output location for a package's skill file.
func (g *Generator) SkillPath(name string) string {
	return filepath.Join(g.outputDir, name, FileName)
}

// Generate creates or overwrites the skill file for a package and returns
// its path. Regeneration with unchanged inputs converges: when the file
// already holds the expected content, nothing is written.
func (g *Generator) Generate(name, description, content string) (string, error) {
	formatted := []byte(Format(name, description, content))
	skillPath := g.SkillPath(name)

	existing, err := afero.ReadFile(g.fs, skillPath)
	if err == nil && bytes.Equal(existing, formatted) {
		return skillPath, nil
	}

	if err := g.fs.MkdirAll(filepath.Dir(skillPath), 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create skill directory for %s", name)
	}
	if err := afero.WriteFile(g.fs, skillPath, formatted, 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write skill file for %s", name)
	}

	return skillPath, nil
}
