// Package project enumerates the direct dependencies of a Mix project and
// answers which of them ship a usage-rules.md file. Dependency declarations
// are read straight from the project's mix.exs manifest (and from every
// sub-project manifest when the project is an umbrella), never by executing
// the build tool. All filesystem access goes through an injected afero.Fs so
// callers can swap in an in-memory tree.
package project

import (
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const (
	// RulesFileName is the fixed name packages use to ship usage rules.
	RulesFileName = "usage-rules.md"

	// DepsDir is where Mix installs dependencies relative to the project root.
	DepsDir = "deps"

	manifestFileName = "mix.exs"

	// stagedRulesPattern matches staged file entries that identify a
	// sandbox dependency carrying usage rules.
	stagedRulesPattern = "deps/*/usage-rules.md"
)

// Dependency is a declared dependency with its on-disk location.
// Path is relative to the project root and empty when the dependency
// is not installed; pathless dependencies are excluded from usage-rule
// consideration downstream.
type Dependency struct {
	Name string
	Path string
}

// Lister produces dependency declarations from some source, typically a
// build manifest.
type Lister interface {
	ListDependencies() ([]Dependency, error)
}

// Project wraps a Mix project root and resolves its dependencies.
type Project struct {
	fs      afero.Fs
	root    string
	listers []Lister
	staged  []string
}

// Option configures a Project
type Option func(*Project)

// WithListers replaces the default manifest listers
func WithListers(listers ...Lister) Option {
	return func(p *Project) {
		p.listers = listers
	}
}

// WithStagedFiles registers a virtual file list from a sandboxed run.
// Entries matching deps/<name>/usage-rules.md synthesize dependencies
// that may not appear in any manifest.
func WithStagedFiles(paths ...string) Option {
	return func(p *Project) {
		p.staged = append(p.staged, paths...)
	}
}

// New creates a Project rooted at root. Without options it reads the
// top-level mix.exs plus, for umbrella projects, every apps/*/mix.exs.
func New(fs afero.Fs, root string, opts ...Option) *Project {
	p := &Project{
		fs:   fs,
		root: root,
	}

	for _, opt := range opts {
		opt(p)
	}

	if len(p.listers) == 0 {
		p.listers = []Lister{
			NewMixLister(fs, filepath.Join(root, manifestFileName)),
			NewUmbrellaLister(fs, root),
		}
	}

	return p
}

// Dependencies returns the deduplicated dependency set keyed by name.
// Names are unioned across all listers; each name is then resolved to
// deps/<name> when that directory exists. Unresolved names stay in the
// map with an empty path.
func (p *Project) Dependencies() (map[string]Dependency, error) {
	deps := make(map[string]Dependency)

	for _, lister := range p.listers {
		declared, err := lister.ListDependencies()
		if err != nil {
			return nil, errors.Wrap(err, "failed to list declared dependencies")
		}
		for _, dep := range declared {
			existing, ok := deps[dep.Name]
			if !ok {
				deps[dep.Name] = dep
			} else if existing.Path == "" && dep.Path != "" {
				deps[dep.Name] = dep
			}
		}
	}

	for name, dep := range deps {
		if dep.Path != "" {
			continue
		}
		installPath := filepath.Join(p.root, DepsDir, name)
		if ok, _ := afero.DirExists(p.fs, installPath); ok {
			dep.Path = installPath
			deps[name] = dep
		}
	}

	p.mergeStaged(deps)

	return deps, nil
}

// mergeStaged synthesizes dependencies from the staged file list, union by
// name with manifest results.
func (p *Project) mergeStaged(deps map[string]Dependency) {
	for _, staged := range p.staged {
		matched, err := doublestar.Match(stagedRulesPattern, filepath.ToSlash(staged))
		if err != nil || !matched {
			continue
		}
		dir := filepath.Dir(staged)
		name := filepath.Base(dir)
		if existing, ok := deps[name]; !ok || existing.Path == "" {
			deps[name] = Dependency{Name: name, Path: dir}
		}
	}
}

// WithUsageRules returns the dependencies whose directory directly contains
// a usage-rules.md file, sorted by name. A non-empty allowed list narrows
// the result to those names; the existence requirement still applies. This
// is the discovery path behind --all; explicitly named packages are checked
// individually by the caller instead.
func (p *Project) WithUsageRules(allowed []string) ([]Dependency, error) {
	deps, err := p.Dependencies()
	if err != nil {
		return nil, err
	}

	allowedSet := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		allowedSet[name] = true
	}

	var confirmed []Dependency
	for _, dep := range deps {
		if dep.Path == "" {
			continue
		}
		if len(allowed) > 0 && !allowedSet[dep.Name] {
			continue
		}
		if ok, _ := afero.Exists(p.fs, filepath.Join(dep.Path, RulesFileName)); ok {
			confirmed = append(confirmed, dep)
		}
	}

	sort.Slice(confirmed, func(i, j int) bool { return confirmed[i].Name < confirmed[j].Name })

	return confirmed, nil
}

// RulesPath returns the conventional location of a package's usage rules.
func (p *Project) RulesPath(name string) string {
	return filepath.Join(p.root, DepsDir, name, RulesFileName)
}

// HasRules reports whether the package ships a usage-rules.md file.
// Missing paths are treated as "not found", never as an error.
func (p *Project) HasRules(name string) bool {
	ok, _ := afero.Exists(p.fs, p.RulesPath(name))
	return ok
}

// ReadRules returns the raw usage rules content for the package.
func (p *Project) ReadRules(name string) (string, error) {
	content, err := afero.ReadFile(p.fs, p.RulesPath(name))
	if err != nil {
		return "", errors.Wrapf(err, "failed to read usage rules for %s", name)
	}
	return string(content), nil
}

// Description returns the package's declared description from its own
// manifest, or an empty string when unavailable. The skill header does not
// use it, but callers fetch it to keep parity with the package metadata.
func (p *Project) Description(name string) string {
	manifest := filepath.Join(p.root, DepsDir, name, manifestFileName)
	content, err := afero.ReadFile(p.fs, manifest)
	if err != nil {
		return ""
	}
	return parseManifestDescription(string(content))
}
