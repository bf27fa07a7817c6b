package project

import (
	"os"
	"path"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// depTupleRe matches dependency tuples inside a mix.exs deps list, e.g.
// {:ash, "~> 3.0"}, {:ex_doc, "~> 0.31", only: :dev} or
// {:my_app, in_umbrella: true}. The opening of the second element keeps
// keyword tuples like {:ok, value} from being picked up.
var depTupleRe = regexp.MustCompile(`\{:([a-z][a-z0-9_]*)\s*,\s*(?:"|git:|github:|path:|only:|in_umbrella:|branch:|tag:|ref:)`)

// descriptionRe pulls the description string out of a mix.exs project
// definition.
var descriptionRe = regexp.MustCompile(`description:\s*"((?:[^"\\]|\\.)*)"`)

// MixLister reads dependency declarations from a single mix.exs manifest.
// A missing manifest yields no dependencies rather than an error, so a
// Project works in directories that are not Mix projects at all.
type MixLister struct {
	fs   afero.Fs
	path string
}

// NewMixLister creates a lister for the manifest at manifestPath
func NewMixLister(fs afero.Fs, manifestPath string) *MixLister {
	return &MixLister{fs: fs, path: manifestPath}
}

// ListDependencies parses the manifest's dependency tuples
func (l *MixLister) ListDependencies() ([]Dependency, error) {
	content, err := afero.ReadFile(l.fs, l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read manifest %s", l.path)
	}

	return parseManifestDeps(string(content)), nil
}

func parseManifestDeps(content string) []Dependency {
	matches := depTupleRe.FindAllStringSubmatch(content, -1)

	seen := make(map[string]bool, len(matches))
	var deps []Dependency
	for _, match := range matches {
		name := match[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		deps = append(deps, Dependency{Name: name})
	}

	return deps
}

func parseManifestDescription(content string) string {
	match := descriptionRe.FindStringSubmatch(content)
	if match == nil {
		return ""
	}
	return match[1]
}

// UmbrellaLister aggregates the dependency declarations of every
// sub-project under apps/. Umbrella sub-projects share the root deps/
// directory, so only names are collected here; path resolution happens
// in Project.Dependencies.
type UmbrellaLister struct {
	fs   afero.Fs
	root string
}

// NewUmbrellaLister creates a lister that scans root/apps/*/mix.exs
func NewUmbrellaLister(fs afero.Fs, root string) *UmbrellaLister {
	return &UmbrellaLister{fs: fs, root: root}
}

// ListDependencies unions the deps of all sub-project manifests
func (l *UmbrellaLister) ListDependencies() ([]Dependency, error) {
	pattern := path.Join(l.root, "apps", "*", manifestFileName)
	manifests, err := doublestar.Glob(afero.NewIOFS(l.fs), pattern)
	if err != nil {
		return nil, errors.Wrap(err, "failed to glob umbrella manifests")
	}

	seen := make(map[string]bool)
	var deps []Dependency
	for _, manifest := range manifests {
		declared, err := NewMixLister(l.fs, manifest).ListDependencies()
		if err != nil {
			return nil, err
		}
		for _, dep := range declared {
			if seen[dep.Name] {
				continue
			}
			seen[dep.Name] = true
			deps = append(deps, dep)
		}
	}

	return deps, nil
}
