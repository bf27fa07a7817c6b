// Package syncer maintains per-package usage-rules sections inside a single
// agent context file (CLAUDE.md, AGENTS.md or similar). Each section is
// bounded by HTML comment markers so repeated syncs replace sections in
// place and never disturb hand-written content around them.
package syncer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Syncer reads and rewrites the target file through an injected afero.Fs.
type Syncer struct {
	fs afero.Fs
}

// New creates a Syncer
func New(fs afero.Fs) *Syncer {
	return &Syncer{fs: fs}
}

// StartMarker returns the opening marker for a package section.
func StartMarker(name string) string {
	return fmt.Sprintf("<!-- %s-start -->", name)
}

// EndMarker returns the closing marker for a package section.
func EndMarker(name string) string {
	return fmt.Sprintf("<!-- %s-end -->", name)
}

// Section renders the managed block for a package: markers around a heading
// and the rules content. Content gets a trailing newline when missing so the
// closing marker always sits on its own line; the content itself is not
// otherwise altered.
func Section(name, content string) string {
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return StartMarker(name) + "\n## " + name + " usage\n" + content + EndMarker(name)
}

func sectionPattern(name string) *regexp.Regexp {
	return regexp.MustCompile("(?s)" + regexp.QuoteMeta(StartMarker(name)) + ".*?" + regexp.QuoteMeta(EndMarker(name)))
}

// managedSectionRe finds the names of all managed sections in a file.
var managedSectionRe = regexp.MustCompile(`(?m)^<!-- ([a-z][a-z0-9_]*)-start -->$`)

// Sync inserts or replaces the package's section in the target file. The
// file is created when absent; new sections append at the end separated by
// a blank line.
func (s *Syncer) Sync(target, name, content string) error {
	existing, err := afero.ReadFile(s.fs, target)
	if err != nil {
		existing = nil
	}

	section := Section(name, content)
	file := string(existing)

	pattern := sectionPattern(name)
	if pattern.MatchString(file) {
		file = pattern.ReplaceAllLiteralString(file, section)
	} else {
		if file != "" && !strings.HasSuffix(file, "\n") {
			file += "\n"
		}
		if file != "" {
			file += "\n"
		}
		file += section + "\n"
	}

	if err := afero.WriteFile(s.fs, target, []byte(file), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", target)
	}
	return nil
}

// Remove deletes the package's section from the target file. It reports
// whether a section was present; a missing file or section is not an error.
// Only the section and its separator newlines are touched; blank-line runs
// elsewhere in the file stay exactly as written.
func (s *Syncer) Remove(target, name string) (bool, error) {
	existing, err := afero.ReadFile(s.fs, target)
	if err != nil {
		return false, nil
	}

	file := string(existing)
	loc := sectionPattern(name).FindStringIndex(file)
	if loc == nil {
		return false, nil
	}

	start, end := loc[0], loc[1]
	if end < len(file) && file[end] == '\n' {
		end++
	}
	for start > 0 && file[start-1] == '\n' {
		start--
	}
	if start > 0 {
		// Keep the newline terminating the preceding line.
		start++
	}

	file = file[:start] + file[end:]
	if start == 0 {
		file = strings.TrimLeft(file, "\n")
	}

	if err := afero.WriteFile(s.fs, target, []byte(file), 0o644); err != nil {
		return false, errors.Wrapf(err, "failed to write %s", target)
	}
	return true, nil
}

// Managed lists the package names of all managed sections in the file, in
// file order. A missing file yields an empty list.
func (s *Syncer) Managed(target string) ([]string, error) {
	content, err := afero.ReadFile(s.fs, target)
	if err != nil {
		return nil, nil
	}

	matches := managedSectionRe.FindAllStringSubmatch(string(content), -1)
	names := make([]string, 0, len(matches))
	for _, match := range matches {
		names = append(names, match[1])
	}
	return names, nil
}
