// Package skills generates skill files for AI coding assistants from
// package usage rules. A skill is a directory holding a SKILL.md file whose
// YAML frontmatter names the skill and describes when to use it, followed by
// the package's usage rules verbatim.
package skills

// FileName is the file each generated skill directory contains.
const FileName = "SKILL.md"

// DefaultOutputDir is where skills are generated unless overridden.
const DefaultOutputDir = ".claude/skills"

// Skill represents a generated skill with its metadata
type Skill struct {
	Name        string // Package identifier from frontmatter
	Description string // Fixed guidance line for assistant decision-making
	Directory   string // Full path to the skill directory
	Content     string // Body of SKILL.md without the frontmatter
}
