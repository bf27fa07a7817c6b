package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/barnabasJ/usage-rules/pkg/logger"
	"github.com/barnabasJ/usage-rules/pkg/presenter"
	"github.com/barnabasJ/usage-rules/pkg/project"
	"github.com/barnabasJ/usage-rules/pkg/skills"
)

// SkillsConfig holds configuration for the skills command
type SkillsConfig struct {
	OutputDir string
	All       bool
	List      bool
}

// NewSkillsConfig creates a SkillsConfig with default values
func NewSkillsConfig() *SkillsConfig {
	return &SkillsConfig{
		OutputDir: skills.DefaultOutputDir,
		All:       false,
		List:      false,
	}
}

var skillsCmd = &cobra.Command{
	Use:   "skills [packages...]",
	Short: "Generate skill files for packages that ship usage rules",
	Long: `Generate a SKILL.md file per package from the usage-rules.md each package
ships in deps/. Packages can be named explicitly, or discovered with --all
by scanning the project's declared dependencies (including umbrella
sub-projects).

Examples:
  usage-rules skills ash phoenix_live_view
  usage-rules skills --all
  usage-rules skills --all --list
  usage-rules skills --all --output-dir .claude/skills`,
	Run: func(cmd *cobra.Command, args []string) {
		config := getSkillsConfigFromFlags(cmd)
		runSkills(cmd.Context(), afero.NewOsFs(), config, args)
	},
}

func init() {
	defaults := NewSkillsConfig()
	skillsCmd.Flags().String("output-dir", defaults.OutputDir, "Directory to generate skill files into")
	skillsCmd.Flags().Bool("all", defaults.All, "Process every dependency that ships usage rules")
	skillsCmd.Flags().Bool("list", defaults.List, "List the selected packages without generating files")

	rootCmd.AddCommand(skillsCmd)
}

func getSkillsConfigFromFlags(cmd *cobra.Command) *SkillsConfig {
	config := NewSkillsConfig()
	config.OutputDir = outputDirFromFlags(cmd)
	if all, err := cmd.Flags().GetBool("all"); err == nil {
		config.All = all
	}
	if list, err := cmd.Flags().GetBool("list"); err == nil {
		config.List = list
	}
	return config
}

// outputDirFromFlags resolves the output directory: an explicit flag wins,
// otherwise the viper-resolved setting (env var or config file) applies.
func outputDirFromFlags(cmd *cobra.Command) string {
	if cmd.Flags().Changed("output-dir") {
		if dir, err := cmd.Flags().GetString("output-dir"); err == nil {
			return dir
		}
	}
	return viper.GetString("output_dir")
}

func runSkills(ctx context.Context, fs afero.Fs, config *SkillsConfig, args []string) {
	proj := project.New(fs, ".")

	selected, err := selectPackages(proj, args, config.All)
	if err != nil {
		presenter.Error(err, "Failed to discover dependencies")
		os.Exit(1)
	}

	if config.List {
		if len(selected) == 0 {
			presenter.Info("No packages with usage rules found")
			return
		}
		presenter.Info(fmt.Sprintf("Packages with usage rules: %s", strings.Join(selected, ", ")))
		return
	}

	if len(selected) == 0 {
		presenter.Info("No packages with usage rules found")
		return
	}

	gen := skills.NewGenerator(fs, skills.WithOutputDir(config.OutputDir))
	created, err := generateSkills(ctx, proj, gen, selected)
	if err != nil {
		logger.G(ctx).WithError(err).WithField("generated", len(created)).Debug("some packages were skipped")
	}
}

// selectPackages resolves the packages to process. Explicit names win over
// --all; without either the selection is empty.
func selectPackages(proj *project.Project, args []string, all bool) ([]string, error) {
	if len(args) > 0 {
		names := make([]string, 0, len(args))
		for _, arg := range args {
			names = append(names, identifier(arg))
		}
		return names, nil
	}

	if !all {
		return nil, nil
	}

	confirmed, err := proj.WithUsageRules(nil)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(confirmed))
	for _, dep := range confirmed {
		names = append(names, dep.Name)
	}
	return names, nil
}

// identifier normalizes a user-supplied package name to identifier form:
// lowercased, surrounding whitespace trimmed.
func identifier(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// generateSkills processes each selected package independently, in selection
// order. Missing or unreadable rules files warn and skip; one bad package
// never aborts the batch. The returned error aggregates the per-package
// failures and is only ever logged, never fatal.
func generateSkills(ctx context.Context, proj *project.Project, gen *skills.Generator, selected []string) ([]string, error) {
	log := logger.G(ctx)

	var created []string
	var errs *multierror.Error
	for _, name := range selected {
		if !proj.HasRules(name) {
			presenter.Warning(fmt.Sprintf("No usage rules found for %s", name))
			errs = multierror.Append(errs, fmt.Errorf("%s: usage rules file not found", name))
			log.WithField("package", name).Debug("usage rules file missing, skipping")
			continue
		}

		content, err := proj.ReadRules(name)
		if err != nil {
			presenter.Warning(fmt.Sprintf("Failed to read usage rules for %s: %v", name, err))
			errs = multierror.Append(errs, err)
			continue
		}

		path, err := gen.Generate(name, proj.Description(name), content)
		if err != nil {
			presenter.Warning(fmt.Sprintf("Failed to generate skill for %s: %v", name, err))
			errs = multierror.Append(errs, err)
			continue
		}

		created = append(created, path)
		presenter.Success(fmt.Sprintf("Generated %s", path))
		log.WithField("package", name).WithField("path", path).Debug("skill file generated")
	}

	return created, errs.ErrorOrNil()
}
