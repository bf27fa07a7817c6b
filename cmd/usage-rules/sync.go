package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/barnabasJ/usage-rules/pkg/logger"
	"github.com/barnabasJ/usage-rules/pkg/presenter"
	"github.com/barnabasJ/usage-rules/pkg/project"
	"github.com/barnabasJ/usage-rules/pkg/syncer"
)

// SyncConfig holds configuration for the sync command
type SyncConfig struct {
	All    bool
	List   bool
	Remove bool
}

// NewSyncConfig creates a SyncConfig with default values
func NewSyncConfig() *SyncConfig {
	return &SyncConfig{
		All:    false,
		List:   false,
		Remove: false,
	}
}

var syncCmd = &cobra.Command{
	Use:   "sync <file> [packages...]",
	Short: "Maintain usage-rules sections in a single agent context file",
	Long: `Collect package usage rules into one agent context file (CLAUDE.md,
AGENTS.md, ...). Each package gets a section bounded by HTML comment
markers, so re-running the sync replaces sections in place and leaves the
rest of the file untouched.

Examples:
  usage-rules sync CLAUDE.md ash
  usage-rules sync CLAUDE.md --all
  usage-rules sync CLAUDE.md --remove ash
  usage-rules sync CLAUDE.md --remove --all`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getSyncConfigFromFlags(cmd)
		runSync(cmd.Context(), afero.NewOsFs(), config, args[0], args[1:])
	},
}

func init() {
	defaults := NewSyncConfig()
	syncCmd.Flags().Bool("all", defaults.All, "Process every dependency that ships usage rules")
	syncCmd.Flags().Bool("list", defaults.List, "List the selected packages without touching the file")
	syncCmd.Flags().Bool("remove", defaults.Remove, "Remove the packages' sections instead of syncing them")

	rootCmd.AddCommand(syncCmd)
}

func getSyncConfigFromFlags(cmd *cobra.Command) *SyncConfig {
	config := NewSyncConfig()
	if all, err := cmd.Flags().GetBool("all"); err == nil {
		config.All = all
	}
	if list, err := cmd.Flags().GetBool("list"); err == nil {
		config.List = list
	}
	if remove, err := cmd.Flags().GetBool("remove"); err == nil {
		config.Remove = remove
	}
	return config
}

func runSync(ctx context.Context, fs afero.Fs, config *SyncConfig, target string, args []string) {
	proj := project.New(fs, ".")
	s := syncer.New(fs)

	var selected []string
	var err error
	if config.Remove && config.All && len(args) == 0 {
		// Removing everything operates on the file's own sections, not on
		// the current dependency set, so stale sections can be cleaned up.
		selected, err = s.Managed(target)
	} else {
		selected, err = selectPackages(proj, args, config.All)
	}
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
		if config.Remove {
			presenter.Info(fmt.Sprintf("No managed sections in %s", target))
		} else {
			presenter.Info("No packages with usage rules found")
		}
		return
	}

	if config.Remove {
		removeSections(ctx, s, target, selected)
		return
	}

	syncSections(ctx, proj, s, target, selected)
}

func syncSections(ctx context.Context, proj *project.Project, s *syncer.Syncer, target string, selected []string) {
	log := logger.G(ctx)

	var errs *multierror.Error
	for _, name := range selected {
		if !proj.HasRules(name) {
			presenter.Warning(fmt.Sprintf("No usage rules found for %s", name))
			errs = multierror.Append(errs, fmt.Errorf("%s: usage rules file not found", name))
			continue
		}

		content, err := proj.ReadRules(name)
		if err != nil {
			presenter.Warning(fmt.Sprintf("Failed to read usage rules for %s: %v", name, err))
			errs = multierror.Append(errs, err)
			continue
		}

		if err := s.Sync(target, name, content); err != nil {
			presenter.Warning(fmt.Sprintf("Failed to sync %s: %v", name, err))
			errs = multierror.Append(errs, err)
			continue
		}

		presenter.Success(fmt.Sprintf("Synced %s into %s", name, target))
		log.WithField("package", name).WithField("target", target).Debug("section synced")
	}

	if err := errs.ErrorOrNil(); err != nil {
		log.WithError(err).Debug("some packages were skipped")
	}
}

func removeSections(ctx context.Context, s *syncer.Syncer, target string, selected []string) {
	log := logger.G(ctx)

	for _, name := range selected {
		removed, err := s.Remove(target, name)
		if err != nil {
			presenter.Warning(fmt.Sprintf("Failed to remove section for %s: %v", name, err))
			continue
		}
		if !removed {
			presenter.Warning(fmt.Sprintf("No managed section for %s in %s", name, target))
			continue
		}
		presenter.Success(fmt.Sprintf("Removed %s from %s", name, target))
		log.WithField("package", name).WithField("target", target).Debug("section removed")
	}
}
