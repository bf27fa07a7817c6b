package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/barnabasJ/usage-rules/pkg/logger"
	"github.com/barnabasJ/usage-rules/pkg/presenter"
	"github.com/barnabasJ/usage-rules/pkg/project"
	"github.com/barnabasJ/usage-rules/pkg/skills"
)

// WatchConfig holds configuration for the watch command
type WatchConfig struct {
	OutputDir      string
	IncludePattern string
	DebounceTime   int
}

// NewWatchConfig creates a WatchConfig with default values
func NewWatchConfig() *WatchConfig {
	return &WatchConfig{
		OutputDir:      skills.DefaultOutputDir,
		IncludePattern: "",
		DebounceTime:   500,
	}
}

// Validate validates the WatchConfig and returns an error if invalid
func (c *WatchConfig) Validate() error {
	if c.DebounceTime < 0 {
		return errors.Errorf("debounce time cannot be negative: %d", c.DebounceTime)
	}
	if c.IncludePattern != "" {
		if _, err := glob.Compile(c.IncludePattern); err != nil {
			return errors.Wrapf(err, "invalid include pattern %q", c.IncludePattern)
		}
	}
	return nil
}

// fileEvent is a debounced rules-file change
type fileEvent struct {
	Package string
	Path    string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate skill files when usage rules change",
	Long: `Continuously watches deps/*/usage-rules.md and regenerates the affected
package's skill file whenever its rules change. Useful while editing rules
for a path dependency.`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		config := getWatchConfigFromFlags(cmd)
		if err := config.Validate(); err != nil {
			presenter.Error(err, "Invalid configuration")
			os.Exit(1)
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			presenter.Warning("Cancellation requested, shutting down...")
			cancel()
		}()

		runWatchMode(ctx, afero.NewOsFs(), config)
	},
}

func init() {
	defaults := NewWatchConfig()
	watchCmd.Flags().String("output-dir", defaults.OutputDir, "Directory to generate skill files into")
	watchCmd.Flags().StringP("include", "p", defaults.IncludePattern, "Package name pattern to include (e.g. 'phoenix_*')")
	watchCmd.Flags().IntP("debounce", "d", defaults.DebounceTime, "Debounce time in milliseconds for file change events")

	rootCmd.AddCommand(watchCmd)
}

func getWatchConfigFromFlags(cmd *cobra.Command) *WatchConfig {
	config := NewWatchConfig()
	config.OutputDir = outputDirFromFlags(cmd)
	if includePattern, err := cmd.Flags().GetString("include"); err == nil {
		config.IncludePattern = includePattern
	}
	if debounceTime, err := cmd.Flags().GetInt("debounce"); err == nil {
		config.DebounceTime = debounceTime
	}
	return config
}

func runWatchMode(ctx context.Context, fs afero.Fs, config *WatchConfig) {
	log := logger.G(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		presenter.Error(err, "Failed to create file watcher")
		log.WithError(err).Fatal("Failed to create file watcher")
	}
	defer watcher.Close()

	var include glob.Glob
	if config.IncludePattern != "" {
		include = glob.MustCompile(config.IncludePattern)
	}

	proj := project.New(fs, ".")
	gen := skills.NewGenerator(fs, skills.WithOutputDir(config.OutputDir))

	events := make(chan fileEvent)
	debounced := make(chan fileEvent)

	go debounceFileEvents(ctx, events, debounced, time.Duration(config.DebounceTime)*time.Millisecond)

	go func() {
		for {
			select {
			case event, ok := <-debounced:
				if !ok {
					return
				}
				regenerateSkill(ctx, proj, gen, event.Package)
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if filepath.Base(event.Name) != project.RulesFileName {
					continue
				}
				pkg := filepath.Base(filepath.Dir(event.Name))
				if include != nil && !include.Match(pkg) {
					log.WithField("package", pkg).Debug("package excluded by include pattern")
					continue
				}
				events <- fileEvent{Package: pkg, Path: event.Name}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				presenter.Error(err, "File watcher error")
				log.WithError(err).Error("Error watching files")
			case <-ctx.Done():
				return
			}
		}
	}()

	watched, err := addRulesDirs(watcher, fs)
	if err != nil {
		presenter.Error(err, "Failed to watch dependency directories")
		log.WithError(err).Fatal("Failed to watch dependency directories")
	}
	if watched == 0 {
		presenter.Warning("No dependencies found under deps/; watching deps/ for new packages")
	}

	presenter.Info("Watching usage rules for changes... Press Ctrl+C to stop")
	log.WithField("directories", watched).Info("File watcher initialized")

	<-ctx.Done()
}

// addRulesDirs watches deps/ itself plus every installed dependency
// directory. fsnotify is not recursive, so each package directory is added
// individually.
func addRulesDirs(watcher *fsnotify.Watcher, fs afero.Fs) (int, error) {
	if ok, _ := afero.DirExists(fs, project.DepsDir); !ok {
		return 0, errors.Errorf("%s directory not found", project.DepsDir)
	}

	if err := watcher.Add(project.DepsDir); err != nil {
		return 0, err
	}

	entries, err := afero.ReadDir(fs, project.DepsDir)
	if err != nil {
		return 0, err
	}

	watched := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := watcher.Add(filepath.Join(project.DepsDir, entry.Name())); err != nil {
			continue
		}
		watched++
	}

	return watched, nil
}

func regenerateSkill(ctx context.Context, proj *project.Project, gen *skills.Generator, name string) {
	log := logger.G(ctx).WithField("package", name)

	content, err := proj.ReadRules(name)
	if err != nil {
		presenter.Warning(fmt.Sprintf("Failed to read usage rules for %s: %v", name, err))
		log.WithError(err).Error("failed to read usage rules")
		return
	}

	path, err := gen.Generate(name, proj.Description(name), content)
	if err != nil {
		presenter.Warning(fmt.Sprintf("Failed to generate skill for %s: %v", name, err))
		log.WithError(err).Error("failed to generate skill")
		return
	}

	presenter.Success(fmt.Sprintf("Regenerated %s", path))
	log.WithField("path", path).Debug("skill file regenerated")
}

// debounceFileEvents coalesces rapid successive changes to the same package
// into a single event.
func debounceFileEvents(ctx context.Context, input <-chan fileEvent, output chan<- fileEvent, delay time.Duration) {
	pending := make(map[string]*time.Timer)

	for {
		select {
		case event, ok := <-input:
			if !ok {
				for _, timer := range pending {
					timer.Stop()
				}
				return
			}
			if timer, exists := pending[event.Package]; exists {
				timer.Stop()
				delete(pending, event.Package)
			}

			eventCopy := event
			pending[event.Package] = time.AfterFunc(delay, func() {
				select {
				case output <- eventCopy:
				case <-ctx.Done():
				}
			})
		case <-ctx.Done():
			for _, timer := range pending {
				timer.Stop()
			}
			return
		}
	}
}
