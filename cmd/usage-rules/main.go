package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/barnabasJ/usage-rules/pkg/logger"
	"github.com/barnabasJ/usage-rules/pkg/skills"
)

// Config holds global settings resolved from flags, environment variables
// and the optional config file, in that precedence order.
type Config struct {
	OutputDir string `mapstructure:"output_dir"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

func init() {
	viper.SetEnvPrefix("USAGE_RULES")
	viper.AutomaticEnv()

	viper.SetConfigName("usage-rules")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/usage-rules")

	viper.SetDefault("output_dir", skills.DefaultOutputDir)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "fmt")

	// Config file is optional
	_ = viper.ReadInConfig()
}

// loadConfig decodes the merged viper settings into a Config. Weakly typed
// decoding keeps string-valued environment variables usable for every field.
func loadConfig() (Config, error) {
	var config Config

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &config,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return config, errors.Wrap(err, "failed to create config decoder")
	}
	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return config, errors.Wrap(err, "failed to decode configuration")
	}

	return config, nil
}

var rootCmd = &cobra.Command{
	Use:   "usage-rules",
	Short: "Generate AI assistant context from package usage rules",
	Long: `usage-rules discovers which of your Mix project's dependencies ship a
usage-rules.md file and turns them into context for AI coding assistants:
per-package skill files (SKILL.md) or managed sections in a single agent
context file such as CLAUDE.md.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}
		if err := logger.SetLogLevel(config.LogLevel); err != nil {
			return errors.Wrapf(err, "invalid log level %q", config.LogLevel)
		}
		logger.SetLogFormat(config.LogFormat)
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func bindRootFlags(flags *pflag.FlagSet) {
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "fmt", "Log format (fmt, json)")

	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("log_format", flags.Lookup("log-format"))
}

func main() {
	bindRootFlags(rootCmd.PersistentFlags())

	ctx := logger.WithLogger(context.Background(), logger.L)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
