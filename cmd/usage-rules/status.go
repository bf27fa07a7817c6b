package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/barnabasJ/usage-rules/pkg/presenter"
	"github.com/barnabasJ/usage-rules/pkg/skills"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List the generated skill files",
	Long:  `List every generated skill in the output directory with its name, directory and description.`,
	Run: func(cmd *cobra.Command, _ []string) {
		statusSkills(afero.NewOsFs(), outputDirFromFlags(cmd))
	},
}

func init() {
	statusCmd.Flags().String("output-dir", skills.DefaultOutputDir, "Directory the skill files were generated into")

	rootCmd.AddCommand(statusCmd)
}

func statusSkills(fs afero.Fs, outputDir string) {
	generated, err := skills.Discover(fs, outputDir)
	if err != nil {
		presenter.Error(err, "Failed to scan generated skills")
		os.Exit(1)
	}

	if len(generated) == 0 {
		presenter.Info("No skills generated")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDIRECTORY\tDESCRIPTION")
	fmt.Fprintln(tw, "----\t---------\t-----------")

	for _, skill := range generated {
		description := skill.Description
		if len(description) > 60 {
			description = description[:57] + "..."
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", skill.Name, skill.Directory, description)
	}
	tw.Flush()
}
