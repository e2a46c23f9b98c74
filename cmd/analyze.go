package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/skillbuddy/internal/profile"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Extract a profile from the resume and review it",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("save-profile", "s", "", "save the profile and its review to a yaml or json file")
}

func analyze(cmd *cobra.Command) {
	ctx := context.Background()
	e := setup(ctx)

	text := e.readResume()
	doc, err := profile.NewAnalyzer(e.generator, e.logger).Review(ctx, text, targetRole)
	if err != nil {
		e.fatal("analyzing resume", err)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		e.logger.Fatal("rendering analysis", zap.Error(err))
	}
	fmt.Fprint(os.Stdout, string(out))

	if path, _ := cmd.Flags().GetString("save-profile"); path != "" {
		if err := profile.Save(path, doc); err != nil {
			e.logger.Fatal("saving profile", zap.String("path", path), zap.Error(err))
		}
		e.logger.Info("profile saved", zap.String("path", path))
	}
}
