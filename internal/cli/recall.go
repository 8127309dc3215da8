package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"debforge/internal/app"
)

type recallOptions struct {
	settingsOptions
	RequirementFile string
}

func newRecallCommand() *cobra.Command {
	opts := recallOptions{}
	cmd := &cobra.Command{
		Use:   "recall [requirement...]",
		Short: "Print the Debian dependencies of an already converted requirement set",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecall(cmd.Context(), cmd, args, opts)
		},
	}
	addSettingsFlags(cmd, &opts.settingsOptions)
	cmd.Flags().StringVarP(&opts.RequirementFile, "requirement", "r", "", "Requirements file")
	return cmd
}

func runRecall(ctx context.Context, cmd *cobra.Command, args []string, opts recallOptions) error {
	service := newAppService()
	result, err := service.Recall(ctx, app.RecallRequest{
		Settings:        resolveSettings(cmd, opts.settingsOptions),
		Requirements:    args,
		RequirementFile: opts.RequirementFile,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Dependencies)
	return nil
}
