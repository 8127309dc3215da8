package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"debforge/internal/app"
)

type convertOptions struct {
	settingsOptions
	RequirementFile string
	PipArgs         []string
	AutoInstall     bool
}

func newConvertCommand() *cobra.Command {
	opts := convertOptions{}
	cmd := &cobra.Command{
		Use:   "convert [requirement...]",
		Short: "Convert Python requirements and their dependencies into Debian packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Context(), cmd, args, opts)
		},
	}
	addSettingsFlags(cmd, &opts.settingsOptions)
	cmd.Flags().StringVarP(&opts.RequirementFile, "requirement", "r", "", "Requirements file")
	cmd.Flags().StringSliceVar(&opts.PipArgs, "pip-arg", nil, "Extra argument passed to pip")
	cmd.Flags().BoolVar(&opts.AutoInstall, "auto-install", true, "Install preinstall and build-depends packages with apt-get")
	_ = viper.BindPFlag("pip_args", cmd.Flags().Lookup("pip-arg"))
	viper.SetDefault("auto_install", true)
	return cmd
}

func runConvert(ctx context.Context, cmd *cobra.Command, args []string, opts convertOptions) error {
	service := newAppService()
	result, err := service.Convert(ctx, app.ConvertRequest{
		Settings:        resolveSettings(cmd, opts.settingsOptions),
		Requirements:    args,
		RequirementFile: opts.RequirementFile,
		PipArgs:         resolveStrings(cmd, opts.PipArgs, "pip_args", "pip-arg"),
		AutoInstall:     resolveBool(cmd, opts.AutoInstall, "auto_install", "auto-install"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(result.Relations, ", "))
	return nil
}
