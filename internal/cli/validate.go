package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"debforge/internal/app"
)

type settingsOptions struct {
	NamePrefix      string
	Repository      string
	DependencyStore string
	PipCache        string
}

// addSettingsFlags registers the overrides of the general config section.
// Their viper keys match the config file layout.
func addSettingsFlags(cmd *cobra.Command, opts *settingsOptions) {
	cmd.Flags().StringVar(&opts.NamePrefix, "name-prefix", "", "Prefix of generated Debian package names")
	cmd.Flags().StringVar(&opts.Repository, "repository", "", "Directory holding built .deb files")
	cmd.Flags().StringVar(&opts.DependencyStore, "dependency-store", "", "Directory holding converted dependency lists")
	cmd.Flags().StringVar(&opts.PipCache, "pip-cache", "", "Local source distribution cache")
}

func resolveSettings(cmd *cobra.Command, opts settingsOptions) app.Settings {
	return app.Settings{
		ConfigPath:      viper.GetString("config"),
		NamePrefix:      resolveString(cmd, opts.NamePrefix, "general.name_prefix", "name-prefix"),
		Repository:      resolveString(cmd, opts.Repository, "general.repository", "repository"),
		DependencyStore: resolveString(cmd, opts.DependencyStore, "general.dependency_store", "dependency-store"),
		PipCache:        resolveString(cmd, opts.PipCache, "general.pip_cache", "pip-cache"),
	}
}

func newValidateCommand() *cobra.Command {
	opts := settingsOptions{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the conversion config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd.Context(), cmd, opts)
		},
	}
	addSettingsFlags(cmd, &opts)
	return cmd
}

func runValidate(ctx context.Context, cmd *cobra.Command, opts settingsOptions) error {
	service := newAppService()
	result, err := service.Validate(ctx, app.ValidateRequest{
		Settings: resolveSettings(cmd, opts),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "validated: prefix=%s replacements=%d packages=%d\n",
		result.NamePrefix, result.Replacements, result.Packages)
	return nil
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveStrings(cmd *cobra.Command, values []string, key string, flagName string) []string {
	if cmd == nil {
		if len(values) > 0 {
			return values
		}
		return viper.GetStringSlice(key)
	}
	if flagChanged(cmd, flagName) {
		return values
	}
	return viper.GetStringSlice(key)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
