package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"debforge/internal/shared"
	"debforge/internal/types"
)

type ConfigValidator struct{}

func NewConfigValidator() ConfigValidator {
	return ConfigValidator{}
}

func (v ConfigValidator) ValidateConfig(ctx context.Context, cfg types.ConversionConfig) error {
	if strings.TrimSpace(cfg.General.Repository) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("general.repository must be set")
	}
	if strings.TrimSpace(cfg.General.DependencyStore) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("general.dependency_store must be set")
	}
	if prefix := cfg.General.NamePrefix; prefix != "" && normalizeDebName(prefix) != prefix {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("general.name_prefix %q is not a valid Debian package name", prefix))
	}
	for _, name := range sortedKeys(cfg.Replacements) {
		if strings.TrimSpace(name) == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("replacements must not contain an empty package name")
		}
		if strings.Contains(cfg.Replacements[name], "\n") {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("replacement for %s must be a single line", name))
		}
	}
	if err := validateNames("ignore", cfg.Ignore); err != nil {
		return err
	}
	if err := validateNames("preinstall", cfg.Preinstall); err != nil {
		return err
	}
	for _, name := range sortedKeys(cfg.Packages) {
		if err := validatePackageSettings(name, cfg.Packages[name]); err != nil {
			return err
		}
	}
	log.Ctx(ctx).Debug().
		Int("replacements", len(cfg.Replacements)).
		Int("packages", len(cfg.Packages)).
		Msg("conversion config validated")
	return nil
}

func validateNames(section string, names []string) error {
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("%s must not contain empty entries", section))
		}
	}
	return nil
}

func validatePackageSettings(name string, settings map[string]string) error {
	if shared.NormalizePipName(name) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("packages must not contain an empty package name")
	}
	for _, key := range sortedKeys(settings) {
		if strings.TrimSpace(key) == "" || strings.ContainsAny(key, ": \t") {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("package %s has invalid field name %q", name, key))
		}
	}
	if version, ok := settings["version"]; ok && !IsDebianVersion(version) {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("package %s overrides version with invalid value %q", name, version))
	}
	return nil
}

func sortedKeys[V any](values map[string]V) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
