package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"debforge/internal/core"
	"debforge/internal/types"
)

func (s Service) Validate(ctx context.Context, req ValidateRequest) (ValidateResult, error) {
	if strings.TrimSpace(req.ConfigPath) == "" {
		return ValidateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("config file path is required")
	}
	cfg, err := s.loadConfig(ctx, req.Settings)
	if err != nil {
		return ValidateResult{}, err
	}
	return ValidateResult{
		NamePrefix:   cfg.General.NamePrefix,
		Replacements: len(cfg.Replacements),
		Packages:     len(cfg.Packages),
	}, nil
}

// loadConfig reads the conversion config, applies command line overrides
// and validates the result.
func (s Service) loadConfig(ctx context.Context, settings Settings) (types.ConversionConfig, error) {
	if s.ConfigLoader == nil {
		return types.ConversionConfig{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("service requires a config loader")
	}
	cfg, err := s.ConfigLoader.Load(strings.TrimSpace(settings.ConfigPath))
	if err != nil {
		return types.ConversionConfig{}, err
	}
	if value := strings.TrimSpace(settings.NamePrefix); value != "" {
		cfg.General.NamePrefix = value
	}
	if value := strings.TrimSpace(settings.Repository); value != "" {
		cfg.General.Repository = value
	}
	if value := strings.TrimSpace(settings.DependencyStore); value != "" {
		cfg.General.DependencyStore = value
	}
	if value := strings.TrimSpace(settings.PipCache); value != "" {
		cfg.General.PipCache = value
	}
	if err := core.NewConfigValidator().ValidateConfig(ctx, cfg); err != nil {
		return types.ConversionConfig{}, err
	}
	return cfg, nil
}
