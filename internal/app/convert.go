package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"debforge/internal/core"
	"debforge/internal/types"
)

// Convert turns a requirement set into Debian packages and records the
// resulting relations in the dependency store. The first failing package
// aborts the run.
func (s Service) Convert(ctx context.Context, req ConvertRequest) (ConvertResult, error) {
	if err := s.checkPorts(); err != nil {
		return ConvertResult{}, err
	}
	set, err := requirementSet(req.Requirements, req.RequirementFile, req.PipArgs)
	if err != nil {
		return ConvertResult{}, err
	}
	cfg, err := s.loadConfig(ctx, req.Settings)
	if err != nil {
		return ConvertResult{}, err
	}
	cacheDir, err := pipCacheDir(cfg.General.PipCache)
	if err != nil {
		return ConvertResult{}, err
	}

	tempDir := s.TempDir
	if tempDir == nil {
		tempDir = os.MkdirTemp
	}
	buildDir, err := tempDir("", "debforge-")
	if err != nil {
		return ConvertResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create build directory").
			WithCause(err)
	}
	defer os.RemoveAll(buildDir)
	log.Ctx(ctx).Debug().Str("dir", buildDir).Msg("build directory created")

	if len(cfg.Preinstall) > 0 {
		if req.AutoInstall {
			if err := s.System.Install(ctx, cfg.Preinstall); err != nil {
				return ConvertResult{}, err
			}
		} else {
			log.Ctx(ctx).Warn().Strs("packages", cfg.Preinstall).Msg("auto install disabled, skipping preinstall")
		}
	}

	dists, err := core.NewFetcher(s.Sources(cacheDir)).Fetch(ctx, set, buildDir)
	if err != nil {
		return ConvertResult{}, err
	}
	candidates := make([]types.Package, 0, len(dists))
	for _, dist := range dists {
		pkg, err := core.NewPackage(dist, cfg.General.NamePrefix)
		if err != nil {
			return ConvertResult{}, err
		}
		candidates = append(candidates, pkg)
	}
	buildSet := core.NewGraphResolver(cfg.Ignore).Resolve(ctx, candidates, cfg.Replacements)
	log.Ctx(ctx).Info().
		Int("candidates", len(candidates)).
		Int("build_set", len(buildSet)).
		Msg("dependency graph resolved")

	orchestrator := core.NewOrchestrator(
		cfg,
		s.Toolchain,
		s.System,
		s.Artifacts(cfg.General.Repository),
		s.Inspector,
	)
	orchestrator.AutoInstall = req.AutoInstall

	result := ConvertResult{}
	for _, pkg := range buildSet {
		converted, err := orchestrator.Convert(ctx, pkg)
		if err != nil {
			return ConvertResult{}, err
		}
		result.Results = append(result.Results, converted)
		result.Relations = append(result.Relations, converted.Artifact.Relation())
	}

	path, err := s.Results(cfg.General.DependencyStore).Persist(set.Content, result.Relations)
	if err != nil {
		return ConvertResult{}, err
	}
	result.DependencyFile = path
	log.Ctx(ctx).Info().
		Str("file", path).
		Int("packages", len(result.Relations)).
		Msg("dependencies persisted")
	return result, nil
}

func (s Service) checkPorts() error {
	if s.Toolchain == nil || s.System == nil || s.Inspector == nil ||
		s.Sources == nil || s.Artifacts == nil || s.Results == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("service is missing conversion ports")
	}
	return nil
}

// requirementSet builds the set from either a requirements file or inline
// requirements. Its content is what keys the dependency store.
func requirementSet(requirements []string, file string, pipArgs []string) (types.RequirementSet, error) {
	var inline []string
	for _, requirement := range requirements {
		if trimmed := strings.TrimSpace(requirement); trimmed != "" {
			inline = append(inline, trimmed)
		}
	}
	file = strings.TrimSpace(file)
	switch {
	case file != "" && len(inline) > 0:
		return types.RequirementSet{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("give requirements either inline or as a file, not both")
	case file != "":
		content, err := os.ReadFile(file)
		if err != nil {
			return types.RequirementSet{}, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("requirements file %s not found", file)).
				WithCause(err)
		}
		return types.RequirementSet{File: file, PipArgs: pipArgs, Content: content}, nil
	case len(inline) > 0:
		return types.RequirementSet{
			Requirements: inline,
			PipArgs:      pipArgs,
			Content:      types.InlineRequirementContent(inline),
		}, nil
	default:
		return types.RequirementSet{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one requirement is required")
	}
}

func pipCacheDir(configured string) (string, error) {
	if strings.TrimSpace(configured) != "" {
		return configured, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("general.pip_cache is not set and no user cache directory exists").
			WithCause(err)
	}
	return filepath.Join(base, "debforge", "sdists"), nil
}
