package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"debforge/internal/ports"
	"debforge/internal/shared"
	"debforge/internal/types"
)

// SourceFixup adjusts an unpacked source tree before it is debianized.
type SourceFixup func(ctx context.Context, pkg types.Package) error

// Orchestrator drives a package through the build state machine:
// unbuilt, debianized, metadata patched, build deps installed, built,
// collected. Any failing transition ends in the failed state.
type Orchestrator struct {
	Config      types.ConversionConfig
	Toolchain   ports.ToolchainPort
	System      ports.SystemPackagesPort
	Artifacts   ports.ArtifactRepositoryPort
	Inspector   ports.ArtifactInspectorPort
	Patcher     MetadataPatcher
	Fixups      []SourceFixup
	AutoInstall bool
}

func NewOrchestrator(
	config types.ConversionConfig,
	toolchain ports.ToolchainPort,
	system ports.SystemPackagesPort,
	artifacts ports.ArtifactRepositoryPort,
	inspector ports.ArtifactInspectorPort,
) Orchestrator {
	return Orchestrator{
		Config:      config,
		Toolchain:   toolchain,
		System:      system,
		Artifacts:   artifacts,
		Inspector:   inspector,
		Patcher:     NewMetadataPatcher(config.General.NamePrefix),
		Fixups:      DefaultSourceFixups(),
		AutoInstall: true,
	}
}

// buildRun is the mutable record of one package moving through the
// state machine.
type buildRun struct {
	pkg       types.Package
	state     types.BuildState
	builtPath string
	artifact  types.BuildArtifact
}

// Convert produces the artifact for pkg, reusing a matching artifact from
// the repository when one exists.
func (o Orchestrator) Convert(ctx context.Context, pkg types.Package) (types.ConversionResult, error) {
	if o.Toolchain == nil || o.System == nil || o.Artifacts == nil || o.Inspector == nil {
		return types.ConversionResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("orchestrator requires toolchain, system, artifact and inspector ports")
	}
	assert.NotEmpty(ctx, pkg.NativeName, "package native name must be set")

	cached, found, err := o.Artifacts.Find(pkg.NativeName)
	if err != nil {
		return failedResult(pkg), stageError(pkg, types.BuildStateUnbuilt, err)
	}
	if found {
		artifact, err := o.Inspector.Inspect(cached)
		if err != nil {
			return failedResult(pkg), stageError(pkg, types.BuildStateUnbuilt, err)
		}
		pkg.ArtifactPath = artifact.Path
		log.Ctx(ctx).Info().
			Str("package", pkg.NativeName).
			Str("artifact", cached).
			Msg("existing build found, skipping build")
		return types.ConversionResult{
			Package:  pkg,
			Artifact: artifact,
			State:    types.BuildStateCollected,
			Cached:   true,
		}, nil
	}

	log.Ctx(ctx).Info().Str("package", pkg.Name).Str("version", pkg.Version).Msg("starting conversion")
	run := &buildRun{pkg: pkg, state: types.BuildStateUnbuilt}
	for !run.state.Terminal() {
		next, err := o.step(ctx, run)
		if err != nil {
			failed := run.state
			run.state = types.BuildStateFailed
			return failedResult(run.pkg), stageError(run.pkg, failed, err)
		}
		log.Ctx(ctx).Debug().
			Str("package", run.pkg.Name).
			Str("from", string(run.state)).
			Str("to", string(next)).
			Msg("build state changed")
		run.state = next
	}
	log.Ctx(ctx).Info().
		Str("package", run.pkg.Name).
		Str("native", run.artifact.Package).
		Msg("package converted")
	return types.ConversionResult{
		Package:  run.pkg,
		Artifact: run.artifact,
		State:    run.state,
	}, nil
}

// step performs the transition leaving run.state and returns the next
// state. It never mutates run.state itself.
func (o Orchestrator) step(ctx context.Context, run *buildRun) (types.BuildState, error) {
	pkg := run.pkg
	settings := o.Config.PackageSettings(pkg.Name)
	switch run.state {
	case types.BuildStateUnbuilt:
		for _, fixup := range o.Fixups {
			if err := fixup(ctx, pkg); err != nil {
				return types.BuildStateFailed, err
			}
		}
		if err := o.Toolchain.Debianize(ctx, pkg.Directory, o.Config.General.IgnoreInstallRequires); err != nil {
			return types.BuildStateFailed, err
		}
		return types.BuildStateDebianized, nil

	case types.BuildStateDebianized:
		if err := o.Patcher.Patch(ctx, pkg, o.Config.Replacements, settings); err != nil {
			return types.BuildStateFailed, err
		}
		if script := strings.TrimSpace(settings[types.PackageKeyScript]); script != "" {
			log.Ctx(ctx).Debug().Str("package", pkg.Name).Str("script", script).Msg("applying package script")
			if err := o.Toolchain.RunScript(ctx, pkg.Directory, script); err != nil {
				return types.BuildStateFailed, err
			}
		}
		return types.BuildStateMetadataPatched, nil

	case types.BuildStateMetadataPatched:
		deps := shared.SplitList(settings[types.PackageKeyBuildDepends])
		if len(deps) > 0 {
			if !o.AutoInstall {
				log.Ctx(ctx).Warn().
					Str("package", pkg.Name).
					Strs("build_depends", deps).
					Msg("automatic installation disabled, build dependencies must already be present")
			} else if err := o.System.Install(ctx, deps); err != nil {
				return types.BuildStateFailed, err
			}
		}
		return types.BuildStateBuildDepsInstalled, nil

	case types.BuildStateBuildDepsInstalled:
		log.Ctx(ctx).Info().Str("package", pkg.NativeName).Msg("building")
		if err := o.Toolchain.Build(ctx, pkg.Directory, o.BuildEnv()); err != nil {
			return types.BuildStateFailed, err
		}
		return types.BuildStateBuilt, nil

	case types.BuildStateBuilt:
		return o.collect(ctx, run)

	default:
		return types.BuildStateFailed, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("no transition from state %s", run.state))
	}
}

func (o Orchestrator) collect(ctx context.Context, run *buildRun) (types.BuildState, error) {
	pkg := run.pkg
	parent := filepath.Dir(pkg.Directory)
	built, found, err := o.Artifacts.Locate(parent, pkg.NativeName)
	if err != nil {
		return types.BuildStateFailed, err
	}
	if !found {
		return types.BuildStateFailed, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("could not find build of %s in %s", pkg.NativeName, parent))
	}
	run.builtPath = built

	log.Ctx(ctx).Info().Str("artifact", built).Msg("build succeeded, checking package with lint")
	output, err := o.Toolchain.Lint(ctx, built)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("artifact", built).Msg("lint reported problems")
	} else if strings.TrimSpace(output) != "" {
		log.Ctx(ctx).Debug().Str("artifact", built).Str("lint", strings.TrimSpace(output)).Msg("lint output")
	}

	stored, err := o.Artifacts.Import(built)
	if err != nil {
		return types.BuildStateFailed, err
	}
	artifact, err := o.Inspector.Inspect(stored)
	if err != nil {
		return types.BuildStateFailed, err
	}
	run.artifact = artifact
	run.pkg.ArtifactPath = stored
	return types.BuildStateCollected, nil
}

// BuildEnv is the environment added to the native build. It is passed to
// that process only.
func (o Orchestrator) BuildEnv() map[string]string {
	env := map[string]string{}
	if o.Config.General.NoGuessingDeps {
		env["DH_OPTIONS"] = "--no-guessing-deps"
	}
	return env
}

// DefaultSourceFixups returns the built-in source tree workarounds.
func DefaultSourceFixups() []SourceFixup {
	return []SourceFixup{removeBundledParamiko}
}

// removeBundledParamiko drops the paramiko copy shipped inside fabric
// sdists, which would otherwise conflict with the separately converted
// paramiko package.
func removeBundledParamiko(ctx context.Context, pkg types.Package) error {
	if pkg.Name != "fabric" {
		return nil
	}
	bundled := filepath.Join(pkg.Directory, "paramiko")
	info, err := os.Stat(bundled)
	if err != nil || !info.IsDir() {
		return nil
	}
	log.Ctx(ctx).Debug().Str("path", bundled).Msg("removing bundled paramiko")
	if err := os.RemoveAll(bundled); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to remove bundled paramiko").
			WithCause(err)
	}
	return nil
}

func failedResult(pkg types.Package) types.ConversionResult {
	return types.ConversionResult{Package: pkg, State: types.BuildStateFailed}
}

// stageError names the package and the state whose transition failed,
// keeping the code of the underlying error.
func stageError(pkg types.Package, state types.BuildState, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeOf(err)).
		WithMsg(fmt.Sprintf("conversion of %s failed in state %s", pkg.Name, state)).
		WithCause(err)
}
