package adapters

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"debforge/internal/ports"
	"debforge/internal/shared"
)

const (
	defaultPath  = "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"
	buildCommand = ". /etc/environment && dpkg-buildpackage -us -uc"
)

// DebToolchainAdapter drives stdeb, dpkg-buildpackage and lintian.
type DebToolchainAdapter struct {
	Python string
	// Diagnostics receives tool output.
	Diagnostics io.Writer
}

func NewDebToolchainAdapter() DebToolchainAdapter {
	return DebToolchainAdapter{Python: "python3", Diagnostics: os.Stderr}
}

// Debianize generates the debian/ directory of an unpacked source
// distribution.
func (a DebToolchainAdapter) Debianize(ctx context.Context, dir string, ignoreInstallRequires bool) error {
	python := a.Python
	if python == "" {
		python = "python3"
	}
	args := []string{"setup.py", "--command-packages=stdeb.command", "debianize"}
	if ignoreInstallRequires {
		args = append(args, "--ignore-install-requires")
	}
	output, err := a.run(ctx, dir, nil, python, args...)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to debianize %s", dir)).
			WithCause(shared.CommandError(output, err))
	}
	return nil
}

// RunScript runs a user supplied shell command inside dir.
func (a DebToolchainAdapter) RunScript(ctx context.Context, dir string, script string) error {
	if strings.TrimSpace(script) == "" {
		return nil
	}
	output, err := a.run(ctx, dir, nil, "sh", "-c", script)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("script failed in %s", dir)).
			WithCause(shared.CommandError(output, err))
	}
	return nil
}

// Build runs dpkg-buildpackage in dir with a minimal environment extended
// by env.
func (a DebToolchainAdapter) Build(ctx context.Context, dir string, env map[string]string) error {
	output, err := a.run(ctx, dir, buildEnvironment(env), "sh", "-c", buildCommand)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("dpkg-buildpackage failed in %s", dir)).
			WithCause(shared.CommandError(output, err))
	}
	return nil
}

// Lint runs lintian on a built archive. Findings make lintian exit non-zero,
// so only a failure to start it is an error.
func (a DebToolchainAdapter) Lint(ctx context.Context, path string) (string, error) {
	output, err := a.run(ctx, "", nil, "lintian", path)
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return string(output), nil
		}
		return "", errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("failed to run lintian").
			WithCause(err)
	}
	return string(output), nil
}

func (a DebToolchainAdapter) run(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, error) {
	log.Ctx(ctx).Debug().
		Str("dir", dir).
		Str("command", name+" "+strings.Join(args, " ")).
		Msg("running toolchain command")
	var buf bytes.Buffer
	var sink io.Writer = &buf
	if a.Diagnostics != nil {
		sink = io.MultiWriter(&buf, a.Diagnostics)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = sink
	cmd.Stderr = sink
	if env != nil {
		cmd.Env = env
	}
	err := cmd.Run()
	return buf.Bytes(), err
}

// buildEnvironment starts from the system PATH, so interpreters of an
// active virtualenv are never picked up. HOME and LANG come from the caller
// and extra is appended in key order.
func buildEnvironment(extra map[string]string) []string {
	env := []string{"PATH=" + defaultPath}
	for _, key := range []string{"HOME", "LANG"} {
		if value, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+value)
		}
	}
	keys := make([]string, 0, len(extra))
	for key := range extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		env = append(env, key+"="+extra[key])
	}
	return env
}

// AptPackagesAdapter installs build dependencies with apt-get through sudo.
type AptPackagesAdapter struct {
	Sudo        bool
	Diagnostics io.Writer
}

func NewAptPackagesAdapter() AptPackagesAdapter {
	return AptPackagesAdapter{Sudo: os.Geteuid() != 0, Diagnostics: os.Stderr}
}

func (a AptPackagesAdapter) Install(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	args := append([]string{"apt-get", "install", "--yes"}, names...)
	name := args[0]
	if a.Sudo {
		name = "sudo"
	} else {
		args = args[1:]
	}
	log.Ctx(ctx).Info().Strs("packages", names).Msg("installing build dependencies")
	var buf bytes.Buffer
	var sink io.Writer = &buf
	if a.Diagnostics != nil {
		sink = io.MultiWriter(&buf, a.Diagnostics)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = sink
	cmd.Stderr = sink
	cmd.Env = append(os.Environ(), "DEBIAN_FRONTEND=noninteractive")
	if err := cmd.Run(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg(fmt.Sprintf("failed to install %s", strings.Join(names, " "))).
			WithCause(shared.CommandError(buf.Bytes(), err))
	}
	return nil
}

var (
	_ ports.ToolchainPort      = DebToolchainAdapter{}
	_ ports.SystemPackagesPort = AptPackagesAdapter{}
)
