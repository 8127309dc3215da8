package ports

import "context"

// ToolchainPort wraps the native Debian build toolchain. Every method blocks
// until the underlying process exits.
type ToolchainPort interface {
	Debianize(ctx context.Context, dir string, ignoreInstallRequires bool) error
	RunScript(ctx context.Context, dir string, script string) error
	Build(ctx context.Context, dir string, env map[string]string) error
	Lint(ctx context.Context, path string) (string, error)
}

// SystemPackagesPort installs OS packages through the privileged package
// manager.
type SystemPackagesPort interface {
	Install(ctx context.Context, names []string) error
}
