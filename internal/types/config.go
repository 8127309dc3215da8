package types

// ConversionConfig threads every conversion setting through the pipeline.
type ConversionConfig struct {
	General      GeneralConfig                `yaml:"general"`
	Replacements map[string]string            `yaml:"replacements"`
	Ignore       []string                     `yaml:"ignore"`
	Preinstall   []string                     `yaml:"preinstall"`
	Packages     map[string]map[string]string `yaml:"packages"`

	// Command line defaults sharing the file. The CLI reads them through
	// viper; the pipeline ignores them.
	LogLevel    string   `yaml:"log_level"`
	PipArgs     []string `yaml:"pip_args"`
	AutoInstall *bool    `yaml:"auto_install"`
}

type GeneralConfig struct {
	NamePrefix            string `yaml:"name_prefix"`
	Repository            string `yaml:"repository"`
	DependencyStore       string `yaml:"dependency_store"`
	PipCache              string `yaml:"pip_cache"`
	IgnoreInstallRequires bool   `yaml:"ignore_install_requires"`
	NoGuessingDeps        bool   `yaml:"no_guessing_deps"`
}

const (
	PackageKeyScript       = "script"
	PackageKeyBuildDepends = "build-depends"
)

// PackageSettings returns the per-package section for name, or nil.
func (c ConversionConfig) PackageSettings(name string) map[string]string {
	if c.Packages == nil {
		return nil
	}
	return c.Packages[name]
}
