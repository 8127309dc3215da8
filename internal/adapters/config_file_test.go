package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debforge/internal/types"
)

const sampleConfig = `
general:
  name_prefix: python
  repository: /var/lib/debforge/repo
  dependency_store: /var/lib/debforge/dependencies
  pip_cache: /var/cache/debforge/sdists
  ignore_install_requires: true
  no_guessing_deps: true
replacements:
  PIL: python-imaging
  setuptools: ""
ignore:
  - Nose
preinstall:
  - libxml2-dev
packages:
  MySQL_python:
    build-depends: libmysqlclient-dev
    script: sed -i s/foo/bar/ setup.py
    Section: python
`

func TestConfigFileLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := NewConfigFileAdapter().Load(path)
	require.NoError(t, err)

	want := types.ConversionConfig{
		General: types.GeneralConfig{
			NamePrefix:            "python",
			Repository:            "/var/lib/debforge/repo",
			DependencyStore:       "/var/lib/debforge/dependencies",
			PipCache:              "/var/cache/debforge/sdists",
			IgnoreInstallRequires: true,
			NoGuessingDeps:        true,
		},
		Replacements: map[string]string{"pil": "python-imaging", "setuptools": ""},
		Ignore:       []string{"nose"},
		Preinstall:   []string{"libxml2-dev"},
		Packages: map[string]map[string]string{
			"mysql-python": {
				"build-depends": "libmysqlclient-dev",
				"script":        "sed -i s/foo/bar/ setup.py",
				"section":       "python",
			},
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestConfigFileDefaults(t *testing.T) {
	cfg, err := ParseConversionConfig([]byte("general:\n  repository: /repo\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultNamePrefix, cfg.General.NamePrefix)
	assert.False(t, cfg.General.NoGuessingDeps)

	empty, err := ParseConversionConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultNamePrefix, empty.General.NamePrefix)

	noFile, err := NewConfigFileAdapter().Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultNamePrefix, noFile.General.NamePrefix)
}

func TestConfigFileAcceptsCommandLineKeys(t *testing.T) {
	cfg, err := ParseConversionConfig([]byte(`
log_level: debug
pip_args:
  - --index-url
  - http://pypi.local/simple
auto_install: false
general:
  repository: /repo
`))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"--index-url", "http://pypi.local/simple"}, cfg.PipArgs)
	require.NotNil(t, cfg.AutoInstall)
	assert.False(t, *cfg.AutoInstall)
	assert.Equal(t, "/repo", cfg.General.Repository)
}

func TestConfigFileErrors(t *testing.T) {
	_, err := NewConfigFileAdapter().Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))

	_, err = ParseConversionConfig([]byte("general:\n  unknown_key: true\n"))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))

	_, err = ParseConversionConfig([]byte("general: [not, a, map]\n"))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
