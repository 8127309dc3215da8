package adapters

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"debforge/internal/ports"
	"debforge/internal/shared"
	"debforge/internal/types"
)

const DefaultNamePrefix = "python"

// ConfigFileAdapter loads the conversion configuration from YAML. Pip names
// used as keys are normalized so lookups match fetched packages.
type ConfigFileAdapter struct{}

func NewConfigFileAdapter() ConfigFileAdapter {
	return ConfigFileAdapter{}
}

func (a ConfigFileAdapter) Load(path string) (types.ConversionConfig, error) {
	if strings.TrimSpace(path) == "" {
		return defaultConversionConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ConversionConfig{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("config file %s not found", path)).
			WithCause(err)
	}
	return ParseConversionConfig(data)
}

// ParseConversionConfig decodes YAML, rejecting unknown keys, and applies
// defaults.
func ParseConversionConfig(data []byte) (types.ConversionConfig, error) {
	cfg := defaultConversionConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return types.ConversionConfig{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse config yaml").
			WithCause(err)
	}
	if strings.TrimSpace(cfg.General.NamePrefix) == "" {
		cfg.General.NamePrefix = DefaultNamePrefix
	}
	cfg.Replacements = normalizeKeys(cfg.Replacements)
	cfg.Packages = normalizePackageKeys(cfg.Packages)
	cfg.Ignore = normalizeNames(cfg.Ignore)
	return cfg, nil
}

func defaultConversionConfig() types.ConversionConfig {
	return types.ConversionConfig{
		General: types.GeneralConfig{NamePrefix: DefaultNamePrefix},
	}
}

func normalizeKeys(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for key, value := range values {
		out[shared.NormalizePipName(key)] = strings.TrimSpace(value)
	}
	return out
}

func normalizePackageKeys(values map[string]map[string]string) map[string]map[string]string {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]map[string]string, len(values))
	for key, settings := range values {
		fields := make(map[string]string, len(settings))
		for field, value := range settings {
			fields[strings.ToLower(strings.TrimSpace(field))] = value
		}
		out[shared.NormalizePipName(key)] = fields
	}
	return out
}

func normalizeNames(values []string) []string {
	var out []string
	for _, value := range values {
		if name := shared.NormalizePipName(value); name != "" {
			out = append(out, name)
		}
	}
	return out
}

var _ ports.ConversionConfigPort = ConfigFileAdapter{}
