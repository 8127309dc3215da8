package app

import "debforge/internal/types"

// Settings carries command line overrides of the conversion config. Empty
// values keep what the config file says.
type Settings struct {
	ConfigPath      string
	NamePrefix      string
	Repository      string
	DependencyStore string
	PipCache        string
}

type ConvertRequest struct {
	Settings
	Requirements    []string
	RequirementFile string
	PipArgs         []string
	AutoInstall     bool
}

type ConvertResult struct {
	Results        []types.ConversionResult
	Relations      []string
	DependencyFile string
}

type RecallRequest struct {
	Settings
	Requirements    []string
	RequirementFile string
}

type RecallResult struct {
	Dependencies string
}

type ValidateRequest struct {
	Settings
}

type ValidateResult struct {
	NamePrefix   string
	Replacements int
	Packages     int
}
