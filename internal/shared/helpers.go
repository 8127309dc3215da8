// Package shared provides common utility functions used across multiple
// packages in the debforge codebase.
package shared

import (
	"fmt"
	"regexp"
	"strings"
)

var separatorRun = regexp.MustCompile(`[-_.]+`)

// NormalizePipName lowercases a Python package name and collapses runs of
// "-", "_" and "." into one hyphen, following PEP 503 normalization.
func NormalizePipName(value string) string {
	return separatorRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(value)), "-")
}

// CommandError wraps a command execution error with its trimmed output
// for cleaner error messages.
func CommandError(output []byte, err error) error {
	trimmed := strings.TrimSpace(string(output))
	if trimmed == "" {
		return err
	}
	return fmt.Errorf("%s: %w", trimmed, err)
}

// SplitList splits a whitespace or comma separated list, dropping empty
// entries.
func SplitList(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}
