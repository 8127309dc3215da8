package types

import "strings"

// RequirementSet is the ordered collection of top-level requirements
// requested for conversion. Content holds the exact bytes that identify the
// set in the dependency store.
type RequirementSet struct {
	Requirements []string
	File         string
	PipArgs      []string
	Content      []byte
}

// InlineRequirementContent returns the content identifying requirements
// given on the command line rather than through a file.
func InlineRequirementContent(requirements []string) []byte {
	return []byte(strings.Join(requirements, "\n"))
}
