package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"debforge/internal/shared"
	"debforge/internal/types"
)

// opTokens is the ordered list of specifier operators tried during
// parsing. Longer tokens must precede shorter ones to avoid false matches
// (e.g. "===" before "==", ">=" before ">").
var opTokens = []types.ConstraintOp{
	types.ConstraintOpArbitrary,
	types.ConstraintOpGte,
	types.ConstraintOpLte,
	types.ConstraintOpCompat,
	types.ConstraintOpNe,
	types.ConstraintOpEq2,
	types.ConstraintOpGt,
	types.ConstraintOpLt,
}

// ParseRequirement splits a requirement line such as
// "Foo_Bar[extra]>=1.0,<2.0; python_version>'3'" into a normalized
// dependency. Environment markers and extras are discarded.
func ParseRequirement(raw string) (types.Dependency, error) {
	line := strings.TrimSpace(raw)
	if idx := strings.Index(line, "#"); idx != -1 {
		line = strings.TrimSpace(line[:idx])
	}
	if idx := strings.Index(line, ";"); idx != -1 {
		line = strings.TrimSpace(line[:idx])
	}
	if line == "" {
		return types.Dependency{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("empty requirement")
	}
	nameEnd := len(line)
	for i, r := range line {
		if !isRequirementNameRune(r) {
			nameEnd = i
			break
		}
	}
	name := shared.NormalizePipName(line[:nameEnd])
	if name == "" {
		return types.Dependency{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid requirement: %s", raw))
	}
	rest := strings.TrimSpace(line[nameEnd:])
	if strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end == -1 {
			return types.Dependency{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("unterminated extras in requirement: %s", raw))
		}
		rest = strings.TrimSpace(rest[end+1:])
	}
	rest = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(rest, "("), ")"))

	dep := types.Dependency{Name: name}
	if rest == "" {
		return dep, nil
	}
	for _, clause := range strings.Split(rest, ",") {
		constraint, err := parseSpecifier(clause)
		if err != nil {
			return types.Dependency{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid requirement: %s", raw)).
				WithCause(err)
		}
		dep.Constraints = append(dep.Constraints, constraint)
	}
	return dep, nil
}

func parseSpecifier(raw string) (types.Constraint, error) {
	clause := strings.TrimSpace(raw)
	for _, op := range opTokens {
		if !strings.HasPrefix(clause, string(op)) {
			continue
		}
		version := strings.TrimSpace(strings.TrimPrefix(clause, string(op)))
		if version == "" {
			return types.Constraint{}, fmt.Errorf("missing version after %q", op)
		}
		return types.Constraint{Op: op, Version: version}, nil
	}
	return types.Constraint{}, fmt.Errorf("unknown specifier %q", clause)
}

func isRequirementNameRune(r rune) bool {
	if r >= 'a' && r <= 'z' {
		return true
	}
	if r >= 'A' && r <= 'Z' {
		return true
	}
	if r >= '0' && r <= '9' {
		return true
	}
	return r == '-' || r == '_' || r == '.'
}
