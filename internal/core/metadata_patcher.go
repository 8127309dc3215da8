package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"debforge/internal/types"
)

// reservedPackageKeys are per-package settings that are not control fields.
var reservedPackageKeys = map[string]struct{}{
	types.PackageKeyScript:       {},
	types.PackageKeyBuildDepends: {},
}

// MetadataPatcher rewrites the debian/control file generated for a package
// so the binary package follows the native naming scheme.
type MetadataPatcher struct {
	Prefix string
}

func NewMetadataPatcher(prefix string) MetadataPatcher {
	return MetadataPatcher{Prefix: prefix}
}

// ControlPath returns the location of the generated control file.
func ControlPath(pkg types.Package) string {
	return filepath.Join(pkg.Directory, "debian", "control")
}

// Patch rewrites the control file of pkg in place. The file must hold
// exactly a source and a binary paragraph.
func (m MetadataPatcher) Patch(ctx context.Context, pkg types.Package, replacements map[string]string, overrides map[string]string) error {
	path := ControlPath(pkg)
	data, err := os.ReadFile(path)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("control file of %s not found", pkg.Name)).
			WithCause(err)
	}
	patched, err := m.PatchControl(pkg, data, replacements, overrides)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, patched, 0o644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to write control file of %s", pkg.Name)).
			WithCause(err)
	}
	log.Ctx(ctx).Debug().Str("package", pkg.Name).Str("path", path).Msg("control file patched")
	return nil
}

// PatchControl applies the patch to control file content. Applying it to its
// own output returns identical bytes.
func (m MetadataPatcher) PatchControl(pkg types.Package, data []byte, replacements map[string]string, overrides map[string]string) ([]byte, error) {
	paragraphs, err := ParseControl(data)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("malformed control file for %s", pkg.Name)).
			WithCause(err)
	}
	if len(paragraphs) != 2 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unexpected control file format for %s: %d paragraphs", pkg.Name, len(paragraphs)))
	}
	binary := &paragraphs[1]
	binary.Set("Package", m.nativeName(pkg))
	binary.Merge([]ControlField{{
		Name:  "Depends",
		Value: strings.Join(m.DebianDependencies(pkg, replacements), ", "),
	}})
	binary.Merge(configuredFields(overrides))
	return DumpControl(paragraphs), nil
}

// DebianDependencies translates the declared dependencies of pkg into
// Debian relations. Replaced names are emitted verbatim; a replacement
// without a target is dropped.
func (m MetadataPatcher) DebianDependencies(pkg types.Package, replacements map[string]string) []string {
	var relations []string
	for _, dep := range pkg.Dependencies {
		name := NativeName(m.Prefix, dep.Name)
		if replacement, ok := replacements[dep.Name]; ok {
			replacement = strings.TrimSpace(replacement)
			if replacement == "" {
				continue
			}
			if strings.ContainsAny(replacement, "(|,") {
				relations = append(relations, replacement)
				continue
			}
			name = replacement
		}
		relations = append(relations, debianRelations(name, dep.Constraints)...)
	}
	return relations
}

func (m MetadataPatcher) nativeName(pkg types.Package) string {
	if pkg.NativeName != "" {
		return pkg.NativeName
	}
	return NativeName(m.Prefix, pkg.Name)
}

// debianRelations renders one relation per representable specifier, or a
// bare name when none is.
func debianRelations(name string, constraints []types.Constraint) []string {
	var relations []string
	for _, constraint := range constraints {
		op, ok := debianOperator(constraint)
		if !ok {
			continue
		}
		relations = append(relations, fmt.Sprintf("%s (%s %s)", name, op, constraint.Version))
	}
	if len(relations) == 0 {
		return []string{name}
	}
	return relations
}

func debianOperator(constraint types.Constraint) (string, bool) {
	if !isPep440Version(constraint.Version) {
		return "", false
	}
	switch constraint.Op {
	case types.ConstraintOpEq2, types.ConstraintOpArbitrary:
		return "=", true
	case types.ConstraintOpGte, types.ConstraintOpCompat:
		return ">=", true
	case types.ConstraintOpLte:
		return "<=", true
	case types.ConstraintOpGt:
		return ">>", true
	case types.ConstraintOpLt:
		return "<<", true
	default:
		return "", false
	}
}

// configuredFields turns per-package settings into control overrides in a
// stable order.
func configuredFields(overrides map[string]string) []ControlField {
	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		if _, reserved := reservedPackageKeys[strings.ToLower(strings.TrimSpace(key))]; reserved {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	fields := make([]ControlField, 0, len(keys))
	for _, key := range keys {
		fields = append(fields, ControlField{Name: CanonicalFieldName(key), Value: overrides[key]})
	}
	return fields
}
