package core

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// relationshipFields are merged as relation lists instead of being
// overwritten.
var relationshipFields = map[string]struct{}{
	"depends":             {},
	"pre-depends":         {},
	"recommends":          {},
	"suggests":            {},
	"breaks":              {},
	"conflicts":           {},
	"provides":            {},
	"replaces":            {},
	"enhances":            {},
	"build-depends":       {},
	"build-depends-indep": {},
}

type controlField struct {
	Name  string
	Value string
}

// Paragraph is one deb822 stanza with its field order preserved. Values
// keep continuation lines verbatim, joined with "\n".
type Paragraph struct {
	fields []controlField
}

// ParseControl splits deb822 data into paragraphs. Comment lines are
// dropped.
func ParseControl(data []byte) ([]Paragraph, error) {
	var paragraphs []Paragraph
	var current *Paragraph
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current != nil {
				paragraphs = append(paragraphs, *current)
				current = nil
			}
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			if current == nil || len(current.fields) == 0 {
				return nil, fmt.Errorf("line %d: continuation line without field", lineNo)
			}
			last := &current.fields[len(current.fields)-1]
			last.Value += "\n" + line
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("line %d: malformed field %q", lineNo, line)
		}
		if current == nil {
			current = &Paragraph{}
		}
		current.fields = append(current.fields, controlField{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if current != nil {
		paragraphs = append(paragraphs, *current)
	}
	return paragraphs, nil
}

// DumpControl renders paragraphs separated by blank lines.
func DumpControl(paragraphs []Paragraph) []byte {
	var buf bytes.Buffer
	for i, paragraph := range paragraphs {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(paragraph.String())
	}
	return buf.Bytes()
}

func (p Paragraph) String() string {
	var builder strings.Builder
	for _, field := range p.fields {
		builder.WriteString(field.Name)
		builder.WriteString(":")
		if field.Value != "" && !strings.HasPrefix(field.Value, "\n") {
			builder.WriteString(" ")
		}
		builder.WriteString(field.Value)
		builder.WriteString("\n")
	}
	return builder.String()
}

// Get looks a field up case-insensitively.
func (p Paragraph) Get(name string) (string, bool) {
	if idx := p.index(name); idx != -1 {
		return p.fields[idx].Value, true
	}
	return "", false
}

// Names returns the field names in paragraph order.
func (p Paragraph) Names() []string {
	names := make([]string, 0, len(p.fields))
	for _, field := range p.fields {
		names = append(names, field.Name)
	}
	return names
}

// Set overwrites a field in place or appends it. Multi-line values are
// folded into continuation lines.
func (p *Paragraph) Set(name string, value string) {
	value = foldValue(strings.TrimSpace(value))
	if idx := p.index(name); idx != -1 {
		p.fields[idx].Value = value
		return
	}
	p.fields = append(p.fields, controlField{Name: name, Value: value})
}

// Merge applies overrides. Relationship fields take the union of the
// existing and incoming relations; any other field is overwritten. Empty
// values leave the paragraph untouched.
func (p *Paragraph) Merge(overrides []ControlField) {
	for _, override := range overrides {
		value := strings.TrimSpace(override.Value)
		if value == "" {
			continue
		}
		if !isRelationshipField(override.Name) {
			p.Set(override.Name, value)
			continue
		}
		existing, _ := p.Get(override.Name)
		p.Set(override.Name, strings.Join(mergeRelations(splitRelations(existing), splitRelations(value)), ", "))
	}
}

// foldValue indents every line after the first by one space and writes
// empty lines as " .". Lines already indented are kept.
func foldValue(value string) string {
	lines := strings.Split(value, "\n")
	for i := 1; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], " \t")
		switch {
		case line == "":
			lines[i] = " ."
		case line[0] == ' ' || line[0] == '\t':
			lines[i] = line
		default:
			lines[i] = " " + line
		}
	}
	return strings.Join(lines, "\n")
}

// ControlField is an ordered override for Paragraph.Merge.
type ControlField struct {
	Name  string
	Value string
}

func (p Paragraph) index(name string) int {
	for i, field := range p.fields {
		if strings.EqualFold(field.Name, name) {
			return i
		}
	}
	return -1
}

func isRelationshipField(name string) bool {
	_, ok := relationshipFields[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

func splitRelations(value string) []string {
	var relations []string
	for _, part := range strings.Split(value, ",") {
		relation := strings.Join(strings.Fields(part), " ")
		if relation == "" {
			continue
		}
		relations = append(relations, relation)
	}
	return relations
}

func mergeRelations(existing []string, incoming []string) []string {
	seen := map[string]struct{}{}
	var merged []string
	for _, relation := range append(append([]string{}, existing...), incoming...) {
		if _, dup := seen[relation]; dup {
			continue
		}
		seen[relation] = struct{}{}
		merged = append(merged, relation)
	}
	return merged
}

// CanonicalFieldName title-cases each hyphen separated word of a control
// field name, e.g. "x-python-version" becomes "X-Python-Version".
func CanonicalFieldName(name string) string {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(name)), "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, "-")
}
