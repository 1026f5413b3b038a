package templaterepo

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrMissingField       = errors.New("missing field")
	ErrInvalidPlaceholder = errors.New("invalid placeholder")
)

// placeholderPattern matches `$$`, `$identifier`, `${identifier}` and, as the
// last alternative, a lone `$` which is invalid.
var placeholderPattern = regexp.MustCompile(`\$(?:(\$)|([_a-zA-Z][_a-zA-Z0-9]*)|\{([_a-zA-Z][_a-zA-Z0-9]*)\}|())`)

// MissingFieldError names the placeholder that has no value.
type MissingFieldError struct {
	Template string
	Field    string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: template %s uses ${%s}", ErrMissingField, e.Template, e.Field)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// InvalidPlaceholderError points at a `$` that does not start a placeholder.
type InvalidPlaceholderError struct {
	Template string
	Line     int
	Column   int
}

func (e *InvalidPlaceholderError) Error() string {
	return fmt.Sprintf("%s in template %s: line %d, col %d", ErrInvalidPlaceholder, e.Template, e.Line, e.Column)
}

func (e *InvalidPlaceholderError) Unwrap() error {
	return ErrInvalidPlaceholder
}

// Substitute replaces every placeholder in the template with the matching field value.
func (t Template) Substitute(fields map[string]string) (string, error) {
	var out strings.Builder
	out.Grow(len(t.Text))

	last := 0
	for _, loc := range placeholderPattern.FindAllStringSubmatchIndex(t.Text, -1) {
		out.WriteString(t.Text[last:loc[0]])
		last = loc[1]

		switch {
		case loc[2] >= 0:
			out.WriteByte('$')
		case loc[4] >= 0 || loc[6] >= 0:
			name := groupText(t.Text, loc, 2)
			if loc[6] >= 0 {
				name = groupText(t.Text, loc, 3)
			}

			value, ok := fields[name]
			if !ok {
				return "", &MissingFieldError{Template: t.Name, Field: name}
			}

			out.WriteString(value)
		default:
			return "", t.invalidAt(loc[0])
		}
	}

	out.WriteString(t.Text[last:])
	return out.String(), nil
}

// Validate reports the first `$` that does not start a valid placeholder.
func (t Template) Validate() error {
	for _, loc := range placeholderPattern.FindAllStringSubmatchIndex(t.Text, -1) {
		if loc[8] >= 0 {
			return t.invalidAt(loc[0])
		}
	}

	return nil
}

func (t Template) invalidAt(offset int) error {
	before := t.Text[:offset]
	line := strings.Count(before, "\n") + 1
	column := offset - strings.LastIndex(before, "\n")
	return &InvalidPlaceholderError{Template: t.Name, Line: line, Column: column}
}

// identifiers returns the distinct placeholder names in order of first use.
func identifiers(text string) []string {
	seen := map[string]struct{}{}
	names := make([]string, 0)
	for _, match := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		name := match[2]
		if name == "" {
			name = match[3]
		}

		if name == "" {
			continue
		}

		if _, exist := seen[name]; exist {
			continue
		}

		seen[name] = struct{}{}
		names = append(names, name)
	}

	return names
}

func groupText(text string, loc []int, group int) string {
	return text[loc[2*group]:loc[2*group+1]]
}
