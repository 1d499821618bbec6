// Package template implements the single-placeholder reference syntax used to
// pull one nested value out of a Sensu event, e.g. "{{ .check.output }}".
//
// It is deliberately not text/template: a reference is exactly one
// dot-separated path wrapped in double braces, nothing else.
package template

import (
	"fmt"
	"regexp"
	"strings"
)

// referencePattern recognizes a whole string as a template reference.
// Only the inner path is captured; path semantics live in ParsePath.
var referencePattern = regexp.MustCompile(`^\s*\{\{\s*([a-zA-Z0-9._\ ]+)\s*\}\}\s*$`)

// rootName is the display name of the document root in error messages.
const rootName = "event"

// Path is a parsed reference: the ordered, non-empty key names to walk.
type Path []string

// String returns the path in dotted form, e.g. ".check.output".
func (p Path) String() string {
	if len(p) == 0 {
		return "."
	}
	return "." + strings.Join(p, ".")
}

// PathNotFoundError is returned when a path segment is absent from the document.
type PathNotFoundError struct {
	// Segment is the key that could not be found.
	Segment string
	// Prefix holds the segments that were resolved before the failure.
	Prefix []string
}

// Error returns a message naming the missing segment and the resolved prefix,
// e.g. "could not find 'name' in event['entity']['not_here']".
func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("could not find '%s' in %s", e.Segment, displayPrefix(e.Prefix))
}

func displayPrefix(prefix []string) string {
	var b strings.Builder
	b.WriteString(rootName)
	for _, seg := range prefix {
		fmt.Fprintf(&b, "['%s']", seg)
	}
	return b.String()
}

// IsReference reports whether s is a template reference.
func IsReference(s string) bool {
	return referencePattern.MatchString(s)
}

// ParseReference recognizes s as a template reference and returns its path.
// The boolean is false when s is not a reference.
func ParseReference(s string) (Path, bool) {
	m := referencePattern.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	return ParsePath(m[1]), true
}

// ParsePath splits a dotted path expression into segments. Whitespace around
// each segment is trimmed and empty segments are dropped, so ".a.b",
// "a.b." and " . a . b . " are all equivalent.
func ParsePath(expr string) Path {
	parts := strings.Split(expr, ".")
	path := make(Path, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		path = append(path, part)
	}
	return path
}

// Lookup walks doc along the path and returns the value at its end, which
// may be a scalar, a map or a slice. Every intermediate value must be a
// map[string]any; sequences cannot be indexed.
func (p Path) Lookup(doc any) (any, error) {
	cur := doc
	for i, seg := range p {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, &PathNotFoundError{Segment: seg, Prefix: p[:i:i]}
		}
		next, ok := m[seg]
		if !ok {
			return nil, &PathNotFoundError{Segment: seg, Prefix: p[:i:i]}
		}
		cur = next
	}
	return cur, nil
}

// Extract resolves the template reference tmpl against doc.
// A string that is not a reference is an error; callers check IsReference first.
func Extract(tmpl string, doc any) (any, error) {
	path, ok := ParseReference(tmpl)
	if !ok {
		return nil, fmt.Errorf("not a template reference: %q", tmpl)
	}
	return path.Lookup(doc)
}
