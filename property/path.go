package property

import (
	"fmt"
	"strconv"
	"strings"
)

type segmentKind int

const (
	segmentKey segmentKind = iota
	segmentIndex
	segmentWildcard
)

type segment struct {
	kind  segmentKind
	key   string
	index int
}

func (s segment) String() string {
	switch s.kind {
	case segmentIndex:
		return "[" + strconv.Itoa(s.index) + "]"
	case segmentWildcard:
		return "*"
	}
	return s.key
}

// Path is a parsed property path.
type Path struct {
	raw      string
	global   string
	segments []segment
}

// String returns the path as written.
func (p Path) String() string { return p.raw }

// Global returns the global root name for paths starting with $name.
func (p Path) Global() string { return p.global }

// HasWildcard reports whether the path can match more than one value.
func (p Path) HasWildcard() bool {
	for _, s := range p.segments {
		if s.kind == segmentWildcard {
			return true
		}
	}
	return false
}

// ParsePath parses a dotted path. Keys are separated by '.', indices and
// wildcards may be written as [n] and [*] or as .n and .*, and a leading
// $name selects a global root.
//
//	customer.addresses[0].city
//	lines[*].sku
//	$tenant.settings.currency
func ParsePath(raw string) (Path, error) {
	p := Path{raw: raw}
	parts, err := splitPath(raw)
	if err != nil {
		return Path{}, err
	}
	for i, part := range parts {
		if i == 0 && strings.HasPrefix(part, "$") {
			name, rest, _ := strings.Cut(part[1:], "[")
			if name == "" {
				return Path{}, fmt.Errorf("path %q: empty global name", raw)
			}
			p.global = name
			if rest == "" {
				continue
			}
			part = "[" + rest
		}
		segs, err := parsePart(part)
		if err != nil {
			return Path{}, fmt.Errorf("path %q: %w", raw, err)
		}
		p.segments = append(p.segments, segs...)
	}
	return p, nil
}

// splitPath splits on dots outside brackets.
func splitPath(path string) ([]string, error) {
	var (
		parts   []string
		current strings.Builder
		depth   int
	)
	for _, r := range path {
		switch r {
		case '[':
			depth++
			current.WriteRune(r)
		case ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("path %q: unmatched ']'", path)
			}
			current.WriteRune(r)
		case '.':
			if depth > 0 {
				current.WriteRune(r)
				continue
			}
			if current.Len() == 0 {
				return nil, fmt.Errorf("path %q: empty segment", path)
			}
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("path %q: unmatched '['", path)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	} else if len(parts) > 0 {
		return nil, fmt.Errorf("path %q: trailing '.'", path)
	}
	return parts, nil
}

// parsePart parses name, name[0], name[*][1], [2], * or a bare index.
func parsePart(part string) ([]segment, error) {
	name, brackets, hasBrackets := strings.Cut(part, "[")
	var segs []segment
	switch {
	case name == "*":
		segs = append(segs, segment{kind: segmentWildcard})
	case name != "":
		if idx, err := strconv.Atoi(name); err == nil {
			segs = append(segs, segment{kind: segmentIndex, index: idx, key: name})
		} else {
			segs = append(segs, segment{kind: segmentKey, key: name})
		}
	}
	if !hasBrackets {
		return segs, nil
	}

	rest := "[" + brackets
	for rest != "" {
		if rest[0] != '[' {
			return nil, fmt.Errorf("unexpected %q after index", rest)
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, fmt.Errorf("unmatched '[' in %q", part)
		}
		inner := strings.TrimSpace(rest[1:end])
		switch {
		case inner == "*":
			segs = append(segs, segment{kind: segmentWildcard})
		case strings.HasPrefix(inner, `"`) || strings.HasPrefix(inner, `'`):
			segs = append(segs, segment{kind: segmentKey, key: strings.Trim(inner, `"'`)})
		default:
			idx, err := strconv.Atoi(inner)
			if err != nil {
				return nil, fmt.Errorf("invalid index %q", inner)
			}
			segs = append(segs, segment{kind: segmentIndex, index: idx, key: inner})
		}
		rest = rest[end+1:]
	}
	return segs, nil
}
