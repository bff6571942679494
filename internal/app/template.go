package app

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultTemplate is used when the caller supplies none: the matched term and
// its full payload record, bracketed for display.
const DefaultTemplate = "<{key}|{value}>"

// Reserved placeholder names that resolve without parsing the payload.
const (
	fieldTerm  = "key"
	fieldWhole = "value"
)

type segKind int

const (
	segLiteral segKind = iota
	segTerm            // {key} — the matched term itself
	segWhole           // {value} — the raw payload record
	segField           // any other name, resolved against the payload JSON
)

type segment struct {
	kind segKind
	lit  []byte // segLiteral only
	path string // segField only, pre-translated gjson path
}

// Template is a compiled decoration format. Compile once per invocation and
// render per match; rendering parses the payload only when a segField is
// present.
type Template struct {
	segs      []segment
	needsJSON bool
}

// CompileTemplate parses {name} placeholders out of s. Plain names resolve
// against top-level payload keys; names starting with "/" are JSON pointers
// into nested objects and arrays. A "{" without a closing "}" is an error.
func CompileTemplate(s string) (*Template, error) {
	t := &Template{}
	for len(s) > 0 {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			t.segs = append(t.segs, segment{kind: segLiteral, lit: []byte(s)})
			break
		}
		if open > 0 {
			t.segs = append(t.segs, segment{kind: segLiteral, lit: []byte(s[:open])})
		}
		end := strings.IndexByte(s[open:], '}')
		if end < 0 {
			return nil, fmt.Errorf("template: unclosed placeholder at %q", s[open:])
		}
		name := s[open+1 : open+end]
		if name == "" {
			return nil, fmt.Errorf("template: empty placeholder")
		}
		switch name {
		case fieldTerm:
			t.segs = append(t.segs, segment{kind: segTerm})
		case fieldWhole:
			t.segs = append(t.segs, segment{kind: segWhole})
		default:
			t.segs = append(t.segs, segment{kind: segField, path: fieldPath(name)})
			t.needsJSON = true
		}
		s = s[open+end+1:]
	}
	return t, nil
}

// Render writes the decoration for one match. Fields missing from the
// payload, and fields holding non-string values, render as empty text.
func (t *Template) Render(out *bytes.Buffer, term, payload []byte) {
	for _, seg := range t.segs {
		switch seg.kind {
		case segLiteral:
			out.Write(seg.lit)
		case segTerm:
			out.Write(term)
		case segWhole:
			out.Write(payload)
		case segField:
			r := gjson.GetBytes(payload, seg.path)
			if r.Type == gjson.String {
				out.WriteString(r.Str)
			}
		}
	}
}

// fieldPath translates a placeholder name into a gjson path. A leading "/"
// marks an RFC 6901 JSON pointer: segments are split on "/", the ~1 and ~0
// escapes are decoded, and each segment becomes one path element. A plain
// name addresses a single top-level key even if it contains dots.
func fieldPath(name string) string {
	if !strings.HasPrefix(name, "/") {
		return escapePathSegment(name)
	}
	parts := strings.Split(name[1:], "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		p = strings.ReplaceAll(p, "~0", "~")
		parts[i] = escapePathSegment(p)
	}
	return strings.Join(parts, ".")
}

// escapePathSegment backslash-escapes the characters gjson treats as syntax.
func escapePathSegment(s string) string {
	if !strings.ContainsAny(s, `.*?\|@#`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', '*', '?', '\\', '|', '@', '#':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
