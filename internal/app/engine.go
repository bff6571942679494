package app

import (
	"bytes"

	"github.com/amterp/color"

	"github.com/erichutchins/fstsed/internal/ports"
)

// Engine turns raw input lines into decorated output lines. One Engine per
// scan run; it reuses internal buffers between lines and is not safe for
// concurrent use.
type Engine struct {
	scanner *Scanner
	tpl     *Template
	opts    ports.SearchOptions
	hl      *color.Color
	dec     strDecoder
	scratch bytes.Buffer
	encoded bytes.Buffer
}

// NewEngine compiles the template and wires the matcher into a scanner.
func NewEngine(m ports.Matcher, opts ports.SearchOptions) (*Engine, error) {
	ts := opts.Template
	if ts == "" {
		ts = DefaultTemplate
	}
	tpl, err := CompileTemplate(ts)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		scanner: NewScanner(m),
		tpl:     tpl,
		opts:    opts,
	}
	if opts.Color {
		// Forced on: -C always must color even when stdout is not a tty.
		e.hl = color.New(color.FgRed, color.Bold)
		e.hl.EnableColor()
	}
	return e, nil
}

// ProcessLine writes the decorated form of line (without a trailing newline)
// to out, or, in only-matching mode, one newline-terminated decoration per
// match. Returns true when at least one term matched.
func (e *Engine) ProcessLine(line []byte, out *bytes.Buffer) bool {
	if e.opts.JSONMode {
		return e.processJSON(line, out)
	}
	return e.scanPlain(line, 0, out)
}

// scanPlain runs the boundary scanner over line[from:], splicing decorations
// in place of matched terms.
func (e *Engine) scanPlain(line []byte, from int, out *bytes.Buffer) bool {
	region := line[from:]
	last := 0
	matched := false
	e.scanner.Scan(region, func(m ports.Match) bool {
		matched = true
		if e.opts.OnlyMatching {
			e.writeOnlyMatch(out, m)
			return true
		}
		out.Write(region[last:m.Start])
		e.writeDecoration(out, m, false)
		last = m.End
		return true
	})
	if !e.opts.OnlyMatching {
		out.Write(region[last:])
	}
	return matched
}

// writeDecoration renders the template for one match and splices it into
// out, JSON-escaped when the splice point is inside a string literal.
func (e *Engine) writeDecoration(out *bytes.Buffer, m ports.Match, jsonEncode bool) {
	e.scratch.Reset()
	e.tpl.Render(&e.scratch, m.Term, m.Payload)
	b := e.scratch.Bytes()
	if jsonEncode {
		e.encoded.Reset()
		encodeJSONString(&e.encoded, b)
		b = e.encoded.Bytes()
	}
	if e.hl != nil {
		out.WriteString(e.hl.Sprint(string(b)))
		return
	}
	out.Write(b)
}

// writeOnlyMatch emits one decoration on its own line (-o mode). The
// decoration is never JSON-escaped here since it is not spliced back into
// the source line.
func (e *Engine) writeOnlyMatch(out *bytes.Buffer, m ports.Match) {
	e.writeDecoration(out, m, false)
	out.WriteByte('\n')
}
