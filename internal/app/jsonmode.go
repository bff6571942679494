package app

import (
	"bytes"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/erichutchins/fstsed/internal/ports"
)

// JSON mode restricts matching to the content of string literals. Each
// literal is unescaped into a shadow buffer carrying an offset map back to
// source bytes; the scanner runs over the decoded text and match spans are
// translated back so the original escaped bytes are what gets replaced.
// Malformed JSON (unterminated string, bad escape) degrades the remainder of
// the line to plain-text scanning — a partially mangled log line still
// produces decorated output instead of aborting the run.

// processJSON handles one line in JSON mode. Bytes outside string literals
// pass through untouched and are never matched.
func (e *Engine) processJSON(line []byte, out *bytes.Buffer) bool {
	quotes := structuralQuotes(line)
	matched := false
	pos := 0
	i := 0
	for ; i+1 < len(quotes); i += 2 {
		qs, qe := quotes[i], quotes[i+1]
		if !e.opts.OnlyMatching {
			out.Write(line[pos : qs+1])
		}
		if !e.dec.decode(line[qs+1:qe], qs+1) {
			// Invalid escape sequence: treat the rest of the line as
			// plain text.
			return e.scanPlain(line, qs+1, out) || matched
		}
		if e.spliceDecoded(line, out) {
			matched = true
		}
		pos = qe // the closing quote rides along with the next passthrough
	}
	if i < len(quotes) {
		// Unterminated string literal: degrade its remainder to plain text.
		uq := quotes[i]
		if !e.opts.OnlyMatching {
			out.Write(line[pos : uq+1])
		}
		return e.scanPlain(line, uq+1, out) || matched
	}
	if !e.opts.OnlyMatching {
		out.Write(line[pos:])
	}
	return matched
}

// spliceDecoded scans the decoder's shadow buffer and writes the string
// content back out with decorations substituted. Unmatched stretches are
// emitted as their original source bytes, so existing escapes survive
// byte-for-byte.
func (e *Engine) spliceDecoded(line []byte, out *bytes.Buffer) bool {
	d := &e.dec
	matched := false
	last := -1 // source offset of the first unemitted byte
	e.scanner.Scan(d.buf, func(m ports.Match) bool {
		matched = true
		if e.opts.OnlyMatching {
			e.writeOnlyMatch(out, m)
			return true
		}
		srcStart := d.srcStart[m.Start]
		if last < 0 {
			last = d.srcStart[0]
		}
		out.Write(line[last:srcStart])
		e.writeDecoration(out, m, true)
		last = d.srcEnd[m.End-1]
		return true
	})
	if e.opts.OnlyMatching {
		return matched
	}
	if last < 0 {
		if len(d.buf) > 0 {
			out.Write(line[d.srcStart[0]:d.srcEnd[len(d.buf)-1]])
		}
		return matched
	}
	out.Write(line[last:d.srcEnd[len(d.buf)-1]])
	return matched
}

// structuralQuotes returns the indices of the double quotes that open and
// close string literals, skipping quotes neutralized by a backslash. The
// escape state tracking mirrors scanning for both '"' and '\' in one pass:
// a backslash arms an escape unless it was itself escaped.
func structuralQuotes(line []byte) []int {
	var quotes []int
	escape := -1 // index of an arming backslash, -1 when disarmed
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			if escape >= 0 && escape == i-1 {
				escape = -1
				continue
			}
			escape = -1
			quotes = append(quotes, i)
		case '\\':
			if escape >= 0 && escape == i-1 {
				// Second half of a \\ pair, disarm.
				escape = -1
			} else {
				escape = i
			}
		}
	}
	return quotes
}

// strDecoder unescapes JSON string content into a shadow buffer. For each
// decoded byte it records the half-open source range it came from, so match
// spans over decoded text translate directly to source spans. The map is
// explicit rather than arithmetic: escapes shrink (\n) and \uXXXX sequences
// can grow or shrink relative to their decoded form.
type strDecoder struct {
	buf      []byte
	srcStart []int
	srcEnd   []int
}

// decode unescapes content (string literal body, quotes excluded). base is
// the offset of content within the source line, so recorded ranges are line
// coordinates. Returns false on an invalid or truncated escape sequence.
func (d *strDecoder) decode(content []byte, base int) bool {
	d.buf = d.buf[:0]
	d.srcStart = d.srcStart[:0]
	d.srcEnd = d.srcEnd[:0]

	for i := 0; i < len(content); {
		c := content[i]
		if c != '\\' {
			d.emit(c, base+i, base+i+1)
			i++
			continue
		}
		if i+1 >= len(content) {
			return false
		}
		start := i
		var decoded byte
		switch content[i+1] {
		case '"', '\\', '/':
			decoded = content[i+1]
		case 'b':
			decoded = '\b'
		case 'f':
			decoded = '\f'
		case 'n':
			decoded = '\n'
		case 'r':
			decoded = '\r'
		case 't':
			decoded = '\t'
		case 'u':
			r, n, ok := decodeUnicodeEscape(content[i:])
			if !ok {
				return false
			}
			d.emitRune(r, base+start, base+start+n)
			i += n
			continue
		default:
			return false
		}
		d.emit(decoded, base+start, base+start+2)
		i += 2
	}
	return true
}

func (d *strDecoder) emit(b byte, srcStart, srcEnd int) {
	d.buf = append(d.buf, b)
	d.srcStart = append(d.srcStart, srcStart)
	d.srcEnd = append(d.srcEnd, srcEnd)
}

func (d *strDecoder) emitRune(r rune, srcStart, srcEnd int) {
	before := len(d.buf)
	d.buf = utf8.AppendRune(d.buf, r)
	for n := len(d.buf) - before; n > 0; n-- {
		d.srcStart = append(d.srcStart, srcStart)
		d.srcEnd = append(d.srcEnd, srcEnd)
	}
}

// decodeUnicodeEscape parses a \uXXXX sequence at the start of b, combining
// surrogate pairs when the low half follows. Returns the rune and the number
// of source bytes consumed. Lone surrogates decode to U+FFFD, matching
// encoding/json.
func decodeUnicodeEscape(b []byte) (rune, int, bool) {
	if len(b) < 6 {
		return 0, 0, false
	}
	r, ok := hex4(b[2:6])
	if !ok {
		return 0, 0, false
	}
	if !utf16.IsSurrogate(r) {
		return r, 6, true
	}
	if len(b) >= 12 && b[6] == '\\' && b[7] == 'u' {
		if r2, ok2 := hex4(b[8:12]); ok2 {
			if dec := utf16.DecodeRune(r, r2); dec != utf8.RuneError {
				return dec, 12, true
			}
		}
	}
	return utf8.RuneError, 6, true
}

func hex4(b []byte) (rune, bool) {
	var r rune
	for _, c := range b[:4] {
		r <<= 4
		switch {
		case c >= '0' && c <= '9':
			r |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			r |= rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			r |= rune(c-'A') + 10
		default:
			return 0, false
		}
	}
	return r, true
}

// encodeJSONString escapes b so it is valid JSON string literal content:
// quotes, backslashes, and control characters. All other bytes pass through
// unchanged.
func encodeJSONString(out *bytes.Buffer, b []byte) {
	const hexdig = "0123456789abcdef"
	for _, c := range b {
		switch {
		case c == '"':
			out.WriteString(`\"`)
		case c == '\\':
			out.WriteString(`\\`)
		case c == '\n':
			out.WriteString(`\n`)
		case c == '\r':
			out.WriteString(`\r`)
		case c == '\t':
			out.WriteString(`\t`)
		case c < 0x20:
			out.WriteString(`\u00`)
			out.WriteByte(hexdig[c>>4])
			out.WriteByte(hexdig[c&0xf])
		default:
			out.WriteByte(c)
		}
	}
}
