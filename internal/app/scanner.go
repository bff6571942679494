// Package app implements the fstsed engine: the boundary scanner that drives
// the transducer walker across each line, the JSON string-literal adapter,
// the decoration template renderer, and the index builder.
package app

import (
	"github.com/erichutchins/fstsed/internal/ports"
)

// wordByte classifies ASCII alphanumerics and underscore as word bytes.
// Everything else, including every byte of a multi-byte UTF-8 sequence, is a
// boundary byte.
var wordByte [256]bool

func init() {
	for b := 'a'; b <= 'z'; b++ {
		wordByte[b] = true
	}
	for b := 'A'; b <= 'Z'; b++ {
		wordByte[b] = true
	}
	for b := '0'; b <= '9'; b++ {
		wordByte[b] = true
	}
	wordByte['_'] = true
}

func isWordByte(b byte) bool { return wordByte[b] }

// Scanner finds greedy, leftmost, non-overlapping term matches in a line.
// Matches must start and end on word boundaries: foo never matches inside
// foobar.
type Scanner struct {
	m ports.Matcher
}

// NewScanner wraps a matcher.
func NewScanner(m ports.Matcher) *Scanner {
	return &Scanner{m: m}
}

// Scan walks line left to right and invokes fn once per match, in increasing
// offset order. Returning false from fn stops the scan. The match's Term and
// Payload slices are only valid during the callback.
func (s *Scanner) Scan(line []byte, fn func(m ports.Match) bool) {
	i := 0
	for i < len(line) {
		// A match may only start at the line head or after a non-word byte.
		if i > 0 && isWordByte(line[i-1]) {
			i++
			continue
		}
		n, payload, ok := s.m.LookupLongestPrefix(line, i)
		if !ok {
			i++
			continue
		}
		end := i + n
		// The longest candidate must also end on a boundary. When it does
		// not, the position is skipped outright — no retry with a shorter
		// candidate, longest-wins is deliberate.
		if end < len(line) && isWordByte(line[end]) {
			i++
			continue
		}
		if !fn(ports.Match{Start: i, End: end, Term: line[i:end], Payload: payload}) {
			return
		}
		i = end
	}
}
