package vellum

import (
	"bytes"
	"errors"

	vel "github.com/blevesearch/vellum"
)

// Walker implements ports.Matcher over one Index. It holds a reusable
// iterator and automaton so the per-position walk does not allocate; a
// Walker is therefore not safe for concurrent use. Create one per scanning
// goroutine — the Index itself is freely shared.
type Walker struct {
	idx     *Index
	aut     prefixAut
	it      *vel.FSTIterator
	payload []byte
}

// NewWalker returns a fresh Walker bound to the index.
func (x *Index) NewWalker() *Walker {
	return &Walker{idx: x}
}

// LookupLongestPrefix walks the FST against buf[start:] and returns the
// length of the longest term that exactly prefixes it, with that term's
// payload. Among duplicate terms the smallest payload in byte order wins.
// The returned payload is valid until the next call.
func (w *Walker) LookupLongestPrefix(buf []byte, start int) (int, []byte, bool) {
	w.aut.reset(buf[start:])

	var err error
	if w.it == nil {
		w.it, err = w.idx.fst.Search(&w.aut, nil, nil)
	} else {
		err = w.it.Reset(w.idx.fst, nil, nil, &w.aut)
	}

	// Accepted keys arrive in lexicographic order, so entries for a shorter
	// term always precede those for a longer term sharing its prefix. Keep
	// the last (longest) term and the first payload seen for it.
	best := 0
	for err == nil {
		key, _ := w.it.Current()
		if d := bytes.IndexByte(key, Delim); d > best {
			best = d
			w.payload = append(w.payload[:0], key[d+1:]...)
		}
		err = w.it.Next()
	}
	if !errors.Is(err, vel.ErrIteratorDone) {
		// Iteration errors after a clean load should not happen; treat the
		// position as unmatched rather than poisoning the whole stream.
		return 0, nil, false
	}
	if best == 0 {
		return 0, nil, false
	}
	return best, w.payload, true
}

// prefixAut accepts exactly the index keys of the form p ++ Delim ++ rest,
// where p is a non-empty prefix of the probe and rest is arbitrary. States
// 0..len(probe) count probe bytes consumed; payloadState is the sink state
// past the delimiter that accepts everything; -1 is dead.
type prefixAut struct {
	probe        []byte
	payloadState int
}

func (a *prefixAut) reset(probe []byte) {
	a.probe = probe
	a.payloadState = len(probe) + 1
}

func (a *prefixAut) Start() int { return 0 }

func (a *prefixAut) IsMatch(s int) bool { return s == a.payloadState }

func (a *prefixAut) CanMatch(s int) bool { return s >= 0 }

func (a *prefixAut) WillAlwaysMatch(s int) bool { return s == a.payloadState }

func (a *prefixAut) Accept(s int, b byte) int {
	switch {
	case s < 0:
		return -1
	case s == a.payloadState:
		return s
	case b == Delim:
		// Crossing into payload bytes. Terms are non-empty, so the
		// delimiter straight from the start state matches nothing.
		if s == 0 {
			return -1
		}
		return a.payloadState
	case s < len(a.probe) && a.probe[s] == b:
		return s + 1
	default:
		return -1
	}
}
