package ports

// Match is one decorated span within a single input line. Offsets are byte
// positions into the buffer that was scanned (the raw line in plain mode,
// the decoded string buffer in JSON mode). Spans never overlap and arrive
// in increasing offset order.
type Match struct {
	Start   int    // inclusive byte offset of the matched term
	End     int    // exclusive byte offset of the matched term
	Term    []byte // the matched term bytes
	Payload []byte // the enrichment record stored with the term
}

// Matcher walks the transducer index from a fixed start offset and reports
// the longest term whose bytes are an exact prefix of buf[start:].
//
// The walk continues past shorter complete terms because a longer term may
// share the prefix ("ABC" vs "ABCDE"); the last complete term wins. Word
// boundary rules are the caller's responsibility — the matcher knows only
// about bytes in the index.
type Matcher interface {
	// LookupLongestPrefix returns the matched length in bytes and the payload
	// stored with the winning term. ok is false when no term in the index
	// prefixes buf[start:]. The payload slice is only valid until the next
	// call.
	LookupLongestPrefix(buf []byte, start int) (length int, payload []byte, ok bool)
}

// IndexWriter consumes strictly increasing index entries during a build.
// Keys are term ++ 0x00 ++ payload; ordering and duplicate rejection are
// enforced on the full concatenated key.
type IndexWriter interface {
	// Insert appends one entry. Returns an error if the key is not strictly
	// greater than the previous key, or if the term embeds the reserved
	// delimiter byte.
	Insert(key []byte) error

	// Close finalizes the artifact. The index is unusable if Close fails.
	Close() error

	// Abort discards a partial build, leaving no usable artifact behind.
	Abort()
}
