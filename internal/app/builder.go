package app

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/tidwall/gjson"

	"github.com/erichutchins/fstsed/internal/ports"
)

// delim mirrors the adapter's reserved term/payload separator. Terms holding
// this byte cannot be encoded and are rejected at build time.
const delim byte = 0x00

// MaxLineBytes bounds a single input line, shared by the build and search
// paths.
const MaxLineBytes = 1 << 20

// Build consumes newline-delimited JSON records from r, extracts the key
// field from each, and streams term ++ 0x00 ++ record entries into w.
// Records that are not valid JSON, or that lack a non-empty string key, abort
// the build with the offending line number — a silently thinner index is a
// correctness hazard, not a convenience.
//
// With opts.AssumeSorted the caller asserts key order and entries stream
// straight through; the first out-of-order key fails the build. Otherwise
// all entries are buffered, stably sorted on raw bytes, and then streamed.
// Returns the number of entries written.
func Build(r io.Reader, w ports.IndexWriter, opts ports.BuildOptions) (n int, err error) {
	defer func() {
		if err != nil {
			w.Abort()
		}
	}()

	keyPath := fieldPath(opts.KeyField)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)

	var pending [][]byte // unsorted mode only
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		record := scanner.Bytes()
		if len(bytes.TrimSpace(record)) == 0 {
			continue
		}
		entry, err := makeEntry(record, keyPath)
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if opts.AssumeSorted {
			if err := w.Insert(entry); err != nil {
				return 0, fmt.Errorf("line %d: %w", lineNum, err)
			}
			n++
			continue
		}
		pending = append(pending, entry)
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read input: %w", err)
	}

	if !opts.AssumeSorted {
		sort.SliceStable(pending, func(i, j int) bool {
			return bytes.Compare(pending[i], pending[j]) < 0
		})
		for _, entry := range pending {
			if err := w.Insert(entry); err != nil {
				return 0, err
			}
		}
		n = len(pending)
	}

	if err := w.Close(); err != nil {
		return 0, err
	}
	return n, nil
}

// makeEntry extracts the key and forms the concatenated index entry. The
// record bytes are copied — the scanner reuses its buffer.
func makeEntry(record []byte, keyPath string) ([]byte, error) {
	if !gjson.ValidBytes(record) {
		return nil, fmt.Errorf("invalid JSON record")
	}
	k := gjson.GetBytes(record, keyPath)
	if !k.Exists() || k.Type != gjson.String || k.Str == "" {
		return nil, fmt.Errorf("record has no usable key field %q", keyPath)
	}
	if bytes.IndexByte([]byte(k.Str), delim) >= 0 {
		return nil, fmt.Errorf("key %q contains the reserved delimiter byte", k.Str)
	}
	entry := make([]byte, 0, len(k.Str)+1+len(record))
	entry = append(entry, k.Str...)
	entry = append(entry, delim)
	entry = append(entry, record...)
	return entry, nil
}
