// Package vellum adapts the blevesearch/vellum FST as the transducer index.
// Each entry is a single key of the form term ++ 0x00 ++ payload; because the
// delimiter sorts below every other byte, key order is term order with ties
// broken by payload. The artifact is immutable once built and safe for any
// number of concurrent readers.
package vellum

import (
	"bytes"
	"fmt"
	"os"

	vel "github.com/blevesearch/vellum"
	"github.com/klauspost/compress/zstd"
)

// Delim separates a term from its payload inside an index key. Terms must
// never contain it.
const Delim byte = 0x00

// zstdMagic is the zstandard frame header, little-endian 0xFD2FB528.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// Index is a read-only handle on a built artifact. Create one at startup and
// share it; per-goroutine state lives in Walker.
type Index struct {
	fst *vel.FST
}

// Open loads the index artifact at path. Plain artifacts are memory-mapped;
// zstd-wrapped artifacts are decompressed fully into memory first.
func Open(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	var magic [4]byte
	_, rerr := f.ReadAt(magic[:], 0)
	if cerr := f.Close(); cerr != nil {
		return nil, fmt.Errorf("open index %s: %w", path, cerr)
	}
	if rerr == nil && bytes.Equal(magic[:], zstdMagic) {
		return openZstd(path)
	}

	fst, err := vel.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load index %s: %w", path, err)
	}
	return &Index{fst: fst}, nil
}

func openZstd(path string) (*Index, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("load index %s: %w", path, err)
	}
	defer dec.Close()
	data, err := dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress index %s: %w", path, err)
	}
	fst, err := vel.Load(data)
	if err != nil {
		return nil, fmt.Errorf("load index %s: %w", path, err)
	}
	return &Index{fst: fst}, nil
}

// Load builds an Index from in-memory artifact bytes. Used by tests and by
// callers that manage their own storage.
func Load(data []byte) (*Index, error) {
	fst, err := vel.Load(data)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	return &Index{fst: fst}, nil
}

// Len reports the number of entries in the index.
func (x *Index) Len() int {
	return x.fst.Len()
}

// Close releases the underlying mapping, if any. The Index and all Walkers
// derived from it are unusable afterwards.
func (x *Index) Close() error {
	return x.fst.Close()
}
