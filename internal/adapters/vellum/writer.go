package vellum

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	vel "github.com/blevesearch/vellum"
	"github.com/klauspost/compress/zstd"
)

// Writer streams strictly increasing term ++ 0x00 ++ payload keys into a new
// artifact. The FST is written to a temp file in the destination directory
// and renamed into place on Close, so an aborted build never leaves a usable
// partial index behind.
type Writer struct {
	path string
	tmp  *os.File
	enc  *zstd.Encoder
	bld  *vel.Builder
	last []byte
}

// NewWriter creates an artifact writer targeting path. With compress set the
// FST bytes are wrapped in a zstd envelope as they stream out.
func NewWriter(path string, compress bool) (*Writer, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".fstsed-build-*")
	if err != nil {
		return nil, fmt.Errorf("create index %s: %w", path, err)
	}

	w := &Writer{path: path, tmp: tmp}
	var sink io.Writer = tmp
	if compress {
		w.enc, err = zstd.NewWriter(tmp)
		if err != nil {
			w.Abort()
			return nil, fmt.Errorf("create index %s: %w", path, err)
		}
		sink = w.enc
	}
	w.bld, err = vel.New(sink, nil)
	if err != nil {
		w.Abort()
		return nil, fmt.Errorf("create index %s: %w", path, err)
	}
	return w, nil
}

// Insert appends one concatenated key. Keys must arrive in strictly
// increasing byte order; ties on the full key (same term and same payload)
// are duplicates and rejected.
func (w *Writer) Insert(key []byte) error {
	if w.last != nil {
		switch bytes.Compare(key, w.last) {
		case 0:
			return fmt.Errorf("duplicate entry %q", display(key))
		case -1:
			return fmt.Errorf("entry %q out of order (follows %q)", display(key), display(w.last))
		}
	}
	if err := w.bld.Insert(key, 0); err != nil {
		return fmt.Errorf("insert entry %q: %w", display(key), err)
	}
	w.last = append(w.last[:0], key...)
	return nil
}

// Close finalizes the FST, flushes the envelope, and renames the temp file
// onto the destination path.
func (w *Writer) Close() error {
	if err := w.bld.Close(); err != nil {
		w.Abort()
		return fmt.Errorf("finalize index %s: %w", w.path, err)
	}
	if w.enc != nil {
		if err := w.enc.Close(); err != nil {
			w.Abort()
			return fmt.Errorf("finalize index %s: %w", w.path, err)
		}
	}
	name := w.tmp.Name()
	if err := w.tmp.Close(); err != nil {
		os.Remove(name)
		w.tmp = nil
		return fmt.Errorf("finalize index %s: %w", w.path, err)
	}
	if err := os.Rename(name, w.path); err != nil {
		os.Remove(name)
		w.tmp = nil
		return fmt.Errorf("finalize index %s: %w", w.path, err)
	}
	w.tmp = nil
	return nil
}

// Abort discards the partial build.
func (w *Writer) Abort() {
	if w.tmp != nil {
		name := w.tmp.Name()
		w.tmp.Close()
		os.Remove(name)
		w.tmp = nil
	}
}

// display renders a key for error messages with the delimiter made visible.
func display(key []byte) string {
	if d := bytes.IndexByte(key, Delim); d >= 0 {
		return string(key[:d])
	}
	return string(key)
}
