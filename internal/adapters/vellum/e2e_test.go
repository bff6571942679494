package vellum

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erichutchins/fstsed/internal/app"
	"github.com/erichutchins/fstsed/internal/ports"
)

// buildFromRecords runs the full build path — NDJSON in, artifact out — and
// opens the result.
func buildFromRecords(t *testing.T, records string, opts ports.BuildOptions) *Index {
	t.Helper()
	if opts.OutputPath == "" {
		opts.OutputPath = filepath.Join(t.TempDir(), "e2e.fst")
	}
	if opts.KeyField == "" {
		opts.KeyField = "key"
	}
	w, err := NewWriter(opts.OutputPath, opts.Zstd)
	require.NoError(t, err)
	_, err = app.Build(strings.NewReader(records), w, opts)
	require.NoError(t, err)

	idx, err := Open(opts.OutputPath)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestEndToEnd_DefaultDecoration(t *testing.T) {
	idx := buildFromRecords(t,
		`{"key":"foo","v":1}`+"\n"+`{"key":"foobar","v":2}`+"\n",
		ports.BuildOptions{})

	eng, err := app.NewEngine(idx.NewWalker(), ports.SearchOptions{})
	require.NoError(t, err)

	var out bytes.Buffer
	matched := eng.ProcessLine([]byte("see foobar here"), &out)
	assert.True(t, matched)
	// foobar gets its full record; foo never fires as a substring.
	assert.Equal(t, `see <foobar|{"key":"foobar","v":2}> here`, out.String())
}

func TestEndToEnd_JSONModeRoundTrip(t *testing.T) {
	idx := buildFromRecords(t,
		`{"key":"a\\b","type":"path"}`+"\n",
		ports.BuildOptions{})

	eng, err := app.NewEngine(idx.NewWalker(), ports.SearchOptions{
		JSONMode: true,
		Template: "{key} is a {type}",
	})
	require.NoError(t, err)

	var out bytes.Buffer
	matched := eng.ProcessLine([]byte(`{"seen":"a\\b"}`), &out)
	assert.True(t, matched)
	assert.Equal(t, `{"seen":"a\\b is a path"}`, out.String())
}

func TestEndToEnd_BuildIdempotence(t *testing.T) {
	records := `{"key":"alpha","v":1}` + "\n" + `{"key":"beta","v":2}` + "\n"
	a := buildFromRecords(t, records, ports.BuildOptions{})
	b := buildFromRecords(t, records, ports.BuildOptions{})

	probes := [][]byte{[]byte("alpha"), []byte("beta"), []byte("alphabet"), []byte("gamma")}
	wa, wb := a.NewWalker(), b.NewWalker()
	for _, p := range probes {
		na, pa, oka := wa.LookupLongestPrefix(p, 0)
		nb, pb, okb := wb.LookupLongestPrefix(p, 0)
		assert.Equal(t, oka, okb, "probe %s", p)
		assert.Equal(t, na, nb, "probe %s", p)
		assert.Equal(t, string(pa), string(pb), "probe %s", p)
	}
}

func TestEndToEnd_SortedViolationProducesNoIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sorted.fst")
	w, err := NewWriter(path, false)
	require.NoError(t, err)

	records := `{"key":"zzz"}` + "\n" + `{"key":"aaa"}` + "\n"
	_, err = app.Build(strings.NewReader(records), w, ports.BuildOptions{
		OutputPath:   path,
		KeyField:     "key",
		AssumeSorted: true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")

	_, err = Open(path)
	assert.Error(t, err, "a failed --sorted build must not leave a usable index")
}

func TestEndToEnd_ZstdArtifact(t *testing.T) {
	idx := buildFromRecords(t,
		`{"key":"packed","v":1}`+"\n",
		ports.BuildOptions{Zstd: true})

	eng, err := app.NewEngine(idx.NewWalker(), ports.SearchOptions{Template: "[{key}]"})
	require.NoError(t, err)

	var out bytes.Buffer
	eng.ProcessLine([]byte("a packed line"), &out)
	assert.Equal(t, "a [packed] line", out.String())
}
