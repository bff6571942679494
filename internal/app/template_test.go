package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, tpl, term, payload string) string {
	t.Helper()
	ct, err := CompileTemplate(tpl)
	require.NoError(t, err)
	var out bytes.Buffer
	ct.Render(&out, []byte(term), []byte(payload))
	return out.String()
}

func TestTemplate_KeyAndField(t *testing.T) {
	got := render(t, "{key} ({type})", "avsvmcloud.com", `{"type":"hostname"}`)
	assert.Equal(t, "avsvmcloud.com (hostname)", got)
}

func TestTemplate_Default(t *testing.T) {
	got := render(t, DefaultTemplate, "foo", `{"key":"foo","v":1}`)
	assert.Equal(t, `<foo|{"key":"foo","v":1}>`, got)
}

func TestTemplate_MissingFieldRendersEmpty(t *testing.T) {
	got := render(t, "[{absent}]", "foo", `{"type":"hostname"}`)
	assert.Equal(t, "[]", got)
}

func TestTemplate_NonStringFieldRendersEmpty(t *testing.T) {
	// Only string payload fields project into text, as with the count here.
	got := render(t, "[{count}]", "foo", `{"count":7}`)
	assert.Equal(t, "[]", got)
}

func TestTemplate_PointerPath(t *testing.T) {
	payload := `{"meta":{"tags":["apt29","solarwinds"]}}`
	got := render(t, "{/meta/tags/1}", "foo", payload)
	assert.Equal(t, "solarwinds", got)
}

func TestTemplate_PointerEscapes(t *testing.T) {
	// ~1 decodes to / and ~0 to ~, per JSON pointer rules.
	payload := `{"a/b":{"c~d":"ok"}}`
	got := render(t, "{/a~1b/c~0d}", "foo", payload)
	assert.Equal(t, "ok", got)
}

func TestTemplate_DottedFieldIsOneKey(t *testing.T) {
	// A plain name addresses a single top-level key even when it contains
	// dots; it is not a path.
	payload := `{"a.b":"flat","a":{"b":"nested"}}`
	got := render(t, "{a.b}", "foo", payload)
	assert.Equal(t, "flat", got)
}

func TestTemplate_ValueIsRawPayload(t *testing.T) {
	got := render(t, "{value}", "foo", `{"any":"thing"}`)
	assert.Equal(t, `{"any":"thing"}`, got)
}

func TestTemplate_KeyOnlySkipsJSONParse(t *testing.T) {
	ct, err := CompileTemplate("-> {key} <-")
	require.NoError(t, err)
	assert.False(t, ct.needsJSON)

	// Payload is not even valid JSON; {key}/{value} templates must not care.
	var out bytes.Buffer
	ct.Render(&out, []byte("term"), []byte("not json"))
	assert.Equal(t, "-> term <-", out.String())
}

func TestTemplate_FieldNeedsJSON(t *testing.T) {
	ct, err := CompileTemplate("{key}:{type}")
	require.NoError(t, err)
	assert.True(t, ct.needsJSON)
}

func TestCompileTemplate_Errors(t *testing.T) {
	_, err := CompileTemplate("broken {placeholder")
	assert.Error(t, err)

	_, err = CompileTemplate("empty {} name")
	assert.Error(t, err)
}

func TestTemplate_LiteralOnly(t *testing.T) {
	got := render(t, "no placeholders here", "foo", `{}`)
	assert.Equal(t, "no placeholders here", got)
}
