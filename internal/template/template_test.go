package template

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEvent = `{
	"entity": {"metadata": {"namespace": "entity-namespace", "name": "entity-name"}},
	"check": {"metadata": {"name": "check-name"}, "output": "check-output", "status": 1},
	"some_list_thingo": ["a", "b", "c"]
}`

func decodeEvent(t *testing.T) map[string]any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(testEvent))
	dec.UseNumber()
	var doc map[string]any
	require.NoError(t, dec.Decode(&doc))
	return doc
}

func TestIsReference(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"{{ .check.output }}", true},
		{"  {{.check.output}}  ", true},
		{"{{ check_output }}", true},
		{"{{ }}", true},
		{"{{ .a }} {{ .b }}", false},
		{"{{ .a | upper }}", false},
		{"{{ {{ .a }} }}", false},
		{"prefix {{ .a }}", false},
		{"plain text", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsReference(tt.input))
		})
	}
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		expr string
		want Path
	}{
		{".a.b", Path{"a", "b"}},
		{"a.b", Path{"a", "b"}},
		{"a.b.", Path{"a", "b"}},
		{" . a . b . ", Path{"a", "b"}},
		{"..a..b..", Path{"a", "b"}},
		{".", Path{}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePath(tt.expr))
		})
	}
}

func TestExtractEquivalentFormats(t *testing.T) {
	doc := decodeEvent(t)

	templates := []string{
		"{{ .entity.metadata.namespace }}",
		"{{ .entity.metadata.namespace. }}",
		"{{ . entity . metadata . namespace . }}",
		"    {{ .entity.metadata.namespace }}   ",
		"{{.entity.metadata.namespace}}",
		" {{ entity.metadata.namespace }} ",
	}

	for _, tmpl := range templates {
		got, err := Extract(tmpl, doc)
		require.NoError(t, err, "template %q", tmpl)
		assert.Equal(t, "entity-namespace", got, "template %q", tmpl)
	}
}

func TestExtractMapping(t *testing.T) {
	doc := decodeEvent(t)

	got, err := Extract("{{ .entity.metadata }}", doc)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"namespace": "entity-namespace",
		"name":      "entity-name",
	}, got)
}

func TestExtractSequence(t *testing.T) {
	doc := decodeEvent(t)

	got, err := Extract("{{ .some_list_thingo }}", doc)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, got)
}

func TestExtractNumberKeepsPrecision(t *testing.T) {
	doc := decodeEvent(t)

	got, err := Extract("{{ .check.status }}", doc)
	require.NoError(t, err)
	assert.Equal(t, json.Number("1"), got)
}

func TestExtractMissing(t *testing.T) {
	doc := decodeEvent(t)

	tests := []struct {
		tmpl    string
		segment string
		prefix  []string
		msg     string
	}{
		{
			tmpl:    "{{ bob }}",
			segment: "bob",
			prefix:  []string{},
			msg:     "could not find 'bob' in event",
		},
		{
			tmpl:    "{{ entity.not_here }}",
			segment: "not_here",
			prefix:  []string{"entity"},
			msg:     "could not find 'not_here' in event['entity']",
		},
		{
			tmpl:    "{{ entity.metadata.0 }}",
			segment: "0",
			prefix:  []string{"entity", "metadata"},
			msg:     "could not find '0' in event['entity']['metadata']",
		},
		{
			tmpl:    "{{ .nope.missing }}",
			segment: "nope",
			prefix:  []string{},
			msg:     "could not find 'nope' in event",
		},
		{
			tmpl:    "{{ .some_list_thingo.0 }}",
			segment: "0",
			prefix:  []string{"some_list_thingo"},
			msg:     "could not find '0' in event['some_list_thingo']",
		},
		{
			tmpl:    "{{ .check.output.length }}",
			segment: "length",
			prefix:  []string{"check", "output"},
			msg:     "could not find 'length' in event['check']['output']",
		},
	}

	for _, tt := range tests {
		t.Run(tt.tmpl, func(t *testing.T) {
			got, err := Extract(tt.tmpl, doc)
			require.Error(t, err)
			assert.Nil(t, got)

			var notFound *PathNotFoundError
			require.True(t, errors.As(err, &notFound))
			assert.Equal(t, tt.segment, notFound.Segment)
			assert.Equal(t, tt.prefix, []string(notFound.Prefix))
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestExtractRejectsNonReference(t *testing.T) {
	_, err := Extract("not a template", map[string]any{})
	require.Error(t, err)

	var notFound *PathNotFoundError
	assert.False(t, errors.As(err, &notFound))
}

func TestPathString(t *testing.T) {
	assert.Equal(t, ".check.output", Path{"check", "output"}.String())
	assert.Equal(t, ".", Path{}.String())
}
