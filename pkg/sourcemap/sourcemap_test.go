package sourcemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseValidatesRequiredFields(t *testing.T) {
	_, err := Parse([]byte(`{"sources":["a.js"],"mappings":"AAAA"}`))
	require.Error(t, err)

	_, err = Parse([]byte(`{"version":3,"mappings":"AAAA"}`))
	require.Error(t, err)

	f, err := Parse([]byte(`{"version":3,"sources":["a.js"],"mappings":"AAAA"}`))
	require.NoError(t, err)
	assert.Equal(t, 3, f.Version())
}

func TestParseNormalizesPaths(t *testing.T) {
	f, err := Parse([]byte(`{"version":3,"sources":["a\\b//c.js"],"file":"out//dir//a.js","mappings":"AAAA"}`))
	require.NoError(t, err)
	assert.Equal(t, "a/b/c.js", f.Sources()[0])
	assert.Equal(t, "out/dir/a.js", f.File())
}

func TestParseRejectsEmptyMappingsString(t *testing.T) {
	_, err := Parse([]byte(`{"version":3,"sources":["a.js"],"mappings":""}`))
	require.Error(t, err)
}

func TestGetByGeneratedProducesPositionWithSourceAndName(t *testing.T) {
	f, err := FromEnvelope(3, []string{"a.js"}, []string{"foo"}, nil, "", "", "AAAAA")
	require.NoError(t, err)

	pos, ok := f.GetByGenerated(1, 1, EXACT)
	require.True(t, ok)
	assert.Equal(t, "a.js", pos.SourcePath)
	assert.Equal(t, "foo", pos.Name)
	assert.True(t, pos.NameIndex.Present)
}

func TestGetByGeneratedWithCode(t *testing.T) {
	content := "line one\nline two\nline three\nline four\nline five"
	f, err := FromEnvelope(3, []string{"a.js"}, nil, []*string{strPtr(content)}, "", "", "AAAA;AACA;AACA")
	require.NoError(t, err)

	// Third generated line maps to source line 3.
	wc, ok := f.GetByGeneratedWithCode(3, 1, EXACT, ContextWindow{LinesBefore: Unset, LinesAfter: Unset})
	require.True(t, ok)
	assert.Equal(t, 3, wc.SourceLine)
	assert.Equal(t, 1, wc.CodeContext[0].LineNumber)
	assert.Equal(t, "line one", wc.CodeContext[0].Content)
	assert.Equal(t, 5, wc.CodeContext[len(wc.CodeContext)-1].LineNumber)
}

func TestGetByGeneratedWithCodeRequiresContent(t *testing.T) {
	f, err := FromEnvelope(3, []string{"a.js"}, nil, nil, "", "", "AAAA")
	require.NoError(t, err)
	_, ok := f.GetByGeneratedWithCode(1, 1, EXACT, ContextWindow{})
	assert.False(t, ok)
}

func TestConcatenation(t *testing.T) {
	// A: 4 generated lines, 1 source, 0 names.
	a, err := FromEnvelope(3, []string{"a.js"}, nil, nil, "", "", "AAAA;AACA;AACA;AACA")
	require.NoError(t, err)
	require.Equal(t, 4, a.GeneratedLineCount())

	// B: 3 generated lines, 2 sources, 1 name; includes a named segment.
	b, err := FromEnvelope(3, []string{"b1.js", "b2.js"}, []string{"bName"}, nil, "", "", "AAAAA;AACA;AAEA")
	require.NoError(t, err)
	require.Equal(t, 3, b.GeneratedLineCount())

	require.NoError(t, a.Concat(b))

	assert.Equal(t, 7, a.GeneratedLineCount())
	assert.Equal(t, []string{"a.js", "b1.js", "b2.js"}, a.Sources())
	assert.Equal(t, []string{"bName"}, a.Names())

	// B's first segment (generated line 1, name index 0) now lives at
	// generated line 5 with source_index shifted by +1 and name_index by +0.
	pos, ok := a.GetByGenerated(5, 1, EXACT)
	require.True(t, ok)
	assert.Equal(t, 1, pos.SourceIndex)
	assert.True(t, pos.NameIndex.Present)
	assert.Equal(t, 0, pos.NameIndex.Value)
	assert.Equal(t, "bName", pos.Name)

	// Round trip: decoding the composed mapping string reproduces the same store.
	roundTripped, err := FromEnvelope(3, a.Sources(), a.Names(), nil, "", "", a.Encode())
	require.NoError(t, err)
	rtPos, ok := roundTripped.GetByGenerated(5, 1, EXACT)
	require.True(t, ok)
	assert.Equal(t, pos.GeneratedColumn, rtPos.GeneratedColumn)
	assert.Equal(t, pos.SourceIndex, rtPos.SourceIndex)
}

func TestConcatDoesNotMutateArgument(t *testing.T) {
	a, err := FromEnvelope(3, []string{"a.js"}, nil, nil, "", "", "AAAA")
	require.NoError(t, err)
	b, err := FromEnvelope(3, []string{"b.js"}, nil, nil, "", "", "AAAA")
	require.NoError(t, err)

	require.NoError(t, a.Concat(b))

	assert.Equal(t, []string{"b.js"}, b.Sources())
	assert.Equal(t, 1, b.GeneratedLineCount())
}

func TestDuplicateIsIndependent(t *testing.T) {
	f, err := FromEnvelope(3, []string{"a.js"}, nil, nil, "", "", "AAAA")
	require.NoError(t, err)

	clone := f.Duplicate()
	other, err := FromEnvelope(3, []string{"other.js"}, nil, nil, "", "", "AAAA")
	require.NoError(t, err)
	require.NoError(t, clone.Concat(other))

	assert.Equal(t, 1, f.GeneratedLineCount())
	assert.Equal(t, []string{"a.js"}, f.Sources())
	assert.Equal(t, 2, clone.GeneratedLineCount())
}

func TestAbsentFrameSurvivesRoundTrip(t *testing.T) {
	f, err := FromEnvelope(3, []string{"a.js"}, nil, nil, "", "", "AAAA;;AACA")
	require.NoError(t, err)
	assert.Equal(t, "AAAA;;AACA", f.Encode())
}
