package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFourField(t *testing.T) {
	off := &Offset{}
	s, err := Decode(off, 1, []int64{0, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, Segment{
		GeneratedLine:   1,
		GeneratedColumn: 1,
		SourceLine:      1,
		SourceColumn:    1,
		SourceIndex:     0,
		NameIndex:       Absent,
	}, s)
}

func TestDecodeFiveFieldNameZeroIsPresent(t *testing.T) {
	off := &Offset{}
	s, err := Decode(off, 1, []int64{0, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.True(t, s.NameIndex.Present)
	assert.Equal(t, 0, s.NameIndex.Value)
}

func TestDecodeRejectsWrongArity(t *testing.T) {
	off := &Offset{}
	_, err := Decode(off, 1, []int64{0, 0, 0})
	require.Error(t, err)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := Segment{
		GeneratedLine:   3,
		GeneratedColumn: 12,
		SourceLine:      7,
		SourceColumn:    4,
		SourceIndex:     2,
		NameIndex:       Index(5),
	}
	encOff := &Offset{}
	deltas := Encode(encOff, in)
	assert.Len(t, deltas, 5)

	decOff := &Offset{}
	out, err := Decode(decOff, in.GeneratedLine, deltas)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEncodeOmitsAbsentName(t *testing.T) {
	in := Segment{GeneratedLine: 1, GeneratedColumn: 1, SourceLine: 1, SourceColumn: 1, NameIndex: Absent}
	deltas := Encode(&Offset{}, in)
	assert.Len(t, deltas, 4)
}

func TestNegativeDeltasRoundTrip(t *testing.T) {
	first := Segment{GeneratedLine: 1, GeneratedColumn: 10, SourceLine: 5, SourceColumn: 20, NameIndex: Absent}
	second := Segment{GeneratedLine: 1, GeneratedColumn: 15, SourceLine: 5, SourceColumn: 3, NameIndex: Absent}

	encOff := &Offset{}
	d1 := Encode(encOff, first)
	d2 := Encode(encOff, second)

	decOff := &Offset{}
	out1, err := Decode(decOff, 1, d1)
	require.NoError(t, err)
	out2, err := Decode(decOff, 1, d2)
	require.NoError(t, err)

	assert.Equal(t, first, out1)
	assert.Equal(t, second, out2)
}

func TestValidateRejectsSubOneFields(t *testing.T) {
	base := Segment{GeneratedLine: 1, GeneratedColumn: 1, SourceLine: 1, SourceColumn: 1}

	cases := []struct {
		name string
		mut  func(s Segment) Segment
	}{
		{"generated_line", func(s Segment) Segment { s.GeneratedLine = 0; return s }},
		{"generated_column", func(s Segment) Segment { s.GeneratedColumn = 0; return s }},
		{"source_line", func(s Segment) Segment { s.SourceLine = 0; return s }},
		{"source_column", func(s Segment) Segment { s.SourceColumn = 0; return s }},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.mut(base))
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.name, verr.Field)
		})
	}
}

func TestValidateAcceptsValidSegment(t *testing.T) {
	s := Segment{GeneratedLine: 1, GeneratedColumn: 1, SourceLine: 1, SourceColumn: 1, SourceIndex: 0, NameIndex: Index(0)}
	assert.NoError(t, Validate(s))
}

func TestBiasString(t *testing.T) {
	assert.Equal(t, "EXACT", EXACT.String())
	assert.Equal(t, "FLOOR", FLOOR.String())
	assert.Equal(t, "CEIL", CEIL.String())
}
