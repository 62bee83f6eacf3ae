// Package segment converts between the Source Map v3 per-segment delta
// vectors (4 or 5 VLQ integers) and fully resolved, 1-based Segment
// records, threading a mutable running Offset through the conversion.
package segment

import "fmt"

// Bias controls what GetByGenerated/GetByOriginal return on a miss.
type Bias int

const (
	// EXACT requires an exact match; any miss reports "not found".
	EXACT Bias = iota
	// FLOOR returns the nearest match at or before the target.
	FLOOR
	// CEIL returns the nearest match at or after the target.
	CEIL
)

func (b Bias) String() string {
	switch b {
	case EXACT:
		return "EXACT"
	case FLOOR:
		return "FLOOR"
	case CEIL:
		return "CEIL"
	default:
		return fmt.Sprintf("Bias(%d)", int(b))
	}
}

// OptionalIndex represents a 0-based table index that may be absent.
// Absence (a segment with no name) is semantically distinct from index 0.
type OptionalIndex struct {
	Value   int
	Present bool
}

// Absent is the zero-value "no index" sentinel.
var Absent = OptionalIndex{}

// Index constructs a present OptionalIndex.
func Index(v int) OptionalIndex { return OptionalIndex{Value: v, Present: true} }

// Segment is a single 1-based mapping point: one position in the
// generated output linked to one position in an original source.
type Segment struct {
	GeneratedLine   int
	GeneratedColumn int
	SourceLine      int
	SourceColumn    int
	SourceIndex     int
	NameIndex       OptionalIndex
}

// Offset is the running 0-based delta-decoding state: each segment's
// fields are deltas against the previous segment's accumulated value,
// not absolute positions. It is passed by pointer and mutated in place
// as segments are produced or consumed; no heap allocation is required
// per segment.
type Offset struct {
	GenLine     int
	GenColumn   int
	SourceLine  int
	SourceColumn int
	SourceIndex int
	NameIndex   int
}

// ResetColumn resets the per-line generated-column accumulator. Called by
// the mapping store at the start of every frame, on both decode and
// encode — generated_column deltas reset every line while the other four
// accumulators carry across line boundaries.
func (o *Offset) ResetColumn() {
	o.GenColumn = 0
}

// ValidationError names the first invalid field encountered while
// accepting a decoded segment into the store.
type ValidationError struct {
	Field string
	Value int64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("segment: invalid %s: %d", e.Field, e.Value)
}

// Validate enforces a Segment's field constraints: positional fields
// must be >= 1; SourceIndex must be non-negative; NameIndex, if present,
// must be non-negative.
func Validate(s Segment) error {
	if s.GeneratedLine < 1 {
		return &ValidationError{Field: "generated_line", Value: int64(s.GeneratedLine)}
	}
	if s.GeneratedColumn < 1 {
		return &ValidationError{Field: "generated_column", Value: int64(s.GeneratedColumn)}
	}
	if s.SourceLine < 1 {
		return &ValidationError{Field: "source_line", Value: int64(s.SourceLine)}
	}
	if s.SourceColumn < 1 {
		return &ValidationError{Field: "source_column", Value: int64(s.SourceColumn)}
	}
	if s.SourceIndex < 0 {
		return &ValidationError{Field: "source_index", Value: int64(s.SourceIndex)}
	}
	if s.NameIndex.Present && s.NameIndex.Value < 0 {
		return &ValidationError{Field: "name_index", Value: int64(s.NameIndex.Value)}
	}
	return nil
}

// Decode converts a delta vector (length 4 or 5) into a 1-based
// Segment, applying and updating off in place. gen_line is not
// part of the delta vector; the caller (the mapping store) advances it at
// frame boundaries and supplies it here.
func Decode(off *Offset, genLine int, deltas []int64) (Segment, error) {
	if len(deltas) != 4 && len(deltas) != 5 {
		return Segment{}, fmt.Errorf("segment: expected 4 or 5 values, got %d", len(deltas))
	}

	off.GenColumn += int(deltas[0])
	off.SourceIndex += int(deltas[1])
	off.SourceLine += int(deltas[2])
	off.SourceColumn += int(deltas[3])

	s := Segment{
		GeneratedLine:   genLine,
		GeneratedColumn: off.GenColumn + 1,
		SourceLine:      off.SourceLine + 1,
		SourceColumn:    off.SourceColumn + 1,
		SourceIndex:     off.SourceIndex,
	}

	if len(deltas) == 5 {
		off.NameIndex += int(deltas[4])
		s.NameIndex = Index(off.NameIndex)
	}

	return s, nil
}

// Encode converts a 1-based Segment into its delta vector relative to
// off, and advances off to the segment's 0-based values. It emits exactly
// 5 integers iff NameIndex is present (including the value 0), 4
// otherwise.
func Encode(off *Offset, s Segment) []int64 {
	genColumn := s.GeneratedColumn - 1
	sourceIndex := s.SourceIndex
	sourceLine := s.SourceLine - 1
	sourceColumn := s.SourceColumn - 1

	deltas := []int64{
		int64(genColumn - off.GenColumn),
		int64(sourceIndex - off.SourceIndex),
		int64(sourceLine - off.SourceLine),
		int64(sourceColumn - off.SourceColumn),
	}

	off.GenColumn = genColumn
	off.SourceIndex = sourceIndex
	off.SourceLine = sourceLine
	off.SourceColumn = sourceColumn

	if s.NameIndex.Present {
		deltas = append(deltas, int64(s.NameIndex.Value-off.NameIndex))
		off.NameIndex = s.NameIndex.Value
	}

	return deltas
}
