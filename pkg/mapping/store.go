// Package mapping implements the Mapping Store: an ordered, line-indexed
// collection of segments, with decode/encode of whole "mappings" wire
// strings and the generated/original position-lookup operations built
// on top of it.
package mapping

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MadAppGang/sourcemap/pkg/segment"
	"github.com/MadAppGang/sourcemap/pkg/vlq"
)

// Line is one entry in the store: either present (an ordered, possibly
// empty list of segments) or absent (the generated line contributes no
// mappings at all, i.e. an empty frame between ';' delimiters).
type Line struct {
	Present  bool
	Segments []segment.Segment
}

// FrameError wraps a decode error with the 1-based frame (generated
// line) index it occurred in, so a caller can point a user at the
// offending line in the mappings string.
type FrameError struct {
	Frame int
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("mapping: frame %d: %v", e.Frame, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }

// Store is the central component of the library: a sparse ordered
// sequence of generated lines, each present or absent, holding segments
// sorted by generated_column within each present line.
type Store struct {
	lines []Line
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

// LineCount returns the number of generated lines currently held (the
// highest decoded frame index + 1; never shrinks).
func (s *Store) LineCount() int {
	return len(s.lines)
}

// Lines returns the store's lines. The returned slice and its Segments
// must not be mutated by the caller.
func (s *Store) Lines() []Line {
	return s.lines
}

// validMappingChar reports whether b is legal anywhere in a "mappings"
// string: the VLQ Base64 alphabet plus the ',' and ';' separators.
func validMappingChar(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	case b == '+' || b == '/' || b == ',' || b == ';':
		return true
	default:
		return false
	}
}

// DecodeString parses a Base64 VLQ "mappings" string and appends the
// decoded lines to the store. name_off, src_off, and line_off rebase the
// decoded name_index, source_index, and generated_line of every segment
// (used during multi-map composition); pass zero for a standalone
// decode.
//
// The entire string must match [A-Za-z0-9+/,;]+; an empty string or any
// other character fails before any segment is produced. Segments are
// appended to existing store contents — existing lines are never
// modified.
func (s *Store) DecodeString(str string, nameOff, srcOff, lineOff int) error {
	if len(str) == 0 {
		return fmt.Errorf("mapping: empty mappings string")
	}
	for i := 0; i < len(str); i++ {
		if !validMappingChar(str[i]) {
			return fmt.Errorf("mapping: invalid character %q at offset %d", str[i], i)
		}
	}

	baseLine := len(s.lines)
	frames := strings.Split(str, ";")
	off := &segment.Offset{}

	for i, frame := range frames {
		frameIndex := i + 1 // frames are reported 1-based in errors
		off.GenLine = baseLine + i
		off.ResetColumn()

		if frame == "" {
			s.lines = append(s.lines, Line{Present: false})
			continue
		}

		raw := strings.Split(frame, ",")
		segs := make([]segment.Segment, 0, len(raw))
		for _, rawSeg := range raw {
			deltas, err := vlq.Decode(rawSeg)
			if err != nil {
				return &FrameError{Frame: frameIndex, Err: err}
			}
			if len(deltas) != 4 && len(deltas) != 5 {
				return &FrameError{Frame: frameIndex, Err: fmt.Errorf("segment with %d values is not supported (only 4 or 5)", len(deltas))}
			}
			seg, err := segment.Decode(off, off.GenLine+1, deltas)
			if err != nil {
				return &FrameError{Frame: frameIndex, Err: err}
			}
			if err := segment.Validate(seg); err != nil {
				return &FrameError{Frame: frameIndex, Err: err}
			}
			if lineOff != 0 {
				seg.GeneratedLine += lineOff
			}
			seg.SourceIndex += srcOff
			if seg.NameIndex.Present {
				seg.NameIndex.Value += nameOff
			}
			segs = append(segs, seg)
		}
		s.lines = append(s.lines, Line{Present: true, Segments: segs})
	}

	return nil
}

// ArrayLine is one entry of the structured-array decode form: either
// Absent, or a (possibly empty) list of already-resolved 1-based
// Segments.
type ArrayLine struct {
	Absent   bool
	Segments []segment.Segment
}

// DecodeArray appends pre-structured lines to the store, validating
// every segment before applying the rebase offsets. Each segment's
// generated_line is overwritten with line_off plus the store's length
// prior to this call: the array form carries no per-frame wire
// position, so line membership is purely positional.
func (s *Store) DecodeArray(lines []ArrayLine, nameOff, srcOff, lineOff int) error {
	baseLine := len(s.lines)

	for i, entry := range lines {
		lineIndex := i + 1 // 1-based
		if entry.Absent {
			s.lines = append(s.lines, Line{Present: false})
			continue
		}

		segs := make([]segment.Segment, 0, len(entry.Segments))
		for _, seg := range entry.Segments {
			if err := segment.Validate(seg); err != nil {
				return &FrameError{Frame: lineIndex, Err: err}
			}
			out := seg
			out.GeneratedLine = lineOff + baseLine + i + 1
			out.SourceIndex += srcOff
			if out.NameIndex.Present {
				out.NameIndex.Value += nameOff
			}
			segs = append(segs, out)
		}
		s.lines = append(s.lines, Line{Present: true, Segments: segs})
	}

	return nil
}

// Merge appends other's lines verbatim onto s, with no rebasing. It is
// the low-level splice Facade.Concat uses after decoding an incoming
// map's mapping string into a scratch Store (see sourcemap.Facade.Concat
// for why the rebase must happen during that scratch decode, not here).
func (s *Store) Merge(other *Store) {
	s.lines = append(s.lines, other.lines...)
}

// DecodeFrom copies every line of other into s, applying the same
// rebase offsets as DecodeArray. This is a third named entry point
// alongside DecodeString/DecodeArray, kept distinct rather than
// collapsing all three into one dynamically-typed decode union.
func (s *Store) DecodeFrom(other *Store, nameOff, srcOff, lineOff int) error {
	lines := make([]ArrayLine, len(other.lines))
	for i, l := range other.lines {
		if !l.Present {
			lines[i] = ArrayLine{Absent: true}
			continue
		}
		lines[i] = ArrayLine{Segments: l.Segments}
	}
	return s.DecodeArray(lines, nameOff, srcOff, lineOff)
}

// Encode re-emits the store as a Base64 VLQ "mappings" string. The
// stored generated_line field is not consulted; frame boundaries alone
// carry that information, so decode(encode()) reproduces the original
// segment sequence and framing exactly.
func (s *Store) Encode() string {
	var b strings.Builder
	off := &segment.Offset{}

	for i, line := range s.lines {
		if i > 0 {
			b.WriteByte(';')
		}
		off.ResetColumn()
		if !line.Present {
			continue
		}
		for j, seg := range line.Segments {
			if j > 0 {
				b.WriteByte(',')
			}
			deltas := segment.Encode(off, seg)
			b.WriteString(vlq.EncodeArray(deltas))
		}
	}

	return b.String()
}

func lineIndexFor(generatedLine, lineOffset int) int {
	return generatedLine - lineOffset - 1
}

// GetByGenerated looks up the segment at 1-based (line, col), after
// subtracting lineOffset from line to find the store-internal line
// index. Pass lineOffset 0 unless querying a composed map section.
//
// On an exact column match the segment is returned regardless of bias.
// On a miss, EXACT reports not-found; FLOOR returns the greatest segment
// with generated_column < col (or not-found if none); CEIL returns the
// least segment with generated_column > col (or not-found if none).
func (s *Store) GetByGenerated(line, col int, bias segment.Bias, lineOffset int) (segment.Segment, bool) {
	idx := lineIndexFor(line, lineOffset)
	if idx < 0 || idx >= len(s.lines) || !s.lines[idx].Present {
		return segment.Segment{}, false
	}
	segs := s.lines[idx].Segments
	if len(segs) == 0 {
		return segment.Segment{}, false
	}

	// sort.Search finds the first index whose GeneratedColumn >= col.
	i := sort.Search(len(segs), func(i int) bool {
		return segs[i].GeneratedColumn >= col
	})

	if i < len(segs) && segs[i].GeneratedColumn == col {
		return segs[i], true
	}

	switch bias {
	case CEIL:
		if i < len(segs) {
			return segs[i], true
		}
		return segment.Segment{}, false
	case FLOOR:
		if i > 0 {
			return segs[i-1], true
		}
		return segment.Segment{}, false
	default: // EXACT
		return segment.Segment{}, false
	}
}

const (
	// aliases kept local so callers of this package don't need to import
	// pkg/segment just to spell the bias constants at call sites that
	// already hold a segment.Bias value.
	EXACT = segment.EXACT
	FLOOR = segment.FLOOR
	CEIL  = segment.CEIL
)

// GetByOriginal performs a linear scan over all lines and segments,
// returning the segment whose (source_index, source_line) match and
// whose column satisfies bias relative to col: an exact column match
// wins immediately; otherwise FLOOR tracks the largest column strictly
// less than col, CEIL the smallest strictly greater, each minimizing the
// distance to col. EXACT only accepts exact matches.
//
// This is O(n) in the number of stored segments; callers performing many
// reverse queries should use BuildOriginalIndex instead.
func (s *Store) GetByOriginal(sourceLine, col, sourceIndex int, bias segment.Bias) (segment.Segment, bool) {
	var best segment.Segment
	haveBest := false
	bestDist := 0

	for _, line := range s.lines {
		if !line.Present {
			continue
		}
		for _, seg := range line.Segments {
			if seg.SourceIndex != sourceIndex || seg.SourceLine != sourceLine {
				continue
			}
			if seg.SourceColumn == col {
				return seg, true
			}
			if bias == EXACT {
				continue
			}
			if bias == FLOOR && seg.SourceColumn >= col {
				continue
			}
			if bias == CEIL && seg.SourceColumn <= col {
				continue
			}
			dist := seg.SourceColumn - col
			if dist < 0 {
				dist = -dist
			}
			if !haveBest || dist < bestDist {
				best, bestDist, haveBest = seg, dist, true
			}
		}
	}

	return best, haveBest
}

// OriginalKey identifies a bucket in the reverse index: one original
// source file and line.
type OriginalKey struct {
	SourceIndex int
	SourceLine  int
}

// BuildOriginalIndex buckets every stored segment by (source_index,
// source_line), sorting each bucket ascending by source_column. The
// index is produced on demand from the store's current contents; it is
// not maintained incrementally, so callers should rebuild it after
// further decodes.
func (s *Store) BuildOriginalIndex() map[OriginalKey][]segment.Segment {
	idx := make(map[OriginalKey][]segment.Segment)
	for _, line := range s.lines {
		if !line.Present {
			continue
		}
		for _, seg := range line.Segments {
			key := OriginalKey{SourceIndex: seg.SourceIndex, SourceLine: seg.SourceLine}
			idx[key] = append(idx[key], seg)
		}
	}
	for key, segs := range idx {
		sort.Slice(segs, func(i, j int) bool {
			return segs[i].SourceColumn < segs[j].SourceColumn
		})
		idx[key] = segs
	}
	return idx
}
