// Package sourcemap provides the Source Map Facade: the envelope
// (sources, names, sourcesContent, file, sourceRoot) wrapped around a
// Mapping Store, position-query results, and map composition.
package sourcemap

import (
	"fmt"
	"strings"

	"github.com/segmentio/encoding/json"

	"github.com/MadAppGang/sourcemap/pkg/mapping"
	"github.com/MadAppGang/sourcemap/pkg/segment"
)

// Bias re-exports segment.Bias so callers of this package don't need to
// import pkg/segment to spell EXACT/FLOOR/CEIL.
type Bias = segment.Bias

const (
	EXACT = segment.EXACT
	FLOOR = segment.FLOOR
	CEIL  = segment.CEIL
)

// EnvelopeError reports a malformed Source Map v3 envelope.
type EnvelopeError struct {
	Field string
	Msg   string
}

func (e *EnvelopeError) Error() string {
	return fmt.Sprintf("sourcemap: envelope %s: %s", e.Field, e.Msg)
}

// envelope is the raw JSON shape of a Source Map v3 document.
type envelope struct {
	Version        int             `json:"version"`
	File           string          `json:"file,omitempty"`
	SourceRoot     string          `json:"sourceRoot,omitempty"`
	Sources        []string        `json:"sources"`
	Names          []string        `json:"names,omitempty"`
	SourcesContent []*string       `json:"sourcesContent,omitempty"`
	Mappings       string          `json:"mappings"`
}

// Facade wraps a Mapping Store with the surrounding envelope fields and
// provides the position-query and composition API. A Facade exclusively
// owns its Store; Concat never mutates its arguments and Duplicate
// produces a fully independent clone.
type Facade struct {
	version            int
	file               string
	sourceRoot         string
	sources            []string
	names              []string
	sourcesContent     []*string // nil entry == absent
	generatedLineCount int

	store *mapping.Store
}

func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}

// Parse builds a Facade from a raw Source Map v3 JSON document.
func Parse(data []byte) (*Facade, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &EnvelopeError{Field: "<root>", Msg: err.Error()}
	}
	return FromEnvelope(env.Version, env.Sources, env.Names, env.SourcesContent, env.File, env.SourceRoot, env.Mappings)
}

// FromEnvelope builds a Facade from already-parsed envelope fields,
// validating that version is present, sources is a list (always true in
// Go's static typing — the check exists so a caller that assembled these
// fields from untyped input still gets a named error), and mappings is a
// string (likewise always true here).
func FromEnvelope(version int, sources, names []string, sourcesContent []*string, file, sourceRoot, mappings string) (*Facade, error) {
	if version == 0 {
		return nil, &EnvelopeError{Field: "version", Msg: "missing or zero"}
	}
	if sources == nil {
		return nil, &EnvelopeError{Field: "sources", Msg: "must be a list"}
	}

	f := &Facade{
		version:        version,
		file:           normalizePath(file),
		sourceRoot:     normalizePath(sourceRoot),
		sources:        normalizeAll(sources),
		names:          append([]string(nil), names...),
		sourcesContent: append([]*string(nil), sourcesContent...),
		store:          mapping.New(),
	}

	if err := f.store.DecodeString(mappings, 0, 0, 0); err != nil {
		return nil, err
	}
	f.generatedLineCount = f.store.LineCount()

	return f, nil
}

func normalizeAll(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = normalizePath(p)
	}
	return out
}

// Version reports the envelope's source map version.
func (f *Facade) Version() int { return f.version }

// File returns the normalized generated-file name, if any.
func (f *Facade) File() string { return f.file }

// SourceRoot returns the normalized source-root prefix, if any.
func (f *Facade) SourceRoot() string { return f.sourceRoot }

// Sources returns the source path table. Callers must not mutate it.
func (f *Facade) Sources() []string { return f.sources }

// Names returns the identifier-name table. Callers must not mutate it.
func (f *Facade) Names() []string { return f.names }

// GeneratedLineCount reports the number of generated lines the Facade
// currently covers, across all composed maps.
func (f *Facade) GeneratedLineCount() int { return f.generatedLineCount }

// Encode re-emits the underlying Store as a Base64 VLQ mappings string.
func (f *Facade) Encode() string { return f.store.Encode() }

// ToJSON serializes the Facade back to the canonical Source Map v3 JSON
// envelope.
func (f *Facade) ToJSON() ([]byte, error) {
	return json.Marshal(envelope{
		Version:        f.version,
		File:           f.file,
		SourceRoot:     f.sourceRoot,
		Sources:        f.sources,
		Names:          f.names,
		SourcesContent: f.sourcesContent,
		Mappings:       f.Encode(),
	})
}

// Position is the result of resolving one side of a mapping: a
// generated coordinate, its matched original coordinate, which source
// and name it resolved against, and optionally the source's content.
type Position struct {
	GeneratedLine   int
	GeneratedColumn int
	SourceLine      int
	SourceColumn    int
	SourceIndex     int
	SourcePath      string
	SourceContent   *string
	NameIndex       segment.OptionalIndex
	Name            string
}

func (f *Facade) toPosition(seg segment.Segment, withContent bool) Position {
	p := Position{
		GeneratedLine:   seg.GeneratedLine,
		GeneratedColumn: seg.GeneratedColumn,
		SourceLine:      seg.SourceLine,
		SourceColumn:    seg.SourceColumn,
		SourceIndex:     seg.SourceIndex,
		NameIndex:       seg.NameIndex,
	}
	if seg.SourceIndex >= 0 && seg.SourceIndex < len(f.sources) {
		p.SourcePath = f.sources[seg.SourceIndex]
	}
	if withContent && seg.SourceIndex >= 0 && seg.SourceIndex < len(f.sourcesContent) {
		p.SourceContent = f.sourcesContent[seg.SourceIndex]
	}
	if seg.NameIndex.Present && seg.NameIndex.Value >= 0 && seg.NameIndex.Value < len(f.names) {
		p.Name = f.names[seg.NameIndex.Value]
	}
	return p
}

// GetByGenerated looks up the segment at 1-based (line, col) and returns
// it as a Position, or false if no segment satisfies bias.
func (f *Facade) GetByGenerated(line, col int, bias Bias) (Position, bool) {
	seg, ok := f.store.GetByGenerated(line, col, bias, 0)
	if !ok {
		return Position{}, false
	}
	return f.toPosition(seg, false), true
}

// GetByOriginal looks up the nearest segment for 1-based (sourceLine,
// col) within source table entry sourceIndex, returning it as a
// Position, or false if none satisfies bias.
func (f *Facade) GetByOriginal(sourceLine, col, sourceIndex int, bias Bias) (Position, bool) {
	seg, ok := f.store.GetByOriginal(sourceLine, col, sourceIndex, bias)
	if !ok {
		return Position{}, false
	}
	return f.toPosition(seg, false), true
}

// BuildOriginalIndex exposes the Store's reverse index for callers that
// perform many reverse queries and want to pay the O(n log n) bucketing
// cost once.
func (f *Facade) BuildOriginalIndex() map[mapping.OriginalKey][]segment.Segment {
	return f.store.BuildOriginalIndex()
}

// CodeContext is one line of source surrounding a lookup hit.
type CodeContext struct {
	LineNumber int
	Content    string
}

// WithCode is the "with-code" result shape: a Position plus the
// surrounding source lines.
type WithCode struct {
	Position
	CodeContext []CodeContext
}

// Unset marks a ContextWindow field as "use the default", distinct from
// an explicit 0 meaning "no lines on this side".
const Unset = -1

// ContextWindow bounds how many lines of source surround a
// GetByGeneratedWithCode hit. LinesBefore/LinesAfter below 0 (use Unset)
// fall back to a default of 2 lines on that side; 0 is honored as-is.
type ContextWindow struct {
	LinesBefore int
	LinesAfter  int
}

// GetByGeneratedWithCode looks up a segment and, if its source has
// sourcesContent, slices out the surrounding lines as CodeContext. It
// reports not-found both when no segment matches and when the matching
// segment's source has no content to slice.
func (f *Facade) GetByGeneratedWithCode(line, col int, bias Bias, window ContextWindow) (WithCode, bool) {
	pos, ok := f.GetByGenerated(line, col, bias)
	if !ok {
		return WithCode{}, false
	}

	if pos.SourceIndex < 0 || pos.SourceIndex >= len(f.sourcesContent) || f.sourcesContent[pos.SourceIndex] == nil {
		return WithCode{}, false
	}
	pos.SourceContent = f.sourcesContent[pos.SourceIndex]

	before := window.LinesBefore
	if before < 0 {
		before = 2
	}
	after := window.LinesAfter
	if after < 0 {
		after = 2
	}

	lines := splitLines(*pos.SourceContent)
	total := len(lines)

	start := pos.SourceLine - before
	if start < 1 {
		start = 1
	}
	end := pos.SourceLine + after
	if end > total {
		end = total
	}

	ctx := make([]CodeContext, 0, end-start+1)
	for i := start; i <= end; i++ {
		content := ""
		if i-1 >= 0 && i-1 < total {
			content = lines[i-1]
		}
		ctx = append(ctx, CodeContext{LineNumber: i, Content: content})
	}

	return WithCode{Position: pos, CodeContext: ctx}, true
}

// appendSourcesContent keeps the sourcesContent array aligned with
// sources across composition: it pads with empty-string entries on
// whichever side (self's prior sources, or the incoming map's sources)
// lacks content.
func appendSourcesContent(self []*string, selfSourceCount int, incoming []*string, incomingSourceCount int) []*string {
	if self == nil && incoming == nil {
		return nil
	}

	empty := func(n int) []*string {
		out := make([]*string, n)
		for i := range out {
			e := ""
			out[i] = &e
		}
		return out
	}

	if len(self) < selfSourceCount {
		self = append(self, empty(selfSourceCount-len(self))...)
	}
	if incoming == nil {
		incoming = empty(incomingSourceCount)
	}
	return append(self, incoming...)
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}

// Concat appends each additional map's segments to f, as if the
// generated files were concatenated vertically. f is mutated; the
// arguments are never mutated. Each incoming map is decoded into an
// empty scratch Store with the line offset and then spliced on with
// Merge: DecodeString already counts the receiving Store's existing
// lines, so decoding straight into f's Store with the line offset would
// shift generated lines twice.
func (f *Facade) Concat(others ...*Facade) error {
	for _, m := range others {
		nameOff := len(f.names)
		srcOff := len(f.sources)
		lineOff := f.generatedLineCount

		f.names = append(f.names, m.names...)
		f.sources = append(f.sources, m.sources...)
		f.sourcesContent = appendSourcesContent(f.sourcesContent, srcOff, m.sourcesContent, len(m.sources))

		scratch := mapping.New()
		mappings := m.Encode()
		if mappings != "" {
			if err := scratch.DecodeString(mappings, nameOff, srcOff, lineOff); err != nil {
				return err
			}
		}

		f.store.Merge(scratch)
		f.generatedLineCount += scratch.LineCount()
	}
	return nil
}

// Duplicate returns a fully independent deep copy of f.
func (f *Facade) Duplicate() *Facade {
	clone := &Facade{
		version:            f.version,
		file:               f.file,
		sourceRoot:         f.sourceRoot,
		sources:            append([]string(nil), f.sources...),
		names:              append([]string(nil), f.names...),
		sourcesContent:     append([]*string(nil), f.sourcesContent...),
		generatedLineCount: f.generatedLineCount,
		store:              mapping.New(),
	}
	mappings := f.Encode()
	if mappings != "" {
		// Decode is infallible here: f.Encode() only ever emits what f's
		// own store already successfully decoded once.
		_ = clone.store.DecodeString(mappings, 0, 0, 0)
	}
	return clone
}
