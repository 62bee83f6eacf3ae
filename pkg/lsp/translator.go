package lsp

import (
	"bufio"
	"fmt"
	"log"
	"os"

	"go.lsp.dev/protocol"
	lspuri "go.lsp.dev/uri"

	"github.com/MadAppGang/sourcemap/pkg/sourcemap"
)

// Direction specifies translation direction.
type Direction int

const (
	GeneratedToOriginal Direction = iota
	OriginalToGenerated
)

// Translator handles bidirectional position translation using source
// maps, bridging editor-facing LSP positions (0-based) and the 1-based
// positions the mapping Facade deals in.
type Translator struct {
	cache SourceMapGetter
}

// NewTranslator creates a new position translator.
func NewTranslator(cache SourceMapGetter) *Translator {
	return &Translator{cache: cache}
}

// TranslatePosition translates a single position between a generated
// file and its original source. uri always identifies the generated
// file — its ".map" sidecar is what gets loaded — while pos is
// interpreted as generated or original coordinates depending on dir.
// This mirrors how editors already address the file under edit: a
// generated-file buffer's URI is stable across both translation
// directions, only the position's coordinate space changes.
func (t *Translator) TranslatePosition(
	uri protocol.DocumentURI,
	pos protocol.Position,
	dir Direction,
) (protocol.DocumentURI, protocol.Position, error) {
	dirName := "GeneratedToOriginal"
	if dir == OriginalToGenerated {
		dirName = "OriginalToGenerated"
	}
	log.Printf("[LSP Translator] TranslatePosition START: direction=%s, uri=%s, line=%d, col=%d",
		dirName, uri.Filename(), pos.Line, pos.Character)

	// Convert LSP position (0-based) to Facade position (1-based).
	line := int(pos.Line) + 1
	col := int(pos.Character) + 1

	generatedPath := uri.Filename()

	facade, err := t.cache.Get(generatedPath)
	if err != nil {
		return uri, pos, fmt.Errorf("source map not found for %s: %w", generatedPath, err)
	}

	var newLine, newCol int
	var newURI protocol.DocumentURI

	if dir == GeneratedToOriginal {
		result, ok := facade.GetByGenerated(line, col, sourcemap.FLOOR)
		if !ok {
			return uri, pos, fmt.Errorf("no mapping for %s:%d:%d", generatedPath, line, col)
		}
		newLine, newCol = result.SourceLine, result.SourceColumn
		newURI = lspuri.File(result.SourcePath)
	} else {
		// Single-source assumption: an original-coordinate lookup with no
		// further context targets the first entry in the source table.
		result, ok := facade.GetByOriginal(line, col, 0, sourcemap.FLOOR)
		if !ok {
			return uri, pos, fmt.Errorf("no mapping for original position %d:%d", line, col)
		}
		newLine, newCol = result.GeneratedLine, result.GeneratedColumn
		newURI = lspuri.File(generatedPath)
	}

	newPos := protocol.Position{
		Line:      uint32(newLine - 1),
		Character: uint32(newCol - 1),
	}

	// Graceful degradation: source maps can point a bit past the real
	// line length after hand-edits, which would otherwise make gopls
	// reject the position outright.
	newPos = clampPositionToLine(newPos, newURI.Filename())

	log.Printf("[LSP Translator] TranslatePosition END: returning uri=%s, line=%d, col=%d",
		newURI.Filename(), newPos.Line, newPos.Character)

	return newURI, newPos, nil
}

// TranslateRange translates a range between a generated file and its
// original source.
func (t *Translator) TranslateRange(
	uri protocol.DocumentURI,
	rng protocol.Range,
	dir Direction,
) (protocol.DocumentURI, protocol.Range, error) {
	newURI, newStart, err := t.TranslatePosition(uri, rng.Start, dir)
	if err != nil {
		return uri, rng, err
	}

	_, newEnd, err := t.TranslatePosition(uri, rng.End, dir)
	if err != nil {
		return uri, rng, err
	}

	return newURI, protocol.Range{Start: newStart, End: newEnd}, nil
}

// TranslateLocation translates a location (URI + range).
func (t *Translator) TranslateLocation(
	loc protocol.Location,
	dir Direction,
) (protocol.Location, error) {
	newURI, newRange, err := t.TranslateRange(loc.URI, loc.Range, dir)
	if err != nil {
		return loc, err
	}

	return protocol.Location{URI: newURI, Range: newRange}, nil
}

// clampPositionToLine ensures the column doesn't exceed the line length,
// preventing "column is beyond end of line" errors from editors. If the
// line length cannot be read, the position is returned unchanged.
func clampPositionToLine(pos protocol.Position, filePath string) protocol.Position {
	lineLength, err := getLineLength(filePath, int(pos.Line))
	if err != nil {
		log.Printf("[LSP Translator] failed to get line length for %s:%d: %v, leaving column unclamped",
			filePath, pos.Line, err)
		return pos
	}

	maxCol := uint32(lineLength)
	if pos.Character > maxCol {
		pos.Character = maxCol
	}
	return pos
}

// getLineLength returns the length of a specific 0-based line in a file.
func getLineLength(filePath string, lineNum int) (int, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	currentLine := 0

	for scanner.Scan() {
		if currentLine == lineNum {
			return len(scanner.Text()), nil
		}
		currentLine++
	}

	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("error reading file: %w", err)
	}

	return 0, fmt.Errorf("line %d not found in file (file has %d lines)", lineNum, currentLine)
}
