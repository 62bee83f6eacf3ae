package errors

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"
)

// EnhancedError renders a rustc-style diagnostic: a message, a source
// snippet with line numbers, and a caret underlining the offending span.
// cmd/sourcemap-tool uses it to report lookup misses, with no file and
// line 0, so those messages carry no snippet. The plain
// FrameError/ValidationError types in pkg/mapping and pkg/segment carry
// no source text at all.
type EnhancedError struct {
	Message  string
	Filename string
	Line     int // 1-indexed
	Column   int // 1-indexed
	Length   int // length of the underlined span

	SourceLines   []string // lines to display, with context
	HighlightLine int      // index within SourceLines that has the error

	Annotation string   // text after the carets, e.g. "no mapping at this column"
	Suggestion string   // one-line remediation hint
	Candidates []string // nearby positions the caller might have meant
}

// sourceCache caches file contents to avoid repeated reads across
// multiple diagnostics against the same file.
var (
	sourceCache   = make(map[string][]string)
	sourceCacheMu sync.RWMutex
)

// NewEnhancedError creates an enhanced error with source context read
// from filename at the given 1-indexed (line, column).
func NewEnhancedError(filename string, line, column int, message string) *EnhancedError {
	if line <= 0 {
		return &EnhancedError{Message: message, Filename: filename, Length: 1}
	}

	sourceLines, highlightIdx := extractSourceLines(filename, line, 2)

	return &EnhancedError{
		Message:       message,
		Filename:      filename,
		Line:          line,
		Column:        column,
		Length:        1,
		SourceLines:   sourceLines,
		HighlightLine: highlightIdx,
	}
}

// NewEnhancedErrorSpan creates an enhanced error underlining a column
// range on a single line.
func NewEnhancedErrorSpan(filename string, line, startCol, endCol int, message string) *EnhancedError {
	err := NewEnhancedError(filename, line, startCol, message)

	length := endCol - startCol
	if length < 1 {
		length = 1
	}
	err.Length = length

	return err
}

// WithAnnotation adds text printed after the carets.
func (e *EnhancedError) WithAnnotation(annotation string) *EnhancedError {
	e.Annotation = annotation
	return e
}

// WithSuggestion adds a one-line remediation hint.
func (e *EnhancedError) WithSuggestion(suggestion string) *EnhancedError {
	e.Suggestion = suggestion
	return e
}

// WithCandidates adds nearby positions the caller might have meant,
// e.g. the generated columns that do have a mapping on the queried line.
func (e *EnhancedError) WithCandidates(candidates []string) *EnhancedError {
	e.Candidates = candidates
	return e
}

// Format produces the full multi-line diagnostic.
func (e *EnhancedError) Format() string {
	var buf strings.Builder

	if e.Line > 0 {
		fmt.Fprintf(&buf, "Error: %s in %s:%d:%d\n\n",
			e.Message, filepath.Base(e.Filename), e.Line, e.Column)
	} else {
		fmt.Fprintf(&buf, "Error: %s\n\n", e.Message)
	}

	if len(e.SourceLines) > 0 && e.Line > 0 {
		startLine := e.Line - e.HighlightLine

		for i, line := range e.SourceLines {
			lineNum := startLine + i

			if i == e.HighlightLine {
				fmt.Fprintf(&buf, "  %4d | %s\n", lineNum, line)

				caretIndent := utf8.RuneCountInString(line[:min(e.Column-1, len(line))])
				caretLen := e.Length
				if caretLen < 1 {
					caretLen = 1
				}

				fmt.Fprintf(&buf, "       | %s%s",
					strings.Repeat(" ", caretIndent),
					strings.Repeat("^", caretLen),
				)

				if e.Annotation != "" {
					fmt.Fprintf(&buf, " %s", e.Annotation)
				}
				fmt.Fprintf(&buf, "\n")
			} else {
				fmt.Fprintf(&buf, "  %4d | %s\n", lineNum, line)
			}
		}

		buf.WriteString("\n")
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&buf, "Suggestion: %s\n", e.Suggestion)
	}

	if len(e.Candidates) > 0 {
		fmt.Fprintf(&buf, "\nNearby positions: %s\n", strings.Join(e.Candidates, ", "))
	}

	return buf.String()
}

// Error implements the error interface.
func (e *EnhancedError) Error() string {
	return e.Format()
}

// extractSourceLines reads filename and extracts lines around
// targetLine (1-indexed), with contextLines of padding on each side.
// Returns the lines and the index of the target line within the slice.
func extractSourceLines(filename string, targetLine, contextLines int) ([]string, int) {
	sourceCacheMu.RLock()
	allLines, cached := sourceCache[filename]
	sourceCacheMu.RUnlock()

	if !cached {
		file, err := os.Open(filename)
		if err != nil {
			return nil, 0
		}
		defer file.Close()

		scanner := bufio.NewScanner(file)
		allLines = []string{}
		for scanner.Scan() {
			allLines = append(allLines, scanner.Text())
		}

		if scanner.Err() != nil {
			return nil, 0
		}

		sourceCacheMu.Lock()
		sourceCache[filename] = allLines
		sourceCacheMu.Unlock()
	}

	targetIdx := targetLine - 1
	if targetIdx < 0 || targetIdx >= len(allLines) {
		return nil, 0
	}

	start := max(0, targetIdx-contextLines)
	end := min(len(allLines), targetIdx+contextLines+1)

	highlightIdx := targetIdx - start
	return allLines[start:end], highlightIdx
}

// ClearCache clears the source file cache (useful for testing, and for
// long-running processes like the LSP bridge after files change).
func ClearCache() {
	sourceCacheMu.Lock()
	sourceCache = make(map[string][]string)
	sourceCacheMu.Unlock()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
