// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package syntax lexes and parses leanr surface syntax into an AST.
package syntax

import (
	"fmt"
	"sort"
)

// Span is a byte-offset range in a specific source file, used for
// error reporting.
type Span struct {
	Start  uint32
	End    uint32
	FileID uint32
}

// DummySpan is used for generated or test code with no real source
// location.
var DummySpan = Span{FileID: ^uint32(0)}

// To returns the smallest span covering both s and other. Both must
// belong to the same file.
func (s Span) To(other Span) Span {
	start, end := s.Start, s.End
	if other.Start < start {
		start = other.Start
	}
	if other.End > end {
		end = other.End
	}
	return Span{Start: start, End: end, FileID: s.FileID}
}

// Len returns the span's length in bytes.
func (s Span) Len() uint32 { return s.End - s.Start }

// IsEmpty reports whether the span covers no bytes.
func (s Span) IsEmpty() bool { return s.Start >= s.End }

func (s Span) String() string { return fmt.Sprintf("%d..%d", s.Start, s.End) }

// SourceFile holds a named source text plus precomputed line starts,
// for mapping byte offsets to line/column.
type SourceFile struct {
	ID         uint32
	Name       string
	Content    string
	lineStarts []uint32
}

// NewSourceFile builds a SourceFile and precomputes its line index.
func NewSourceFile(id uint32, name, content string) *SourceFile {
	f := &SourceFile{ID: id, Name: name, Content: content}
	f.lineStarts = []uint32{0}
	for i, ch := range content {
		if ch == '\n' {
			f.lineStarts = append(f.lineStarts, uint32(i)+1)
		}
	}
	return f
}

// LineCol converts a byte offset into a zero-based (line, column) pair.
func (f *SourceFile) LineCol(offset uint32) (uint32, uint32) {
	line := sort.Search(len(f.lineStarts), func(i int) bool {
		return f.lineStarts[i] > offset
	}) - 1
	if line < 0 {
		line = 0
	}
	return uint32(line), offset - f.lineStarts[line]
}

// SpanText returns the source substring covered by span.
func (f *SourceFile) SpanText(span Span) string {
	return f.Content[span.Start:span.End]
}

// Line returns the text of the given zero-based line number.
func (f *SourceFile) Line(lineNum uint32) (string, bool) {
	idx := int(lineNum)
	if idx >= len(f.lineStarts) {
		return "", false
	}
	start := int(f.lineStarts[idx])
	end := len(f.Content)
	if idx+1 < len(f.lineStarts) {
		end = int(f.lineStarts[idx+1]) - 1
	}
	return f.Content[start:end], true
}
