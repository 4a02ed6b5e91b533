package internal

import "strings"

const placeholderOpen = "#{"

// SegmentKind tells raw text apart from a placeholder.
type SegmentKind uint8

const (
	SegmentRaw SegmentKind = iota
	SegmentPlaceholder
)

// Segment is one piece of a parsed string.
// For raw segments Text is the literal text. For placeholders Text is the
// exact inner text between "#{" and the matching "}" and Key is Text trimmed.
type Segment struct {
	Text string
	Key  string
	Kind SegmentKind
}

// Raw creates a raw text segment.
func Raw(text string) Segment {
	return Segment{Kind: SegmentRaw, Text: text}
}

// Placeholder creates a placeholder segment from its inner text.
func Placeholder(inner string) Segment {
	return Segment{Kind: SegmentPlaceholder, Text: inner, Key: strings.TrimSpace(inner)}
}

// IsPlaceholder reports whether the segment is a placeholder.
func (s Segment) IsPlaceholder() bool {
	return s.Kind == SegmentPlaceholder
}

// String renders the segment back to its source form.
func (s Segment) String() string {
	if s.Kind == SegmentPlaceholder {
		return placeholderOpen + s.Text + "}"
	}
	return s.Text
}

// ParsePlaceholders splits text into raw and placeholder segments.
//
// A placeholder starts at "#{" and ends at the "}" that brings the brace
// depth back to zero, so the key may contain nested braces:
//
//	"#{ foo {{ bar }} }" -> Placeholder(key: "foo {{ bar }}")
//
// When a placeholder never closes, everything from the current scan
// position to the end is returned as a single raw segment.
// There is no escape sequence for a literal "#{".
func ParsePlaceholders(text string) []Segment {
	var segments []Segment

	pos := 0
	for pos < len(text) {
		idx := strings.Index(text[pos:], placeholderOpen)
		if idx < 0 {
			segments = append(segments, Raw(text[pos:]))
			break
		}

		start := pos + idx
		end, ok := closingBrace(text, start+len(placeholderOpen))
		if !ok {
			segments = append(segments, Raw(text[pos:]))
			break
		}

		if start > pos {
			segments = append(segments, Raw(text[pos:start]))
		}
		segments = append(segments, Placeholder(text[start+len(placeholderOpen):end]))
		pos = end + 1
	}

	return segments
}

// closingBrace returns the index of the brace that closes a placeholder
// whose body starts at from.
func closingBrace(text string, from int) (int, bool) {
	depth := 1
	for i := from; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// JoinSegments reassembles segments into a string.
func JoinSegments(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		if s.Kind == SegmentPlaceholder {
			b.WriteString(placeholderOpen)
			b.WriteString(s.Text)
			b.WriteByte('}')
			continue
		}
		b.WriteString(s.Text)
	}
	return b.String()
}

// HasPlaceholders reports whether any segment is a placeholder.
func HasPlaceholders(segments []Segment) bool {
	for _, s := range segments {
		if s.Kind == SegmentPlaceholder {
			return true
		}
	}
	return false
}
