package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Segment is a piece of text that ends at a line break opportunity
// (Unicode Standard Annex #14). A line may be broken after any segment;
// it must be broken after a segment with MustBreak set.
type Segment struct {
	Text      string
	MustBreak bool
}

// Segments splits s into line segments. The end of the text is not
// reported as a mandatory break unless s ends with a line terminator.
func Segments(s string) []Segment {
	var (
		out   []Segment
		seg   string
		must  bool
		state = -1
	)
	for len(s) > 0 {
		seg, s, must, state = uniseg.FirstLineSegmentInString(s, state)
		if len(s) == 0 {
			must = endsWithNewline(seg)
		}
		out = append(out, Segment{Text: seg, MustBreak: must})
	}
	return out
}

// Collapse folds every run of white space into one space, the way
// `white-space: normal` treats source text.
func Collapse(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !space {
				sb.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		sb.WriteRune(r)
	}
	return sb.String()
}

// TrimTrailingSpace removes spaces and line terminators that hang past the
// end of a line and do not count towards its width.
func TrimTrailingSpace(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

func endsWithNewline(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	switch r {
	case '\n', '\r', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
