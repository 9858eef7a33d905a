package layout

import (
	"maps"
	"slices"

	"pageflow/pkg/debug"
)

// FragmentKind distinguishes the shapes a formatting context produces.
type FragmentKind int

const (
	FragmentBlock FragmentKind = iota
	FragmentInline
	// FragmentLine is one line box of an inline formatting context. Lines
	// are never split by pagination.
	FragmentLine
)

func (k FragmentKind) String() string {
	switch k {
	case FragmentBlock:
		return "block"
	case FragmentInline:
		return "inline"
	case FragmentLine:
		return "line"
	}
	return "invalid"
}

// Diagnostics are observational data attached to every fragment. They never
// influence geometry.
type Diagnostics struct {
	Context     string
	Constraints Constraints
	Width       float64
	Height      float64
	Metadata    map[string]string
}

// Fragment is the geometric result of laying out a box. X and Y are the
// offset of the fragment's border box within its parent fragment; they are
// assigned by the parent context before the parent is returned. A fragment
// must not be modified once the context that produced its parent returned.
type Fragment struct {
	Kind FragmentKind
	Box  *Box

	X, Y          float64
	Width, Height float64

	// Baseline is the offset of the first baseline from the top edge.
	Baseline    float64
	HasBaseline bool

	// Text is the text carried by an inline piece of a line.
	Text string
	// Breakable fragments may be split between pages at child boundaries.
	Breakable bool

	Children    []*Fragment
	Diagnostics Diagnostics
}

func newFragment(kind FragmentKind, box *Box, c Constraints, context string) *Fragment {
	f := &Fragment{
		Kind: kind,
		Box:  box,
		Diagnostics: Diagnostics{
			Context:     context,
			Constraints: c,
		},
	}
	if box != nil && box.Fallback != "" {
		f.note("fallback", box.Fallback)
	}
	return f
}

// note records a diagnostic key/value pair.
func (f *Fragment) note(key, value string) {
	if f.Diagnostics.Metadata == nil {
		f.Diagnostics.Metadata = make(map[string]string)
	}
	f.Diagnostics.Metadata[key] = value
}

// setSize sets the final size and mirrors it into the diagnostics.
func (f *Fragment) setSize(width, height float64) {
	f.Width = width
	f.Height = height
	f.Diagnostics.Width = width
	f.Diagnostics.Height = height
}

// Path returns the source path of the fragment's box.
func (f *Fragment) Path() string {
	if f.Box == nil {
		return ""
	}
	return f.Box.Path
}

// Walk visits f and its descendants in pre-order. Returning false from fn
// skips the fragment's children.
func (f *Fragment) Walk(fn func(f *Fragment, depth int) bool) {
	f.walk(fn, 0)
}

func (f *Fragment) walk(fn func(*Fragment, int) bool, depth int) {
	if !fn(f, depth) {
		return
	}
	for _, c := range f.Children {
		c.walk(fn, depth+1)
	}
}

// Count returns the number of fragments in the tree rooted at f.
func (f *Fragment) Count() int {
	n := 0
	f.Walk(func(*Fragment, int) bool {
		n++
		return true
	})
	return n
}

// Dump renders the fragment tree, one fragment per line.
func (f *Fragment) Dump() string {
	tw := debug.NewTreeWriter()
	f.Walk(func(fr *Fragment, depth int) bool {
		tw.Line(depth, "%s %s @(%s,%s) %sx%s%s", fr.Kind, fr.Path(),
			debug.Num(fr.X), debug.Num(fr.Y), debug.Num(fr.Width), debug.Num(fr.Height), fr.flags())
		if fr.Text != "" {
			tw.TextBlock(depth+1, "text", fr.Text)
		}
		for _, k := range slices.Sorted(maps.Keys(fr.Diagnostics.Metadata)) {
			tw.Line(depth+1, "%s=%s", k, fr.Diagnostics.Metadata[k])
		}
		return true
	})
	return tw.String()
}

func (f *Fragment) flags() string {
	s := ""
	if f.HasBaseline {
		s += " baseline=" + debug.Num(f.Baseline)
	}
	if f.Breakable {
		s += " breakable"
	}
	return s
}
