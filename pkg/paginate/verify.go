package paginate

import (
	"fmt"
	"math"

	"go.uber.org/multierr"

	"pageflow/pkg/debug"
	"pageflow/pkg/layout"
)

// Walk visits every slice of every page in page order, pre-order within a
// page.
func (d *Document) Walk(fn func(pg *Page, s *Slice, depth int)) {
	var walk func(pg *Page, s *Slice, depth int)
	walk = func(pg *Page, s *Slice, depth int) {
		fn(pg, s, depth)
		for _, c := range s.Children {
			walk(pg, c, depth+1)
		}
	}
	for _, pg := range d.Pages {
		for _, s := range pg.Slices {
			walk(pg, s, 0)
		}
	}
}

// SlicesOf returns the slices carrying f, in page order.
func (d *Document) SlicesOf(f *layout.Fragment) []*Slice {
	var out []*Slice
	d.Walk(func(_ *Page, s *Slice, _ int) {
		if s.Fragment == f {
			out = append(out, s)
		}
	})
	return out
}

// Verify checks the document against the fragment tree it was made from:
// pages are numbered 1..N, every slice lies inside its page's content area
// and has positive extent, and the slices of each fragment reconstruct it.
// Descendants of fragments cut without regard to children are not checked.
func (d *Document) Verify(root *layout.Fragment) error {
	var err error
	if len(d.Pages) == 0 {
		return fmt.Errorf("%w: no pages", ErrReconstruction)
	}
	for i, pg := range d.Pages {
		if pg.Number != i+1 {
			err = multierr.Append(err, fmt.Errorf("%w: page %d numbered %d", ErrReconstruction, i+1, pg.Number))
		}
	}
	d.Walk(func(pg *Page, s *Slice, _ int) {
		if s.Extent() <= epsilon {
			err = multierr.Append(err, fmt.Errorf("%w: empty slice of %s on page %d", ErrReconstruction, s.Fragment.Path(), pg.Number))
		}
		if s.page != pg.Number {
			err = multierr.Append(err, fmt.Errorf("%w: slice of %s for page %d found on page %d",
				ErrReconstruction, s.Fragment.Path(), s.page, pg.Number))
		}
		if s.Bounds.Y < pg.Bounds.Y-epsilon || s.Bounds.Bottom() > pg.Bounds.Bottom()+tolerance(pg.Bounds.Bottom()) {
			err = multierr.Append(err, fmt.Errorf("%w: slice of %s at %v outside page %d content %v",
				ErrReconstruction, s.Fragment.Path(), s.Bounds, pg.Number, pg.Bounds))
		}
	})
	if root != nil {
		err = multierr.Append(err, d.verifyFragment(root))
	}
	return err
}

func (d *Document) verifyFragment(f *layout.Fragment) error {
	if f.Height <= epsilon {
		return d.verifyChildren(f)
	}
	slices := d.SlicesOf(f)
	if len(slices) == 0 {
		return fmt.Errorf("%w: %s has no slices", ErrReconstruction, f.Path())
	}

	var err error
	sum, offset := 0.0, 0.0
	for i, s := range slices {
		if !nearly(s.Offset, offset) {
			err = multierr.Append(err, fmt.Errorf("%w: %s slice %d starts at %v, want %v",
				ErrReconstruction, f.Path(), i, s.Offset, offset))
		}
		offset = s.Offset + s.Extent()
		sum += s.Extent()
		if i > 0 && s.page <= slices[i-1].page {
			err = multierr.Append(err, fmt.Errorf("%w: %s has two slices on page %d", ErrReconstruction, f.Path(), s.page))
		}
		if want := expectedKind(i, len(slices)); s.Kind != want {
			err = multierr.Append(err, fmt.Errorf("%w: %s slice %d is %s, want %s", ErrReconstruction, f.Path(), i, s.Kind, want))
		}
		if s.ContinuesOnNextPage != (i < len(slices)-1) {
			err = multierr.Append(err, fmt.Errorf("%w: %s slice %d continuation flag is %t",
				ErrReconstruction, f.Path(), i, s.ContinuesOnNextPage))
		}
	}
	if !nearly(sum, f.Height) {
		err = multierr.Append(err, fmt.Errorf("%w: slices of %s sum to %v, want %v", ErrReconstruction, f.Path(), sum, f.Height))
	}

	if slices[0].Cut {
		return err
	}
	return multierr.Append(err, d.verifyChildren(f))
}

func (d *Document) verifyChildren(f *layout.Fragment) error {
	var err error
	for _, c := range f.Children {
		err = multierr.Append(err, d.verifyFragment(c))
	}
	return err
}


func expectedKind(i, n int) SliceKind {
	switch {
	case n == 1:
		return Full
	case i == 0:
		return SplitStart
	case i == n-1:
		return SplitEnd
	}
	return SplitMiddle
}

func tolerance(v float64) float64 {
	return epsilon * math.Max(1, math.Abs(v))
}

func nearly(a, b float64) bool {
	return math.Abs(a-b) <= tolerance(math.Max(math.Abs(a), math.Abs(b)))
}

// Dump renders the document, one slice per line.
func (d *Document) Dump() string {
	tw := debug.NewTreeWriter()
	for _, pg := range d.Pages {
		tw.Line(0, "page %d content=(%s,%s %sx%s) slices=%d", pg.Number,
			debug.Num(pg.Bounds.X), debug.Num(pg.Bounds.Y), debug.Num(pg.Bounds.Width), debug.Num(pg.Bounds.Height), len(pg.Slices))
		if pg.Header != nil {
			tw.Line(1, "header %s", pg.Header.Path())
		}
		var walk func(s *Slice, depth int)
		walk = func(s *Slice, depth int) {
			cont := ""
			if s.ContinuesOnNextPage {
				cont = " continues"
			}
			if s.Cut {
				cont += " cut"
			}
			tw.Line(depth, "%s %s %s @(%s,%s) %sx%s offset=%s%s", s.Kind, s.Fragment.Kind, s.Fragment.Path(),
				debug.Num(s.Bounds.X), debug.Num(s.Bounds.Y), debug.Num(s.Bounds.Width), debug.Num(s.Bounds.Height),
				debug.Num(s.Offset), cont)
			if s.Fragment.Text != "" {
				tw.TextBlock(depth+1, "text", s.Fragment.Text)
			}
			for _, c := range s.Children {
				walk(c, depth+1)
			}
		}
		for _, s := range pg.Slices {
			walk(s, 1)
		}
		if pg.Footer != nil {
			tw.Line(1, "footer %s", pg.Footer.Path())
		}
	}
	return tw.String()
}
