package paginate

import (
	"math"

	"go.uber.org/zap"

	"pageflow/pkg/layout"
)

const epsilon = 1e-9

// Paginator distributes a fragment tree over pages of fixed geometry.
type Paginator struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Paginator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Paginator{log: log.Named("paginate")}
}

// Paginate walks root in flow order and returns the pages its slices land
// on. Fragments that fit are emitted whole; unbreakable fragments that do
// not fit move to the next page; breakable ones are split at child
// boundaries. header and footer may be nil; they are referenced by every
// page. The geometry is validated before anything is sliced.
func (p *Paginator) Paginate(root *layout.Fragment, pc PageConstraints, header, footer *layout.Fragment) (*Document, error) {
	if err := pc.Validate(); err != nil {
		return nil, err
	}
	if header != nil && header.Height > pc.HeaderHeight+epsilon {
		p.log.Warn("Header taller than its reserved band",
			zap.Float64("height", header.Height), zap.Float64("reserved", pc.HeaderHeight))
	}
	if footer != nil && footer.Height > pc.FooterHeight+epsilon {
		p.log.Warn("Footer taller than its reserved band",
			zap.Float64("height", footer.Height), zap.Float64("reserved", pc.FooterHeight))
	}

	st := &state{
		log:      p.log,
		content:  pc.ContentBounds(),
		usable:   pc.UsableHeight(),
		page:     1,
		pageFlow: []float64{0},
		spans:    make(map[*layout.Fragment]span),
	}
	var top []*Slice
	if root != nil {
		top = st.place(root, st.content.X+root.X)
	}

	doc := &Document{Constraints: pc}
	for n := 1; n <= st.page; n++ {
		doc.Pages = append(doc.Pages, &Page{
			Number:       n,
			Bounds:       st.content,
			Header:       header,
			Footer:       footer,
			HeaderBounds: pc.HeaderBounds(),
			FooterBounds: pc.FooterBounds(),
		})
	}
	for _, s := range top {
		pg := doc.Pages[s.page-1]
		pg.Slices = append(pg.Slices, s)
	}
	p.log.Debug("Paginated", zap.Int("pages", len(doc.Pages)), zap.Float64("usable", st.usable))
	return doc, nil
}

// state is the cursor of one pagination pass: the current page and how
// much of its usable height is consumed. flow is the total block size
// consumed over all pages, pageFlow[n-1] its value at the top of page n.
type state struct {
	log      *zap.Logger
	content  Rect
	usable   float64
	page     int
	used     float64
	flow     float64
	pageFlow []float64
	spans    map[*layout.Fragment]span
}

func (st *state) remaining() float64 {
	return st.usable - st.used
}

func (st *state) top() float64 {
	return st.content.Y + st.used
}

func (st *state) consume(h float64) {
	st.used += h
	st.flow += h
}

func (st *state) newPage() {
	st.page++
	st.used = 0
	st.pageFlow = append(st.pageFlow, st.flow)
}

// span is the block range covered by a fragment and all its descendants
// with extent, relative to the fragment's top.
type span struct {
	lo, hi float64
}

func (st *state) spanOf(f *layout.Fragment) span {
	if sp, ok := st.spans[f]; ok {
		return sp
	}
	sp := span{lo: 0, hi: f.Height}
	for _, c := range f.Children {
		cs := st.spanOf(c)
		if c.Height <= epsilon && cs.lo == 0 && cs.hi == 0 {
			continue
		}
		sp.lo = math.Min(sp.lo, c.Y+cs.lo)
		sp.hi = math.Max(sp.hi, c.Y+cs.hi)
	}
	st.spans[f] = sp
	return sp
}

// overflows reports whether some descendant with extent lies outside f's
// own block range, as with content taller than an explicit height or a
// negative leading margin.
func (st *state) overflows(f *layout.Fragment) bool {
	sp := st.spanOf(f)
	return sp.lo < -tolerance(f.Height) || sp.hi > f.Height+tolerance(f.Height)
}

// place emits the slices of f starting at the cursor in page order. x is
// the page position of f's left edge. The result holds the pieces of f
// and, where descendants run past f's end, their slices on pages f no
// longer reaches.
func (st *state) place(f *layout.Fragment, x float64) []*Slice {
	if st.overflows(f) {
		return st.placeOverflowing(f, x)
	}
	if f.Height <= epsilon {
		return nil
	}
	if f.Height <= st.remaining()+epsilon {
		s := st.full(f, x, st.top())
		st.consume(f.Height)
		return []*Slice{s}
	}
	if !f.Breakable {
		if st.used > epsilon {
			st.newPage()
		}
		if f.Height <= st.usable+epsilon {
			s := st.full(f, x, st.top())
			st.consume(f.Height)
			return []*Slice{s}
		}
		st.log.Warn("Unbreakable fragment taller than a page, splitting at page boundaries",
			zap.String("path", f.Path()), zap.Float64("height", f.Height), zap.Float64("usable", st.usable))
		return st.chop(f, x)
	}
	if !hasExtent(f.Children) {
		return st.chop(f, x)
	}
	return st.split(f, x)
}

// placeOverflowing handles f whose descendants leave its box. Breakable
// fragments are split with their children stacked in flow. Unbreakable
// ones are kept whole with room for their full span when it fits on a
// page.
func (st *state) placeOverflowing(f *layout.Fragment, x float64) []*Slice {
	if f.Breakable {
		return st.split(f, x)
	}
	sp := st.spanOf(f)
	size := sp.hi - sp.lo
	if size > st.remaining()+epsilon && st.used > epsilon && size <= st.usable+epsilon {
		st.newPage()
	}
	if size <= st.remaining()+epsilon {
		out := st.fullAll(f, x, st.top()-sp.lo)
		st.consume(size)
		return out
	}
	st.log.Warn("Unbreakable fragment overflows a page, stacking its children",
		zap.String("path", f.Path()), zap.Float64("height", f.Height), zap.Float64("span", size))
	return st.split(f, x)
}

// full emits f and its descendants whole, with f's top at y.
func (st *state) full(f *layout.Fragment, x, y float64) *Slice {
	s := &Slice{
		Fragment: f,
		Bounds:   Rect{X: x, Y: y, Width: f.Width, Height: f.Height},
		Kind:     Full,
		page:     st.page,
	}
	for _, c := range f.Children {
		s.Children = append(s.Children, st.fullAll(c, x+c.X, y+c.Y)...)
	}
	return s
}

// fullAll is full for fragments that may have no extent of their own; their
// descendants are emitted in their place.
func (st *state) fullAll(f *layout.Fragment, x, y float64) []*Slice {
	if f.Height > epsilon {
		return []*Slice{st.full(f, x, y)}
	}
	var out []*Slice
	for _, c := range f.Children {
		out = append(out, st.fullAll(c, x+c.X, y+c.Y)...)
	}
	return out
}

// chop cuts f at page boundaries without looking at its children.
func (st *state) chop(f *layout.Fragment, x float64) []*Slice {
	var pieces []*Slice
	offset := 0.0
	for offset < f.Height-epsilon {
		if st.remaining() <= epsilon {
			st.newPage()
		}
		pc := st.piece(f, x, offset)
		pc.Cut = true
		pieces = append(pieces, pc)
		take := math.Min(st.remaining(), f.Height-offset)
		st.consume(take)
		offset += take
	}
	return st.finish(f, pieces, nil)
}

// split distributes f's children over pages and cuts f wherever one of them
// continues on, or is moved to, a later page. Offsets within f follow the
// flow, so a child that overlaps its predecessor is pushed below it and
// content beyond f's end is passed up instead of opening a piece of f.
func (st *state) split(f *layout.Fragment, x float64) []*Slice {
	origin := st.flow
	pieces := []*Slice{st.piece(f, x, 0)}
	var beyond []*Slice
	for _, c := range f.Children {
		if c.Height <= epsilon && !st.overflows(c) {
			continue
		}
		if cursor := st.flow - origin; c.Y > cursor {
			pieces = st.advance(f, x, pieces, cursor, c.Y-cursor)
		}
		for _, cs := range st.place(c, x+c.X) {
			cur := pieces[len(pieces)-1]
			if cs.page != cur.page {
				at := st.pageFlow[cs.page-1] - origin
				if at >= f.Height-epsilon {
					beyond = append(beyond, cs)
					continue
				}
				pieces = append(pieces, &Slice{
					Fragment: f,
					Bounds:   Rect{X: x, Y: st.content.Y, Width: f.Width},
					Offset:   at,
					page:     cs.page,
				})
				cur = pieces[len(pieces)-1]
			}
			cur.Children = append(cur.Children, cs)
		}
	}
	if cursor := st.flow - origin; cursor < f.Height {
		pieces = st.advance(f, x, pieces, cursor, f.Height-cursor)
	}
	return st.finish(f, pieces, beyond)
}

// advance consumes gap block size of f starting at offset at, opening a new
// piece on every page boundary crossed inside f.
func (st *state) advance(f *layout.Fragment, x float64, pieces []*Slice, at, gap float64) []*Slice {
	for gap > epsilon {
		rem := st.remaining()
		if gap <= rem+epsilon {
			st.consume(gap)
			return pieces
		}
		gap -= rem
		at += rem
		st.consume(rem)
		st.newPage()
		if at < f.Height-epsilon {
			pieces = append(pieces, st.piece(f, x, at))
		}
	}
	return pieces
}

// piece opens a slice of f at the cursor, starting at offset within f.
func (st *state) piece(f *layout.Fragment, x, offset float64) *Slice {
	return &Slice{
		Fragment: f,
		Bounds:   Rect{X: x, Y: st.top(), Width: f.Width},
		Offset:   offset,
		page:     st.page,
	}
}

// finish sizes pieces from consecutive offsets, drops empty ones and
// assigns kinds. Children of a dropped piece take its place in the result,
// followed by beyond.
func (st *state) finish(f *layout.Fragment, pieces, beyond []*Slice) []*Slice {
	var kept []*Slice
	for i, s := range pieces {
		end := f.Height
		if i+1 < len(pieces) {
			end = pieces[i+1].Offset
		}
		s.Bounds.Height = end - s.Offset
		if s.Bounds.Height > epsilon {
			kept = append(kept, s)
		}
	}
	// the extent of a dropped piece is zero, so dropping keeps the sum
	for i, s := range kept {
		switch {
		case len(kept) == 1:
			s.Kind = Full
		case i == 0:
			s.Kind = SplitStart
		case i == len(kept)-1:
			s.Kind = SplitEnd
		default:
			s.Kind = SplitMiddle
		}
		s.ContinuesOnNextPage = i < len(kept)-1
	}
	if len(kept) > 1 {
		st.log.Debug("Split fragment", zap.String("path", f.Path()), zap.Int("pieces", len(kept)))
	}

	out := make([]*Slice, 0, len(pieces)+len(beyond))
	for _, s := range pieces {
		if s.Bounds.Height > epsilon {
			out = append(out, s)
		} else {
			out = append(out, s.Children...)
		}
	}
	return append(out, beyond...)
}

func hasExtent(children []*layout.Fragment) bool {
	for _, c := range children {
		if c.Height > epsilon {
			return true
		}
	}
	return false
}
