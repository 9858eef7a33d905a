package layout

import (
	"math"
	"strconv"
	"strings"

	"pageflow/pkg/styled"
	"pageflow/pkg/text"
)

const lineEpsilon = 1e-9

// inlineContext lays out inline-level content in three phases: collect the
// content into a flat list of items, break the items into lines, then build
// a Line fragment per line with one piece per item that landed on it.
type inlineContext struct {
	p *pass
}

func (ic *inlineContext) Name() string {
	return "inline"
}

type itemKind int

const (
	itemText   itemKind = iota
	itemSpace           // margin, border and padding of an inline box edge
	itemAtomic          // an inline-block laid out as a unit
	itemBreak           // forced line break
)

type inlineItem struct {
	kind  itemKind
	box   *Box
	text  string
	pre   bool
	width float64
	frag  *Fragment
}

type linePiece struct {
	item  *inlineItem
	text  string
	x     float64
	width float64
}

type lineBox struct {
	pieces  []linePiece
	width   float64
	content bool
	// brk is the item that forced the line to end, if any.
	brk *inlineItem
}

func (ic *inlineContext) Layout(box *Box, c Constraints) (*Fragment, error) {
	f := newFragment(FragmentInline, box, c, ic.Name())
	f.Breakable = c.AllowBreak
	if len(box.Children) == 0 && box.Text() == "" {
		// empty leaf: no size, no baseline
		return f, nil
	}

	// Phase 1: collect
	var items []*inlineItem
	pre := box.Anonymous && box.Kind() == styled.KindPre
	if err := ic.collect(box, c, pre, &items); err != nil {
		return nil, err
	}

	// Phase 2: break
	lines := ic.breakLines(items, c.InlineMax)

	// Phase 3: construct
	y, width := 0.0, 0.0
	for _, ln := range lines {
		lf := ic.lineFragment(box, c, ln)
		lf.Y = y
		y += lf.Height
		width = math.Max(width, lf.Width)
		if !f.HasBaseline {
			f.Baseline = lf.Baseline
			f.HasBaseline = true
		}
		f.Children = append(f.Children, lf)
	}
	if c.InlineBounded() {
		width = c.InlineMax
	}
	f.setSize(width, y)
	f.note("lines", strconv.Itoa(len(lines)))
	return f, nil
}

func (ic *inlineContext) collect(box *Box, c Constraints, pre bool, items *[]*inlineItem) error {
	if !box.Anonymous {
		switch {
		case box.Kind() == styled.KindText:
			t := box.Text()
			if !pre {
				t = text.Collapse(t)
			}
			if t != "" {
				*items = append(*items, &inlineItem{kind: itemText, box: box, text: t, pre: pre})
			}
			return nil
		case box.Kind() == styled.KindLineBreak:
			*items = append(*items, &inlineItem{kind: itemBreak, box: box})
			return nil
		case box.Context == ContextInlineBlock:
			frag, err := ic.p.inlineBlock.Layout(box, c)
			if err != nil {
				return err
			}
			*items = append(*items, &inlineItem{
				kind:  itemAtomic,
				box:   box,
				width: frag.Width + box.Margin.Horizontal(),
				frag:  frag,
			})
			return nil
		}
		if w := box.Margin.Left + box.Inset().Left; w > 0 {
			*items = append(*items, &inlineItem{kind: itemSpace, box: box, width: w})
		}
	}
	for _, child := range box.Children {
		if !child.Display.IsInlineLevel() {
			continue
		}
		if err := ic.collect(child, c, pre, items); err != nil {
			return err
		}
	}
	if !box.Anonymous {
		if w := box.Margin.Right + box.Inset().Right; w > 0 {
			*items = append(*items, &inlineItem{kind: itemSpace, box: box, width: w})
		}
	}
	return nil
}

func (ic *inlineContext) measure(it *inlineItem, s string) float64 {
	if s == "" {
		return 0
	}
	return ic.p.measurer.Width(s, it.box.Style.EffectiveFontSize())
}

// breakLines fills lines greedily, breaking at the last opportunity that
// keeps the line within avail. A segment wider than a whole line is placed
// alone and overflows.
func (ic *inlineContext) breakLines(items []*inlineItem, avail float64) []*lineBox {
	var lines []*lineBox
	cur := &lineBox{}
	finish := func(forced bool) {
		ic.trimTrailing(cur)
		if cur.content || forced {
			lines = append(lines, cur)
		}
		cur = &lineBox{}
	}
	overflows := func(w float64) bool {
		return cur.content && cur.width+w > avail+lineEpsilon
	}

	for _, it := range items {
		switch it.kind {
		case itemSpace:
			cur.pieces = append(cur.pieces, linePiece{item: it, x: cur.width, width: it.width})
			cur.width += it.width
		case itemBreak:
			cur.brk = it
			finish(true)
		case itemAtomic:
			if overflows(it.width) {
				finish(false)
			}
			cur.pieces = append(cur.pieces, linePiece{item: it, x: cur.width, width: it.width})
			cur.width += it.width
			cur.content = true
		case itemText:
			for _, seg := range text.Segments(it.text) {
				t := seg.Text
				if !cur.content && !it.pre {
					t = strings.TrimLeft(t, " ")
				}
				if overflows(ic.measure(it, text.TrimTrailingSpace(t))) {
					finish(false)
					if !it.pre {
						t = strings.TrimLeft(t, " ")
					}
				}
				if t != "" {
					ic.appendText(cur, it, t)
					if it.pre || text.TrimTrailingSpace(t) != "" {
						cur.content = true
					}
				}
				if seg.MustBreak {
					cur.brk = it
					finish(true)
				}
			}
		}
	}
	finish(false)
	return lines
}

func (ic *inlineContext) appendText(ln *lineBox, it *inlineItem, t string) {
	if n := len(ln.pieces); n > 0 && ln.pieces[n-1].item == it {
		last := &ln.pieces[n-1]
		last.text += t
		w := ic.measure(it, last.text)
		ln.width += w - last.width
		last.width = w
		return
	}
	w := ic.measure(it, t)
	ln.pieces = append(ln.pieces, linePiece{item: it, text: t, x: ln.width, width: w})
	ln.width += w
}

// trimTrailing drops white space hanging at the end of the line. Edge
// spacing of inline boxes after the last text piece is kept and shifted.
func (ic *inlineContext) trimTrailing(ln *lineBox) {
	for i := len(ln.pieces) - 1; i >= 0; i-- {
		p := &ln.pieces[i]
		if p.item.kind == itemSpace {
			continue
		}
		if p.item.kind != itemText {
			return
		}
		trimmed := text.TrimTrailingSpace(p.text)
		if trimmed == p.text {
			return
		}
		w := ic.measure(p.item, trimmed)
		delta := p.width - w
		p.text, p.width = trimmed, w
		for j := i + 1; j < len(ln.pieces); j++ {
			ln.pieces[j].x -= delta
		}
		ln.width -= delta
		if trimmed == "" {
			ln.pieces = append(ln.pieces[:i], ln.pieces[i+1:]...)
		}
		return
	}
}

// metrics returns the ascent and height a box's text contributes to a line.
func (ic *inlineContext) metrics(style styled.Style) (ascent, height float64) {
	size := style.EffectiveFontSize()
	height = style.EffectiveLineHeight()
	ascent = (height-size)/2 + ic.p.measurer.Ascent(size)
	return ascent, height
}

func (ic *inlineContext) lineFragment(box *Box, c Constraints, ln *lineBox) *Fragment {
	lf := newFragment(FragmentLine, box, c, "line")

	// the container's strut sets the minimum line height
	baseline, h := ic.metrics(box.Style)
	descent := h - baseline
	if len(ln.pieces) == 0 && ln.brk != nil {
		a, bh := ic.metrics(ln.brk.box.Style)
		baseline, descent = math.Max(baseline, a), math.Max(descent, bh-a)
	}
	ascents := make([]float64, len(ln.pieces))
	for i, p := range ln.pieces {
		var a, ph float64
		switch p.item.kind {
		case itemText:
			a, ph = ic.metrics(p.item.box.Style)
		case itemAtomic:
			ph = p.item.frag.Height + p.item.box.Margin.Vertical()
			a = ph
		default:
			continue
		}
		ascents[i] = a
		baseline = math.Max(baseline, a)
		descent = math.Max(descent, ph-a)
	}

	for i, p := range ln.pieces {
		switch p.item.kind {
		case itemText:
			a, ph := ic.metrics(p.item.box.Style)
			pf := newFragment(FragmentInline, p.item.box, c, "text")
			pf.X = p.x
			pf.Y = baseline - a
			pf.Text = p.text
			pf.Baseline = a
			pf.HasBaseline = true
			pf.setSize(p.width, ph)
			lf.Children = append(lf.Children, pf)
		case itemAtomic:
			fr := p.item.frag
			fr.X = p.x + p.item.box.Margin.Left
			fr.Y = baseline - ascents[i] + p.item.box.Margin.Top
			lf.Children = append(lf.Children, fr)
		}
	}

	lf.Baseline = baseline
	lf.HasBaseline = true
	lf.setSize(ln.width, baseline+descent)
	return lf
}
